package md

// Token is one unit of a tokenized HTML document: a TagOpen, a TagClose or a Text.
// The set is closed; consumers switch on the concrete type.
type Token interface {
	token()
}

// TagOpen is an opening tag such as <a href="x"> or a self-closing tag such as <img/>.
type TagOpen struct {
	Name        string            // lower-cased
	Attributes  map[string]string // values default to "" when absent; last duplicate wins
	SelfClosing bool              // the source tag ended in "/>"
}

// TagClose is a closing tag such as </p>.
type TagClose struct {
	Name string // lower-cased
}

// Text is a run of character data between tags. Entities are not decoded.
type Text struct {
	Content string
}

func (TagOpen) token()  {}
func (TagClose) token() {}
func (Text) token()     {}

// Attr returns the named attribute, or "" when it is absent.
func (t TagOpen) Attr(name string) string {
	if t.Attributes == nil {
		return ""
	}
	return t.Attributes[name]
}
