// emitter.go renders an HTML token stream as Markdown using a stack of open tags.
package md

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

var languagePattern = regexp.MustCompile(`language-(\w+)`)

// Tags whose opening marker is written into the output.
var inlineMarkers = []string{"strong", "b", "em", "i", "code"}

// An opening tag of one of these kinds suppresses the space after closing markup.
var (
	emphasisFollowers = []string{"strong", "b", "em", "i", "code"}
	linkFollowers     = []string{"strong", "b", "em", "i", "code", "a"}
)

// stackEntry is an open tag together with the output length right after its
// opening syntax was written.
type stackEntry struct {
	tag  TagOpen
	mark int
}

type emitter struct {
	tokens []Token
	stack  []stackEntry
	out    []string
}

// RenderMarkdown converts a token stream into Markdown. The result is not yet
// normalized; pass it through NormalizeMarkdown for final output.
//
// Unmatched closing tags are ignored. A closing tag that matches an entry deeper in
// the stack closes every tag above it first. Tags still open at the end of the
// stream are closed in reverse order.
func RenderMarkdown(tokens []Token) string {
	e := &emitter{tokens: tokens}

	for i, tok := range tokens {
		switch t := tok.(type) {
		case Text:
			e.text(t, i)
		case TagOpen:
			e.open(t, i)
		case TagClose:
			e.close(t, i)
		}
	}

	for len(e.stack) > 0 {
		e.closeTag(e.pop(), nil)
	}

	return strings.Join(e.out, "")
}

func (e *emitter) open(t TagOpen, i int) {
	switch t.Name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		if len(e.out) > 0 && !e.endsWith("\n") {
			e.write("\n")
		}
		level, _ := strconv.Atoi(t.Name[1:])
		e.write("\n", strings.Repeat("#", level), " ")
		e.push(t)

	case "p":
		// A blockquote that just opened already provides the paragraph start.
		if !e.justOpened("blockquote") && !e.endsWith("\n\n") {
			if e.endsWith("\n") {
				e.write("\n")
			} else {
				e.write("\n\n")
			}
		}
		e.push(t)

	case "br":
		e.write("\n")

	case "strong", "b":
		e.spaceBeforeInline()
		e.write("**")
		e.push(t)

	case "em", "i":
		e.spaceBeforeInline()
		e.write("*")
		e.push(t)

	case "code":
		if !e.inside("pre") {
			e.spaceBeforeInline()
			e.write("`")
		}
		e.push(t)

	case "pre":
		if len(e.out) > 0 && !e.endsWith("\n\n") {
			e.write("\n\n")
		}
		e.write("```", e.fenceLanguage(t, i), "\n")
		e.push(t)

	case "a":
		e.spaceBeforeInline()
		e.write("[")
		e.push(t)

	case "img":
		e.write("![" + t.Attr("alt") + "](" + t.Attr("src") + ")")

	case "ul", "ol":
		if len(e.out) > 0 && !e.endsWith("\n") {
			e.write("\n")
		}
		e.push(t)

	case "li":
		if !e.inside("ul", "ol") {
			e.write("\n")
		}
		e.write(e.listMarker() + " ")
		e.push(t)

	case "blockquote":
		if len(e.out) > 0 && !e.endsWith("\n\n") {
			e.write("\n\n")
		}
		e.write("> ")
		e.push(t)

	case "hr":
		if len(e.out) > 0 && !e.endsWith("\n\n") {
			e.write("\n\n")
		}
		e.write("---\n\n")

	default:
		// figure, figcaption and unknown tags are transparent containers.
		e.push(t)
	}
}

func (e *emitter) close(t TagClose, i int) {
	j := e.find(t.Name)
	if j == -1 {
		return
	}
	next := e.peek(i)
	for len(e.stack) > j {
		e.closeTag(e.pop(), next)
	}
}

// closeTag writes the closing syntax for tag. When next is non-nil it decides
// whether closing inline markup needs a trailing space.
func (e *emitter) closeTag(tag TagOpen, next Token) {
	switch tag.Name {
	case "strong", "b":
		e.trimTrailingBlanks()
		e.write("**")
		e.spaceAfterInline(next, emphasisFollowers)

	case "em", "i":
		e.write("*")
		e.spaceAfterInline(next, emphasisFollowers)

	case "code":
		if !e.inside("pre") {
			e.write("`")
		}

	case "pre":
		e.write("\n```\n")

	case "a":
		e.write("](" + tag.Attr("href") + ")")
		e.spaceAfterInline(next, linkFollowers)

	case "h1", "h2", "h3", "h4", "h5", "h6":
		e.write("\n")

	case "p", "li", "blockquote":
		if !e.endsWith("\n") {
			e.write("\n")
		}

	case "ul", "ol":
		e.write("\n")
	}
}

func (e *emitter) text(t Text, i int) {
	if t.Content == "" {
		return
	}
	blank := strings.TrimSpace(t.Content) == ""
	if e.inside("pre", "code") {
		// Layout whitespace between <pre> and its <code> is not part of the block.
		if blank && !e.inside("code") && (e.justOpened("pre") || closes(e.peek(i), "pre")) {
			return
		}
		e.write(t.Content)
		return
	}

	collapsed := collapseWhitespace(t.Content)
	trimmed := strings.TrimSpace(collapsed)

	// A whitespace-only run is one separator, unless markup closes right after it.
	if blank {
		last := e.last()
		if _, closing := e.peek(i).(TagClose); closing || e.peek(i) == nil {
			return
		}
		if last != "" && !endsWithSpace(last) && !endsWithOpener(last) && !e.justOpened("a", "strong", "b", "em", "i") {
			e.write(" ")
		}
		return
	}

	if e.inside("blockquote") && e.endsWith("\n") {
		e.write("> ")
	}
	if e.needsSpaceBefore(collapsed, trimmed) {
		e.write(" ")
	}
	e.write(trimmed)
}

// needsSpaceBefore reports whether a separator is needed between the buffer and
// the next text run. collapsed still carries the run's leading whitespace.
func (e *emitter) needsSpaceBefore(collapsed, trimmed string) bool {
	last := e.last()
	if last == "" || endsWithSpace(last) || strings.HasSuffix(last, "[") || strings.HasSuffix(last, "(") {
		return false
	}
	if !isWordByte(trimmed[0]) {
		return false
	}
	// Text directly after an opening marker hugs it.
	if e.justOpened(inlineMarkers...) {
		return false
	}
	// After a closing marker, or inside emphasis, keep the source's own separator.
	if strings.HasSuffix(last, "*") || strings.HasSuffix(last, "`") || e.inside("strong", "b", "em", "i") {
		return strings.HasPrefix(collapsed, " ")
	}
	return true
}

// spaceBeforeInline separates inline markup from a preceding word.
func (e *emitter) spaceBeforeInline() {
	last := e.last()
	if last == "" || endsWithSpace(last) {
		return
	}
	if isWordByte(last[len(last)-1]) {
		e.write(" ")
	}
}

// spaceAfterInline separates closing markup from a following word or tag.
func (e *emitter) spaceAfterInline(next Token, followers []string) {
	switch n := next.(type) {
	case Text:
		if s := strings.TrimSpace(n.Content); s != "" && isWordByte(s[0]) {
			e.write(" ")
		}
	case TagOpen:
		if !slices.Contains(followers, n.Name) {
			e.write(" ")
		}
	}
}

// fenceLanguage returns the language hint for a code fence, taken from the pre
// tag itself or from a code tag that immediately follows it.
func (e *emitter) fenceLanguage(t TagOpen, i int) string {
	if m := languagePattern.FindStringSubmatch(t.Attr("class")); m != nil {
		return m[1]
	}
	next := e.peek(i)
	if ws, ok := next.(Text); ok && strings.TrimSpace(ws.Content) == "" {
		next = e.peek(i + 1)
	}
	if code, ok := next.(TagOpen); ok && code.Name == "code" {
		if m := languagePattern.FindStringSubmatch(code.Attr("class")); m != nil {
			return m[1]
		}
	}
	return ""
}

func (e *emitter) listMarker() string {
	for j := len(e.stack) - 1; j >= 0; j-- {
		switch e.stack[j].tag.Name {
		case "ol":
			return "1."
		case "ul":
			return "-"
		}
	}
	return "-"
}

func (e *emitter) trimTrailingBlanks() {
	if len(e.out) == 0 {
		return
	}
	e.out[len(e.out)-1] = strings.TrimRight(e.out[len(e.out)-1], " \t")
}

func (e *emitter) write(fragments ...string) {
	for _, f := range fragments {
		if f != "" {
			e.out = append(e.out, f)
		}
	}
}

func (e *emitter) last() string {
	if len(e.out) == 0 {
		return ""
	}
	return e.out[len(e.out)-1]
}

func (e *emitter) endsWith(suffix string) bool {
	return strings.HasSuffix(e.last(), suffix)
}

func (e *emitter) push(t TagOpen) {
	if t.SelfClosing {
		return
	}
	e.stack = append(e.stack, stackEntry{tag: t, mark: len(e.out)})
}

func (e *emitter) pop() TagOpen {
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return top.tag
}

// find returns the index of the topmost open tag with the given name, or -1.
func (e *emitter) find(name string) int {
	for j := len(e.stack) - 1; j >= 0; j-- {
		if e.stack[j].tag.Name == name {
			return j
		}
	}
	return -1
}

func (e *emitter) inside(names ...string) bool {
	for _, entry := range e.stack {
		if slices.Contains(names, entry.tag.Name) {
			return true
		}
	}
	return false
}

// justOpened reports whether the innermost open tag is one of names and nothing
// has been written since its opening syntax.
func (e *emitter) justOpened(names ...string) bool {
	if len(e.stack) == 0 {
		return false
	}
	top := e.stack[len(e.stack)-1]
	return top.mark == len(e.out) && slices.Contains(names, top.tag.Name)
}

func (e *emitter) peek(i int) Token {
	if i+1 < len(e.tokens) {
		return e.tokens[i+1]
	}
	return nil
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func endsWithSpace(s string) bool {
	return strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n")
}

// endsWithOpener reports whether s ends with link syntax that text should hug.
// A backtick here is always a closed code span; open spans take text verbatim.
func endsWithOpener(s string) bool {
	return strings.HasSuffix(s, "[") || strings.HasSuffix(s, "(")
}

func closes(tok Token, name string) bool {
	c, ok := tok.(TagClose)
	return ok && c.Name == name
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
