// tokenizer_html.go implements a permissive, single-pass HTML tokenizer.
package md

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Matches name, name="value", name='value' and name=value.
	// Values may not contain either quote character.
	attrPattern = regexp.MustCompile(`([\w-]+)(?:=["']([^"']*)["']|=([^\s>]+))?`)
)

const (
	commentOpen  = "<!--"
	commentClose = "-->"
)

// TokenizeHTML scans input into a flat stream of TagOpen, TagClose and Text tokens.
//
// It never fails. Comments are skipped, whitespace-only text runs are kept so the
// emitter can separate adjacent inline elements, and a '<' with no closing '>' ends
// tokenization, discarding the remainder of the input.
func TokenizeHTML(input string) []Token {
	tokens := []Token{}
	pos := 0

	for pos < len(input) {
		remaining := input[pos:]

		// Comments are skipped only when terminated; otherwise "<!--" is an ordinary tag.
		if strings.HasPrefix(remaining, commentOpen) {
			if end := strings.Index(remaining, commentClose); end != -1 {
				pos += end + len(commentClose)
				continue
			}
		}

		if remaining[0] == '<' {
			end := strings.IndexByte(remaining, '>')
			if end == -1 {
				break
			}
			if tok, ok := parseTag(remaining[1:end]); ok {
				tokens = append(tokens, tok)
			}
			pos += end + 1
			continue
		}

		next := strings.IndexByte(remaining, '<')
		if next == -1 {
			next = len(remaining)
		}
		tokens = append(tokens, Text{Content: remaining[:next]})
		pos += next
	}

	return tokens
}

// parseTag turns the content between '<' and '>' into a tag token.
// Tags with an empty name are dropped.
func parseTag(content string) (Token, bool) {
	if strings.HasPrefix(content, "/") {
		name := strings.ToLower(strings.TrimSpace(content[1:]))
		if name == "" {
			return nil, false
		}
		return TagClose{Name: name}, true
	}

	selfClosing := strings.HasSuffix(content, "/")
	if selfClosing {
		content = content[:len(content)-1]
	}
	content = strings.TrimSpace(content)

	name, rest := content, ""
	if i := strings.IndexFunc(content, unicode.IsSpace); i != -1 {
		name, rest = content[:i], content[i:]
	}
	name = strings.ToLower(name)
	if name == "" {
		return nil, false
	}

	return TagOpen{
		Name:        name,
		Attributes:  parseAttributes(strings.TrimSpace(rest)),
		SelfClosing: selfClosing,
	}, true
}

// parseAttributes extracts attributes permissively. Anything the pattern does not
// recognize is skipped silently.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	if s == "" {
		return attrs
	}
	for _, m := range attrPattern.FindAllStringSubmatch(s, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		attrs[m[1]] = value
	}
	return attrs
}
