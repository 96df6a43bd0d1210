// normalize.go cleans up whitespace around emphasis markers and collapses blank lines.
package md

import (
	"fmt"
	"regexp"
	"strings"
)

// fencePlaceholderPrefix marks where fenced code blocks are set aside during normalization.
// Letters and digits only, so none of the cleanup patterns can touch it.
const fencePlaceholderPrefix = "SBKFENCE"
const fencePlaceholderSuffix = "END"

var (
	fencedBlockPattern = regexp.MustCompile("(?s)```[^\\n]*\\n.*?\\n```")

	// Whitespace just inside an opening marker: "** bold" -> "**bold".
	strongOpenSpace = regexp.MustCompile(`(^|[\s(\[{"'“‘>])\*\*[ \t]+`)
	emOpenSpace     = regexp.MustCompile(`(^|[\s(\[{"'“‘>])\*[ \t]+`)

	// Whitespace just inside a closing marker: "bold **" -> "bold**".
	// The character after the marker is checked separately.
	strongCloseSpace = regexp.MustCompile(`[ \t]+\*\*`)
	emCloseSpace     = regexp.MustCompile(`[ \t]+\*`)

	parenWord       = regexp.MustCompile(`\)([a-zA-Z0-9])`)
	extraBlankLines = regexp.MustCompile(`\n{3,}`)
	trailingBlanks  = regexp.MustCompile(`[ \t]+\n`)
	repeatedBlanks  = regexp.MustCompile(`[ \t]{2,}`)
)

// NormalizeMarkdown repairs the whitespace artifacts left by RenderMarkdown.
//
// The rules run in order: spaces inside opening and closing ** and * markers are
// removed, a space is inserted after a closing ** or ")" that touches a word,
// runs of blank lines collapse to one, trailing line whitespace is dropped,
// repeated blanks collapse, and the result is trimmed. Fenced code blocks are
// left untouched.
func NormalizeMarkdown(markdown string) string {
	markdown, fences := protectFences(markdown)

	markdown = strongOpenSpace.ReplaceAllString(markdown, "${1}**")
	markdown = removeSpaceBeforeClose(markdown, strongCloseSpace, "**")
	markdown = emOpenSpace.ReplaceAllString(markdown, "${1}*")
	markdown = removeSpaceBeforeClose(markdown, emCloseSpace, "*")
	markdown = spaceAfterStrongClose(markdown)
	markdown = parenWord.ReplaceAllString(markdown, ") $1")
	markdown = extraBlankLines.ReplaceAllString(markdown, "\n\n")
	markdown = trailingBlanks.ReplaceAllString(markdown, "\n")
	markdown = repeatedBlanks.ReplaceAllString(markdown, " ")
	markdown = strings.TrimSpace(markdown)

	return restoreFences(markdown, fences)
}

// removeSpaceBeforeClose drops the whitespace matched before marker when the marker
// is followed by end of input, whitespace, or closing punctuation.
func removeSpaceBeforeClose(s string, pattern *regexp.Regexp, marker string) string {
	matches := pattern.FindAllStringIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	prev := 0
	for _, m := range matches {
		if !closesMarker(s, m[1]) {
			continue
		}
		b.WriteString(s[prev:m[0]])
		b.WriteString(marker)
		prev = m[1]
	}
	b.WriteString(s[prev:])
	return b.String()
}

func closesMarker(s string, at int) bool {
	if at >= len(s) {
		return true
	}
	switch s[at] {
	case ' ', '\t', '\n', '\r', '\f', '\v', '.', ',', ';', ':', '!', '?', ')', '}', ']', '"', '\'':
		return true
	}
	rest := s[at:]
	return strings.HasPrefix(rest, "”") || strings.HasPrefix(rest, "’")
}

// spaceAfterStrongClose inserts a space between a closing ** and a following letter
// or digit. A ** counts as closing when it directly follows a non-space character
// other than '*'.
func spaceAfterStrongClose(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if i > 0 && i+2 < len(s) && s[i] == '*' && s[i+1] == '*' &&
			!isASCIISpace(s[i-1]) && s[i-1] != '*' && isWordByte(s[i+2]) {
			b.WriteString("** ")
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isASCIISpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func protectFences(markdown string) (string, []string) {
	var fences []string
	protected := fencedBlockPattern.ReplaceAllStringFunc(markdown, func(block string) string {
		placeholder := fmt.Sprintf("%s%d%s", fencePlaceholderPrefix, len(fences), fencePlaceholderSuffix)
		fences = append(fences, block)
		return placeholder
	})
	return protected, fences
}

func restoreFences(markdown string, fences []string) string {
	for i := range fences {
		placeholder := fmt.Sprintf("%s%d%s", fencePlaceholderPrefix, i, fencePlaceholderSuffix)
		markdown = strings.Replace(markdown, placeholder, fences[i], 1)
	}
	return markdown
}
