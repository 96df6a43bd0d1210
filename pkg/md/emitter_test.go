package md

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "paragraph",
			input:    "<p>hello</p>",
			expected: "\n\nhello\n",
		},
		{
			name:     "heading",
			input:    "<h3>Section</h3>",
			expected: "\n### Section\n",
		},
		{
			name:     "overlapping emphasis is force-closed",
			input:    "<b><i>x</b></i>",
			expected: "***x***",
		},
		{
			name:     "unmatched closing tag is ignored",
			input:    "</b>hello",
			expected: "hello",
		},
		{
			name:     "open bold closed at end of input",
			input:    "<b>x",
			expected: "**x**",
		},
		{
			name:     "open link closed at end of input",
			input:    `<a href="u">x`,
			expected: "[x](u)",
		},
		{
			name:     "space before inline markup after a word",
			input:    "word<b>bold</b>",
			expected: "word **bold**",
		},
		{
			name:     "text hugs the opening marker",
			input:    "<em> it</em>",
			expected: "*it*",
		},
		{
			name:     "trailing spaces trimmed before closing bold",
			input:    "<b>bold </b>",
			expected: "**bold**",
		},
		{
			name:     "link followed by word gets a space",
			input:    `<a href="u">x</a>y`,
			expected: "[x](u) y",
		},
		{
			name:     "link followed by punctuation",
			input:    `<a href="u">x</a>.`,
			expected: "[x](u).",
		},
		{
			name:     "inline code keeps its content verbatim",
			input:    "<code>a  b</code>",
			expected: "`a  b`",
		},
		{
			name:     "code inside pre has no backticks",
			input:    "<pre><code>x</code></pre>",
			expected: "```\nx\n```\n",
		},
		{
			name:     "language from pre class",
			input:    `<pre class="language-go">x</pre>`,
			expected: "```go\nx\n```\n",
		},
		{
			name:     "language from inner code class",
			input:    `<pre><code class="language-js">x</code></pre>`,
			expected: "```js\nx\n```\n",
		},
		{
			name:     "unordered list",
			input:    "<ul><li>a</li><li>b</li></ul>",
			expected: "- a\n- b\n\n",
		},
		{
			name:     "ordered list uses a fixed marker",
			input:    "<ol><li>a</li><li>b</li></ol>",
			expected: "1. a\n1. b\n\n",
		},
		{
			name:     "list item outside a list",
			input:    "<li>x</li>",
			expected: "\n- x\n",
		},
		{
			name:     "image is void",
			input:    `<img src="a.png" alt="Alt"><p>after</p>`,
			expected: "![Alt](a.png)\n\nafter\n",
		},
		{
			name:     "blockquote",
			input:    "<blockquote><p>quote</p></blockquote>",
			expected: "> quote\n",
		},
		{
			name:     "blockquote paragraphs are prefixed",
			input:    "<blockquote><p>a</p><p>b</p></blockquote>",
			expected: "> a\n\n> b\n",
		},
		{
			name:     "horizontal rule",
			input:    "<p>a</p><hr><p>b</p>",
			expected: "\n\na\n\n\n---\n\nb\n",
		},
		{
			name:     "line break",
			input:    "a<br>b",
			expected: "a\nb",
		},
		{
			name:     "unknown tags are transparent",
			input:    "<div><span>one</span> <span>two</span></div>",
			expected: "one two",
		},
		{
			name:     "words across unknown tags are separated",
			input:    "one<span>two</span>",
			expected: "one two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderMarkdown(TokenizeHTML(tt.input)))
		})
	}
}

func TestRenderMarkdown_HandBuiltTokens(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []Token
		expected string
	}{
		{
			name:     "nil stream",
			tokens:   nil,
			expected: "",
		},
		{
			name:     "whitespace-only text becomes one separator",
			tokens:   []Token{Text{Content: "a"}, Text{Content: " \n\t "}, Text{Content: "b"}},
			expected: "a b",
		},
		{
			name: "whitespace-only text after an opening bracket is dropped",
			tokens: []Token{
				TagOpen{Name: "a", Attributes: map[string]string{"href": "u"}},
				Text{Content: " "},
				Text{Content: "x"},
				TagClose{Name: "a"},
			},
			expected: "[x](u)",
		},
		{
			name: "whitespace between closing and opening markup is one separator",
			tokens: []Token{
				TagOpen{Name: "code"}, Text{Content: "a"}, TagClose{Name: "code"},
				Text{Content: "\n  "},
				TagOpen{Name: "code"}, Text{Content: "b"}, TagClose{Name: "code"},
			},
			expected: "`a` `b`",
		},
		{
			name: "whitespace right after an opening marker is dropped",
			tokens: []Token{
				TagOpen{Name: "b"}, Text{Content: " "}, TagOpen{Name: "i"}, Text{Content: "x"},
				TagClose{Name: "i"}, TagClose{Name: "b"},
			},
			expected: "***x***",
		},
		{
			name:     "empty text is ignored",
			tokens:   []Token{Text{Content: ""}, Text{Content: "x"}},
			expected: "x",
		},
		{
			name: "self-closing container is not pushed",
			tokens: []Token{
				TagOpen{Name: "b", SelfClosing: true},
				Text{Content: "x"},
			},
			expected: "**x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderMarkdown(tt.tokens))
		})
	}
}

func TestRenderMarkdown_BalancedMarkers(t *testing.T) {
	inputs := []string{
		"<b><i>x</b></i>",
		"<p><strong>a<em>b</p>",
		"<em><a href=\"u\"><strong>x</em></a>",
		"<i>1<b>2<i>3</b>4",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			out := RenderMarkdown(TokenizeHTML(input))
			assert.Equal(t, 0, strings.Count(out, "*")%2, "unbalanced markers in %q", out)
		})
	}
}
