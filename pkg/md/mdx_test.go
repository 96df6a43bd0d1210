package md

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnwrapLinkedImages(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "image wrapped across lines",
			input:    "[\n![alt](img.png)\n](https://link)",
			expected: "![alt](img.png)",
		},
		{
			name:     "image wrapped inline",
			input:    "before [![a](b.png)](c) after",
			expected: "before ![a](b.png) after",
		},
		{
			name:     "plain image untouched",
			input:    "![a](b.png)",
			expected: "![a](b.png)",
		},
		{
			name:     "plain link untouched",
			input:    "[text](https://link)",
			expected: "[text](https://link)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UnwrapLinkedImages(tt.input))
		})
	}
}

func TestEmbedTweets(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare status URL on its own line",
			input:    "https://x.com/user/status/123?s=20",
			expected: "\n<Tweet id=\"123\" />\n",
		},
		{
			name:     "markdown link on its own line",
			input:    "[see](https://twitter.com/a/status/456)",
			expected: "\n<Tweet id=\"456\" />\n",
		},
		{
			name:     "markdown link inside text",
			input:    "text [see](https://www.x.com/a/status/789) more",
			expected: "text \n\n<Tweet id=\"789\" />\n\n more",
		},
		{
			name:     "bare URL inside text",
			input:    "Look https://x.com/a/status/42 now",
			expected: "Look \n\n<Tweet id=\"42\" />\n\n now",
		},
		{
			name:     "lower-case component is fixed",
			input:    `<tweet id="5"/>`,
			expected: `<Tweet id="5" />`,
		},
		{
			name:     "profile links untouched",
			input:    "[home](https://x.com/user)",
			expected: "[home](https://x.com/user)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EmbedTweets(tt.input))
		})
	}
}

func TestWithTitle(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		title    string
		expected string
	}{
		{
			name:     "replaces leading heading",
			markdown: "## Old\n\nBody",
			title:    "New",
			expected: "# New\n\nBody",
		},
		{
			name:     "prepends when no heading",
			markdown: "\n\nBody",
			title:    " New ",
			expected: "# New\n\nBody",
		},
		{
			name:     "heading only",
			markdown: "# Old",
			title:    "New",
			expected: "# New\n\n",
		},
		{
			name:     "blank title",
			markdown: "Body",
			title:    " ",
			expected: "Body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WithTitle(tt.markdown, tt.title))
		})
	}
}

func TestInsertDate(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{
			name:     "after title",
			markdown: "# T\n\nBody",
			expected: "# T\n\n<Date date=\"2024-01-02T00:00:00.000Z\" />\n\n\nBody",
		},
		{
			name:     "no heading",
			markdown: "Body",
			expected: "Body",
		},
		{
			name:     "second-level heading is not a title",
			markdown: "## T\nBody",
			expected: "## T\nBody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InsertDate(tt.markdown, "2024-01-02T00:00:00.000Z"))
		})
	}
}
