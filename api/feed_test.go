package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:media="http://search.yahoo.com/mrss/" version="2.0">
<channel>
<title><![CDATA[Example Newsletter]]></title>
<item>
  <title><![CDATA[With media]]></title>
  <link>https://example.substack.com/p/with-media</link>
  <pubDate>Mon, 01 Jul 2024 10:00:00 GMT</pubDate>
  <description><![CDATA[A short &amp; sweet description]]></description>
  <media:content url="https://cdn.example.com/media.jpg" medium="image"/>
  <enclosure url="https://cdn.example.com/enclosure.jpg" length="0" type="image/jpeg"/>
  <content:encoded><![CDATA[<p><img src="https://cdn.example.com/inline.jpg"></p>]]></content:encoded>
</item>
<item>
  <title>With enclosure</title>
  <link>https://example.substack.com/p/with-enclosure?utm_source=rss</link>
  <pubDate>Sun, 30 Jun 2024 10:00:00 GMT</pubDate>
  <enclosure url="https://cdn.example.com/enclosure.jpg" length="0" type="image/jpeg"/>
  <content:encoded><![CDATA[<p>Body <b>text</b> here</p>]]></content:encoded>
</item>
<item>
  <title>Inline image</title>
  <link>https://example.substack.com/p/inline-image</link>
  <pubDate>Sat, 29 Jun 2024 10:00:00 GMT</pubDate>
  <content:encoded><![CDATA[<p>Intro</p><figure><img alt="x" src="https://cdn.example.com/inline.jpg"></figure>]]></content:encoded>
</item>
<item>
  <title>Not a post</title>
  <link>https://example.substack.com/about</link>
  <pubDate>Fri, 28 Jun 2024 10:00:00 GMT</pubDate>
</item>
<item>
  <title>No date</title>
  <link>https://example.substack.com/p/no-date</link>
</item>
</channel>
</rss>`

func TestParseFeed(t *testing.T) {
	items, err := ParseFeed([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, FeedItem{
		Title:       "With media",
		Link:        "https://example.substack.com/p/with-media",
		Slug:        "with-media",
		Image:       "https://cdn.example.com/media.jpg",
		PubDate:     "Mon, 01 Jul 2024 10:00:00 GMT",
		Description: "A short & sweet description",
	}, items[0])

	assert.Equal(t, "with-enclosure", items[1].Slug)
	assert.Equal(t, "https://cdn.example.com/enclosure.jpg", items[1].Image)
	assert.Equal(t, "Body text here", items[1].Description)

	assert.Equal(t, "inline-image", items[2].Slug)
	assert.Equal(t, "https://cdn.example.com/inline.jpg", items[2].Image)
	assert.Equal(t, "Intro", items[2].Description)

	assert.Equal(t, 2024, items[0].Published().Year())
}

func TestParseFeed_Invalid(t *testing.T) {
	_, err := ParseFeed([]byte("this is not xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse feed")
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text",
			input:    "Hello",
			expected: "Hello",
		},
		{
			name:     "tags stripped and entities decoded",
			input:    "<p>Tom &amp; Jerry&#8217;s &quot;show&quot;</p>",
			expected: "Tom & Jerry’s \"show\"",
		},
		{
			name:     "non-breaking spaces",
			input:    "a&nbsp;b",
			expected: "a b",
		},
		{
			name:     "long text truncated",
			input:    strings.Repeat("a", 149) + " " + strings.Repeat("b", 20),
			expected: strings.Repeat("a", 149) + "...",
		},
		{
			name:     "exactly at the limit",
			input:    strings.Repeat("c", DescriptionLimit),
			expected: strings.Repeat("c", DescriptionLimit),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanDescription(tt.input))
		})
	}
}

func TestClient_GetFeed(t *testing.T) {
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed", r.URL.Path)
		accept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	items, err := client.GetFeed(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Contains(t, accept, "application/rss+xml")
}

func TestClient_GetFeed_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetFeed(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("  abc  ", 5))
	assert.Equal(t, "ab...", Truncate("ab cd", 3))
	assert.Equal(t, "héé...", Truncate("héééé", 3))
	assert.Equal(t, "", Truncate("   ", 3))
}
