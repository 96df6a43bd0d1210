package api

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// DescriptionLimit is the length, in characters, at which feed descriptions are cut.
const DescriptionLimit = 150

var slugPattern = regexp.MustCompile(`/p/([^/?#]+)`)

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Content     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	Media       []struct {
		URL string `xml:"url,attr"`
	} `xml:"http://search.yahoo.com/mrss/ content"`
	Enclosure struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
}

// GetFeed fetches and parses the publication's RSS feed.
func (c *Client) GetFeed(ctx context.Context) ([]FeedItem, error) {
	body, err := c.get(ctx, "/feed", acceptRSS)
	if err != nil {
		return nil, err
	}
	return ParseFeed(body)
}

// ParseFeed extracts feed items from an RSS 2.0 document. Items without a title,
// link, publication date, or a /p/{slug} link are skipped.
func ParseFeed(data []byte) ([]FeedItem, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	decoder.CharsetReader = charset.NewReaderLabel

	var doc rssDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]FeedItem, 0, len(doc.Channel.Items))
	for _, raw := range doc.Channel.Items {
		title := strings.TrimSpace(raw.Title)
		link := strings.TrimSpace(raw.Link)
		pubDate := strings.TrimSpace(raw.PubDate)
		if title == "" || link == "" || pubDate == "" {
			continue
		}

		m := slugPattern.FindStringSubmatch(link)
		if m == nil {
			continue
		}

		description := raw.Description
		if strings.TrimSpace(description) == "" {
			description = raw.Content
		}

		items = append(items, FeedItem{
			Title:       title,
			Link:        link,
			Slug:        m[1],
			Image:       itemImage(raw),
			PubDate:     pubDate,
			Description: CleanDescription(description),
		})
	}

	return items, nil
}

// itemImage prefers the media enclosure, then the RSS enclosure, then the first
// image in the item's content.
func itemImage(item rssItem) string {
	for _, m := range item.Media {
		if m.URL != "" {
			return m.URL
		}
	}
	if item.Enclosure.URL != "" {
		return item.Enclosure.URL
	}
	if item.Content == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(item.Content))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return src
}

// CleanDescription strips markup, decodes entities and cuts the text at
// DescriptionLimit characters.
func CleanDescription(html string) string {
	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		text = doc.Text()
	}
	return Truncate(strings.ReplaceAll(text, "\u00a0", " "), DescriptionLimit)
}

// Truncate trims text and cuts it at limit characters, appending "..." when cut.
func Truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > limit {
		return strings.TrimSpace(string(runes[:limit])) + "..."
	}
	return text
}
