// Package api provides the client for a newsletter publication's public API and RSS feed.
package api

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// PostSummary is a post as listed by the archive and latest-posts endpoints.
type PostSummary struct {
	ID                int64  `json:"id"`
	Slug              string `json:"slug"`
	Title             string `json:"title,omitempty"`
	Subtitle          string `json:"subtitle,omitempty"`
	PostDate          string `json:"post_date,omitempty"`
	CanonicalURL      string `json:"canonical_url,omitempty"`
	CoverImage        string `json:"cover_image,omitempty"`
	Description       string `json:"description,omitempty"`
	TruncatedBodyText string `json:"truncated_body_text,omitempty"`
	Audience          string `json:"audience,omitempty"`
	IsPublished       *bool  `json:"is_published,omitempty"`
}

// Published reports whether the post is published. A missing flag counts as published.
func (p PostSummary) Published() bool {
	return p.IsPublished == nil || *p.IsPublished
}

// Date parses PostDate, returning the zero time when it is missing or malformed.
func (p PostSummary) Date() time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, p.PostDate); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Post is a single post including its rendered body.
type Post struct {
	PostSummary
	BodyHTML string `json:"body_html,omitempty"`
}

// HasBody reports whether the body is available to the reader.
// Paywalled posts are returned without one.
func (p *Post) HasBody() bool {
	return p != nil && strings.TrimSpace(p.BodyHTML) != ""
}

// FeedItem is an entry of the publication's RSS feed.
type FeedItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Slug        string `json:"slug"`
	Image       string `json:"image,omitempty"`
	PubDate     string `json:"pubDate"`
	Description string `json:"description,omitempty"`
}

// Published parses PubDate, returning the zero time when it is malformed.
func (f FeedItem) Published() time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, f.PubDate); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Detail     string        `json:"error"`
	Errors     []string      `json:"errors,omitempty"`
	RetryAfter time.Duration `json:"-"`
}

func (e *ErrorResponse) Error() string {
	return e.message()
}

func (e *ErrorResponse) message() string {
	switch {
	case len(e.Errors) > 0:
		return e.Errors[0]
	case e.Message != "":
		return e.Message
	default:
		return e.Detail
	}
}
