package api

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/open-cli-collective/substack-cli/internal/logger"
)

// ArchivePageSize is the number of posts requested per archive page.
const ArchivePageSize = 50

// ListArchiveOptions contains options for listing the archive.
type ListArchiveOptions struct {
	Limit  int
	Offset int
	Sort   string // new (default), top
}

// GetPost returns a single post, including its body, by slug.
func (c *Client) GetPost(ctx context.Context, slug string) (*Post, error) {
	if slug == "" {
		return nil, fmt.Errorf("slug is required")
	}

	body, err := c.Get(ctx, "/api/v1/posts/"+url.PathEscape(slug))
	if err != nil {
		return nil, err
	}

	var post Post
	if err := json.Unmarshal(body, &post); err != nil {
		return nil, fmt.Errorf("failed to parse post response: %w", err)
	}

	return &post, nil
}

// ListArchive returns one page of the publication archive, newest first.
func (c *Client) ListArchive(ctx context.Context, opts *ListArchiveOptions) ([]PostSummary, error) {
	params := url.Values{}
	params.Set("sort", "new")
	params.Set("limit", strconv.Itoa(ArchivePageSize))
	params.Set("offset", "0")

	if opts != nil {
		if opts.Sort != "" {
			params.Set("sort", opts.Sort)
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			params.Set("offset", strconv.Itoa(opts.Offset))
		}
	}

	body, err := c.Get(ctx, "/api/v1/archive?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var posts []PostSummary
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse archive response: %w", err)
	}

	return posts, nil
}

// ListLatest returns the most recent posts.
func (c *Client) ListLatest(ctx context.Context) ([]PostSummary, error) {
	body, err := c.Get(ctx, "/api/v1/posts")
	if err != nil {
		return nil, err
	}

	var posts []PostSummary
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse posts response: %w", err)
	}

	return posts, nil
}

// ListAllPosts walks the whole archive, overlays the latest posts (skipping
// unpublished ones) and returns one entry per slug, newest first.
func (c *Client) ListAllPosts(ctx context.Context) ([]PostSummary, error) {
	bySlug := make(map[string]PostSummary)

	for offset := 0; ; {
		page, err := c.ListArchive(ctx, &ListArchiveOptions{Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("failed to list archive at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		added := 0
		for _, p := range page {
			if _, seen := bySlug[p.Slug]; !seen {
				added++
			}
			bySlug[p.Slug] = p
		}
		// Stop if the server ignores the offset and keeps returning the same page.
		if added == 0 {
			break
		}
		offset += len(page)
	}

	latest, err := c.ListLatest(ctx)
	if err != nil {
		logger.Warn("failed to list latest posts, using archive only", "error", err)
	}
	for _, p := range latest {
		if p.Published() {
			bySlug[p.Slug] = p
		}
	}

	posts := make([]PostSummary, 0, len(bySlug))
	for _, p := range bySlug {
		posts = append(posts, p)
	}
	SortNewestFirst(posts)

	return posts, nil
}

// SortNewestFirst orders posts by date, newest first. Posts without a date sort last;
// ties are broken by slug.
func SortNewestFirst(posts []PostSummary) {
	slices.SortStableFunc(posts, func(a, b PostSummary) int {
		if c := b.Date().Compare(a.Date()); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
}
