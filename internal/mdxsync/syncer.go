package mdxsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/open-cli-collective/substack-cli/api"
	"github.com/open-cli-collective/substack-cli/internal/logger"
)

const (
	// DefaultConcurrency is the number of posts fetched at once.
	DefaultConcurrency = 2

	// DefaultDelay is the pause after each post fetch.
	DefaultDelay = 200 * time.Millisecond

	fileExt = ".mdx"
)

// PostSource lists and fetches posts.
type PostSource interface {
	ListAllPosts(ctx context.Context) ([]api.PostSummary, error)
	GetPost(ctx context.Context, slug string) (*api.Post, error)
	PostURL(slug string) string
}

// Syncer writes one MDX file per published post into Dir and removes files
// for posts that are no longer listed.
type Syncer struct {
	Client      PostSource
	Dir         string
	Concurrency int
	Delay       time.Duration
}

// Result summarizes a sync run.
type Result struct {
	Total       int `json:"total"`
	Synced      int `json:"synced"`
	Skipped     int `json:"skipped"`
	Unavailable int `json:"unavailable"`
	Deleted     int `json:"deleted"`
}

// Run performs the sync. Posts whose file already carries the current
// publication date are left untouched.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}

	posts, err := s.Client.ListAllPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	result := &Result{}
	listed := make(map[string]bool, len(posts))
	var pending []api.PostSummary

	for _, p := range posts {
		if !validSlug(p.Slug) {
			logger.Warn("skipping post with unusable slug", "slug", p.Slug)
			continue
		}
		listed[p.Slug] = true
		result.Total++

		if s.upToDate(p) {
			logger.Debug("post up to date", "slug", p.Slug)
			result.Skipped++
			continue
		}
		pending = append(pending, p)
	}

	deleted, err := s.removeUnlisted(listed)
	if err != nil {
		return nil, err
	}
	result.Deleted = deleted

	if err := s.fetchAll(ctx, pending, result); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Syncer) path(slug string) string {
	return filepath.Join(s.Dir, slug+fileExt)
}

func (s *Syncer) upToDate(p api.PostSummary) bool {
	data, err := os.ReadFile(s.path(p.Slug))
	if err != nil {
		return false
	}
	return ParseFrontmatter(string(data))["date"] == PostDate(p)
}

// removeUnlisted deletes MDX files whose slug is not in listed. An empty
// listing deletes nothing.
func (s *Syncer) removeUnlisted(listed map[string]bool) (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read content directory: %w", err)
	}

	if len(listed) == 0 {
		if len(entries) > 0 {
			logger.Warn("no posts listed, keeping existing files", "dir", s.Dir)
		}
		return 0, nil
	}

	deleted := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		slug := strings.TrimSuffix(name, fileExt)
		if listed[slug] {
			continue
		}
		logger.Info("deleting removed post", "slug", slug)
		if err := os.Remove(filepath.Join(s.Dir, name)); err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", name, err)
		}
		deleted++
	}
	return deleted, nil
}

func (s *Syncer) fetchAll(ctx context.Context, pending []api.PostSummary, result *Result) error {
	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, summary := range pending {
		g.Go(func() error {
			if summary.CanonicalURL == "" {
				summary.CanonicalURL = s.Client.PostURL(summary.Slug)
			}

			logger.Info("syncing post", "slug", summary.Slug)
			post, err := s.Client.GetPost(gctx, summary.Slug)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if !errors.Is(err, api.ErrNotFound) {
					logger.Warn("failed to fetch post", "slug", summary.Slug, "error", err)
				}
				post = nil
			}

			content := BuildMDX(summary, post)
			if err := os.WriteFile(s.path(summary.Slug), []byte(content), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", summary.Slug+fileExt, err)
			}

			mu.Lock()
			result.Synced++
			if !post.HasBody() {
				result.Unavailable++
			}
			mu.Unlock()

			return pause(gctx, s.Delay)
		})
	}

	return g.Wait()
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func validSlug(slug string) bool {
	return slug != "" && slug != "." && slug != ".." && !strings.ContainsAny(slug, `/\`)
}
