package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/open-cli-collective/substack-cli/api"
	"github.com/open-cli-collective/substack-cli/internal/logger"
)

// FeedSource fetches the live feed.
type FeedSource interface {
	GetFeed(ctx context.Context) ([]api.FeedItem, error)
}

// Feed serves feed items through a Store.
type Feed struct {
	Source FeedSource
	Store  Store // optional
	TTL    time.Duration
	Now    func() time.Time
}

// Posts returns the feed. A fresh snapshot is served from the store unless
// forceRefresh is set; otherwise the feed is fetched and saved. When fetching
// fails, any stored snapshot is served regardless of age.
func (f *Feed) Posts(ctx context.Context, forceRefresh bool) (*Snapshot, error) {
	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	ttl := f.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cached := f.load(ctx)
	if !forceRefresh && cached.Valid(now, ttl) {
		logger.Debug("feed cache hit", "items", len(cached.Items), "updated", cached.LastUpdated)
		return cached, nil
	}

	items, err := f.Source.GetFeed(ctx)
	if err != nil {
		if cached != nil {
			logger.Warn("failed to fetch feed, serving cached copy", "error", err, "updated", cached.LastUpdated)
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	snap := &Snapshot{Items: items, LastUpdated: now, Version: SnapshotVersion}
	if f.Store != nil {
		if err := f.Store.Save(ctx, snap); err != nil {
			logger.Warn("failed to write feed cache", "error", err)
		}
	}
	return snap, nil
}

func (f *Feed) load(ctx context.Context) *Snapshot {
	if f.Store == nil {
		return nil
	}
	snap, err := f.Store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logger.Warn("failed to read feed cache", "error", err)
		}
		return nil
	}
	return snap
}
