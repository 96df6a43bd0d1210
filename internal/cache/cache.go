// Package cache keeps snapshots of the publication feed so repeated commands
// do not refetch it, and so a stale copy can be served when the feed is down.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/open-cli-collective/substack-cli/api"
)

const (
	// DefaultTTL is how long a snapshot counts as fresh.
	DefaultTTL = time.Hour

	// SnapshotVersion is written into every snapshot.
	SnapshotVersion = "1.0"
)

// ErrMiss is returned by a Store that holds no snapshot.
var ErrMiss = errors.New("cache miss")

// Snapshot is a cached copy of the feed.
type Snapshot struct {
	Items       []api.FeedItem `json:"posts"`
	LastUpdated time.Time      `json:"lastUpdated"`
	Version     string         `json:"version"`
}

// Valid reports whether the snapshot is younger than ttl at now.
func (s *Snapshot) Valid(now time.Time, ttl time.Duration) bool {
	return s != nil && now.Sub(s.LastUpdated) < ttl
}

// Store persists a single feed snapshot.
type Store interface {
	// Load returns the stored snapshot, or ErrMiss when there is none.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}
