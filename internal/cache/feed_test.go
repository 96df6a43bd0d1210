package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/substack-cli/api"
)

type fakeSource struct {
	items []api.FeedItem
	err   error
	calls int
}

func (s *fakeSource) GetFeed(_ context.Context) ([]api.FeedItem, error) {
	s.calls++
	return s.items, s.err
}

type memoryStore struct {
	snap    *Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (s *memoryStore) Load(_ context.Context) (*Snapshot, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.snap == nil {
		return nil, ErrMiss
	}
	return s.snap, nil
}

func (s *memoryStore) Save(_ context.Context, snap *Snapshot) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snap = snap
	return nil
}

func TestFeed_Posts(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	liveItems := []api.FeedItem{{Title: "Live", Slug: "live"}}
	fetchErr := errors.New("connection refused")

	tests := []struct {
		name          string
		cached        *Snapshot
		loadErr       error
		fetchErr      error
		force         bool
		expectedSlug  string
		expectedCalls int
		expectedSaves int
		expectErr     bool
	}{
		{
			name:          "fresh cache served without fetching",
			cached:        testSnapshot(now.Add(-10 * time.Minute)),
			expectedSlug:  "first",
			expectedCalls: 0,
			expectedSaves: 0,
		},
		{
			name:          "expired cache refetched",
			cached:        testSnapshot(now.Add(-2 * time.Hour)),
			expectedSlug:  "live",
			expectedCalls: 1,
			expectedSaves: 1,
		},
		{
			name:          "empty cache fetched",
			expectedSlug:  "live",
			expectedCalls: 1,
			expectedSaves: 1,
		},
		{
			name:          "force refresh ignores fresh cache",
			cached:        testSnapshot(now.Add(-time.Minute)),
			force:         true,
			expectedSlug:  "live",
			expectedCalls: 1,
			expectedSaves: 1,
		},
		{
			name:          "fetch failure serves stale cache",
			cached:        testSnapshot(now.Add(-48 * time.Hour)),
			fetchErr:      fetchErr,
			expectedSlug:  "first",
			expectedCalls: 1,
		},
		{
			name:          "fetch failure without cache",
			fetchErr:      fetchErr,
			expectedCalls: 1,
			expectErr:     true,
		},
		{
			name:          "unreadable cache treated as empty",
			loadErr:       errors.New("disk on fire"),
			expectedSlug:  "live",
			expectedCalls: 1,
			expectedSaves: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{items: liveItems, err: tt.fetchErr}
			store := &memoryStore{snap: tt.cached, loadErr: tt.loadErr}
			feed := &Feed{Source: source, Store: store, TTL: time.Hour, Now: func() time.Time { return now }}

			snap, err := feed.Posts(context.Background(), tt.force)
			assert.Equal(t, tt.expectedCalls, source.calls)
			assert.Equal(t, tt.expectedSaves, store.saves)

			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, fetchErr)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, snap.Items)
			assert.Equal(t, tt.expectedSlug, snap.Items[0].Slug)
		})
	}
}

func TestFeed_SavedSnapshot(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	store := &memoryStore{}
	feed := &Feed{
		Source: &fakeSource{items: []api.FeedItem{{Slug: "a"}}},
		Store:  store,
		Now:    func() time.Time { return now },
	}

	_, err := feed.Posts(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, store.snap)
	assert.Equal(t, now, store.snap.LastUpdated)
	assert.Equal(t, SnapshotVersion, store.snap.Version)
}

func TestFeed_SaveFailureIsNotFatal(t *testing.T) {
	feed := &Feed{
		Source: &fakeSource{items: []api.FeedItem{{Slug: "a"}}},
		Store:  &memoryStore{saveErr: errors.New("read-only")},
	}

	snap, err := feed.Posts(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
}

func TestFeed_NoStore(t *testing.T) {
	source := &fakeSource{items: []api.FeedItem{{Slug: "a"}}}
	feed := &Feed{Source: source}

	_, err := feed.Posts(context.Background(), false)
	require.NoError(t, err)
	_, err = feed.Posts(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}
