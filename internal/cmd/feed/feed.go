// Package feed provides the feed command.
package feed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/internal/cache"
	"github.com/open-cli-collective/substack-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/substack-cli/internal/config"
	"github.com/open-cli-collective/substack-cli/internal/view"
)

type feedOptions struct {
	cmdutil.GlobalOptions
	refresh bool
	limit   int
	out     io.Writer
	now     func() time.Time
}

// NewCmdFeed creates the feed command.
func NewCmdFeed() *cobra.Command {
	opts := &feedOptions{}

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show recent posts from the RSS feed",
		Long: `Show recent posts from the publication's RSS feed.

The feed is cached (in the cache directory, or in Redis when redis_addr
is set) and refetched once the cache is older than cache_ttl. When the
feed cannot be fetched, the cached copy is shown regardless of age.`,
		Example: `  # Recent posts
  sbk feed

  # Ignore the cache
  sbk feed --refresh

  # As JSON
  sbk feed -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.GlobalOptions = cmdutil.Globals(cmd)
			opts.out = cmd.OutOrStdout()

			cfg, err := cmdutil.LoadConfig(opts.Path())
			if err != nil {
				return err
			}

			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			ttl, _ := cfg.TTL()
			f := &cache.Feed{Source: cmdutil.NewClient(cfg), Store: store, TTL: ttl}
			return runFeed(cmd.Context(), opts, opts.Format(cfg), f)
		},
	}

	cmd.Flags().BoolVarP(&opts.refresh, "refresh", "r", false, "Fetch the feed even if the cache is fresh")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 0, "Maximum number of posts to show (0 for all)")

	return cmd
}

// openStore returns the Redis store when one is configured, else the file store.
func openStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.NewFileStore(cfg.CacheDirOrDefault()), func() {}, nil
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisStore(rdb, 0), func() { _ = rdb.Close() }, nil
}

func runFeed(ctx context.Context, opts *feedOptions, format view.Format, f *cache.Feed) error {
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now
	if opts.now != nil {
		now = opts.now
	}

	snap, err := f.Posts(ctx, opts.refresh)
	if err != nil {
		return err
	}

	items := snap.Items
	if opts.limit > 0 && len(items) > opts.limit {
		items = items[:opts.limit]
	}

	renderer := view.NewRenderer(format, opts.NoColor)
	renderer.SetWriter(opts.out)

	if format == view.FormatJSON {
		return renderer.RenderJSON(&cache.Snapshot{Items: items, LastUpdated: snap.LastUpdated, Version: snap.Version})
	}

	if len(items) == 0 {
		renderer.RenderText("No posts in the feed.")
		return nil
	}

	headers := []string{"TITLE", "PUBLISHED", "SLUG"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			view.Truncate(item.Title, 60),
			view.RelativeTime(item.Published(), now()),
			item.Slug,
		})
	}
	renderer.RenderTable(headers, rows)

	if format == view.FormatTable {
		fmt.Fprintf(opts.out, "\n(feed updated %s)\n", view.RelativeTime(snap.LastUpdated, now()))
	}
	return nil
}
