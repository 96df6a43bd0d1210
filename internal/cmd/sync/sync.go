// Package sync provides the sync command.
package sync

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/substack-cli/internal/mdxsync"
	"github.com/open-cli-collective/substack-cli/internal/view"
)

type syncOptions struct {
	cmdutil.GlobalOptions
	dir         string
	concurrency int
	delay       time.Duration
	out         io.Writer
}

// NewCmdSync creates the sync command.
func NewCmdSync() *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror all posts into a directory of MDX files",
		Long: `Write one MDX file per published post into the content directory.

Posts whose file already carries the current publication date are skipped.
Files for posts that are no longer published are deleted. Paywalled or
missing posts get a short placeholder linking to the post.`,
		Example: `  # Sync into the configured content directory
  sbk sync

  # Sync elsewhere, gently
  sbk sync --dir site/content/posts --concurrency 1 --delay 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.GlobalOptions = cmdutil.Globals(cmd)
			opts.out = cmd.OutOrStdout()

			cfg, err := cmdutil.LoadConfig(opts.Path())
			if err != nil {
				return err
			}
			if opts.dir == "" {
				opts.dir = cfg.ContentDirOrDefault()
			}

			syncer := &mdxsync.Syncer{
				Client:      cmdutil.NewClient(cfg),
				Dir:         opts.dir,
				Concurrency: opts.concurrency,
				Delay:       opts.delay,
			}
			return runSync(cmd.Context(), opts, opts.Format(cfg), syncer)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Content directory (default: content_dir from config)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", mdxsync.DefaultConcurrency, "Number of posts fetched at once")
	cmd.Flags().DurationVar(&opts.delay, "delay", mdxsync.DefaultDelay, "Pause after each post fetch")

	return cmd
}

func runSync(ctx context.Context, opts *syncOptions, format view.Format, syncer *mdxsync.Syncer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := syncer.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	renderer := view.NewRenderer(format, opts.NoColor)
	renderer.SetWriter(opts.out)

	if format == view.FormatJSON {
		return renderer.RenderJSON(result)
	}

	renderer.Success(fmt.Sprintf("Synced %d, skipped %d (up to date), deleted %d, total %d",
		result.Synced, result.Skipped, result.Deleted, result.Total))
	if result.Unavailable > 0 {
		renderer.Warning(fmt.Sprintf("%d posts written as placeholders (body not available)", result.Unavailable))
	}
	return nil
}
