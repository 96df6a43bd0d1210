package configcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/api"
	"github.com/open-cli-collective/substack-cli/internal/cache"
	"github.com/open-cli-collective/substack-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/substack-cli/internal/config"
	"github.com/open-cli-collective/substack-cli/internal/view"
)

type testOptions struct {
	cmdutil.GlobalOptions
	out io.Writer
}

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity with the configured publication",
		Long: `Test that sbk can reach the configured publication's API, and the
Redis cache when one is configured.`,
		Example: `  # Test connection
  sbk config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := &testOptions{GlobalOptions: cmdutil.Globals(cmd), out: cmd.OutOrStdout()}
			cfg, err := cmdutil.LoadConfig(opts.Path())
			if err != nil {
				return err
			}
			return runTest(cmd.Context(), opts, cfg, nil)
		},
	}

	return cmd
}

func runTest(ctx context.Context, opts *testOptions, cfg *config.Config, client *api.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if client == nil {
		client = api.NewClient(cfg.URL, api.WithRetries(0), api.WithUserAgent(cmdutil.UserAgent()))
	}

	renderer := view.NewRenderer(view.FormatTable, opts.NoColor)
	renderer.SetWriter(opts.out)

	fmt.Fprintf(opts.out, "Testing connection to %s...\n", cfg.URL)

	posts, err := client.ListArchive(ctx, &api.ListArchiveOptions{Limit: 1})
	if err != nil {
		renderer.Error(fmt.Sprintf("Connection failed: %v", err))
		fmt.Fprintln(opts.out, "\nCheck your URL with: sbk config show")
		fmt.Fprintln(opts.out, "Reconfigure with: sbk init")
		return fmt.Errorf("connection failed: %w", err)
	}

	renderer.Success("Publication API reachable")
	if len(posts) > 0 {
		fmt.Fprintf(opts.out, "  Latest post: %s\n", posts[0].Title)
	} else {
		fmt.Fprintln(opts.out, "  No posts published yet")
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			renderer.Error(fmt.Sprintf("Redis unreachable: %v", err))
			return fmt.Errorf("redis check failed: %w", err)
		}
		_ = rdb.Close()
		renderer.Success("Redis reachable at " + cfg.RedisAddr)
	}

	return nil
}
