package configcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/internal/cache"
	"github.com/open-cli-collective/substack-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/substack-cli/internal/config"
)

type clearOptions struct {
	cmdutil.GlobalOptions
	cache bool
	out   io.Writer
}

// NewCmdClear creates the config clear command.
func NewCmdClear() *cobra.Command {
	opts := &clearOptions{}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stored configuration",
		Long: `Delete the sbk configuration file. Environment variables will still be used if set.

With --cache, the cached feed is removed instead and the configuration is kept.`,
		Example: `  # Clear config
  sbk config clear

  # Drop the cached feed
  sbk config clear --cache`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.GlobalOptions = cmdutil.Globals(cmd)
			opts.out = cmd.OutOrStdout()
			if opts.cache {
				return runClearCache(cmd.Context(), opts)
			}
			return runClear(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.cache, "cache", false, "Remove the cached feed instead of the configuration")

	return cmd
}

func runClear(opts *clearOptions) error {
	if opts.NoColor {
		color.NoColor = true
	}

	configPath := opts.Path()
	err := os.Remove(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove config file: %w", err)
	}

	green := color.New(color.FgGreen)
	dim := color.New(color.Faint)

	if os.IsNotExist(err) {
		_, _ = green.Fprintln(opts.out, "✓ No config file to remove")
	} else {
		_, _ = green.Fprintf(opts.out, "✓ Configuration cleared from %s\n", configPath)
	}

	var activeVars []string
	for _, v := range []string{"SBK_URL", "SUBSTACK_URL", "SBK_CONTENT_DIR", "SBK_CACHE_DIR", "SBK_CACHE_TTL", "SBK_REDIS_ADDR"} {
		if os.Getenv(v) != "" {
			activeVars = append(activeVars, v)
		}
	}
	if len(activeVars) > 0 {
		_, _ = dim.Fprintf(opts.out, "\nNote: Environment variables will still be used: %s\n", strings.Join(activeVars, ", "))
	}

	return nil
}

func runClearCache(ctx context.Context, opts *clearOptions) error {
	if opts.NoColor {
		color.NoColor = true
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadWithEnv(opts.Path())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	green := color.New(color.FgGreen)

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer rdb.Close()

		if err := cache.NewRedisStore(rdb, 0).Clear(ctx); err != nil {
			return err
		}
		_, _ = green.Fprintf(opts.out, "✓ Cache cleared from Redis at %s\n", cfg.RedisAddr)
		return nil
	}

	store := cache.NewFileStore(cfg.CacheDirOrDefault())
	if err := store.Clear(); err != nil {
		return err
	}
	_, _ = green.Fprintf(opts.out, "✓ Cache cleared from %s\n", store.Path())
	return nil
}
