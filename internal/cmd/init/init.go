// Package init provides the init command for sbk.
package init

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/api"
	"github.com/open-cli-collective/substack-cli/internal/cache"
	"github.com/open-cli-collective/substack-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/substack-cli/internal/config"
)

const (
	backendFile  = "file"
	backendRedis = "redis"
)

type initOptions struct {
	configPath string
	url        string
	contentDir string
	redisAddr  string
	noVerify   bool
	noInput    bool
	out        io.Writer
}

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize sbk configuration",
		Long: `Initialize sbk with your publication's address.

This command will guide you through setting up the publication URL,
the directory synced posts are written to, and where the feed is cached.
The configuration will be saved to ~/.config/sbk/config.yml.

No credentials are needed: sbk only reads the publication's public API.`,
		Example: `  # Interactive setup
  sbk init

  # Pre-populate URL
  sbk init --url https://example.substack.com

  # Non-interactive
  sbk init --url https://example.substack.com --content-dir content/posts --no-input`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath = cmdutil.Globals(cmd).Path()
			opts.out = cmd.OutOrStdout()
			return runInit(cmd.Context(), opts, nil)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "Publication URL (e.g., https://example.substack.com)")
	cmd.Flags().StringVar(&opts.contentDir, "content-dir", "", "Directory synced MDX files are written to")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Cache the feed in Redis at this address instead of on disk")
	cmd.Flags().BoolVar(&opts.noVerify, "no-verify", false, "Skip connection verification")
	cmd.Flags().BoolVar(&opts.noInput, "no-input", false, "Use flag values without prompting")

	return cmd
}

func runInit(ctx context.Context, opts *initOptions, client *api.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := &config.Config{
		URL:        opts.url,
		ContentDir: opts.contentDir,
		RedisAddr:  opts.redisAddr,
	}
	if cfg.ContentDir == "" {
		cfg.ContentDir = config.DefaultContentDir
	}

	if !opts.noInput {
		proceed, err := confirmOverwrite(opts.configPath)
		if err != nil || !proceed {
			if err == nil {
				fmt.Fprintln(opts.out, "Initialization cancelled.")
			}
			return err
		}
		if err := runForm(cfg); err != nil {
			return err
		}
	}

	cfg.NormalizeURL()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !opts.noVerify {
		fmt.Fprint(opts.out, "Verifying connection... ")
		if err := verifyConnection(ctx, cfg, client); err != nil {
			fmt.Fprintln(opts.out, "failed!")
			return fmt.Errorf("connection verification failed: %w", err)
		}
		fmt.Fprintln(opts.out, "success!")
	}

	if err := cfg.Save(opts.configPath); err != nil {
		return err
	}

	fmt.Fprintf(opts.out, "\nConfiguration saved to %s\n", opts.configPath)
	fmt.Fprintln(opts.out, "\nYou're all set! Try running:")
	fmt.Fprintln(opts.out, "  sbk post list")
	fmt.Fprintln(opts.out, "  sbk sync")

	return nil
}

func confirmOverwrite(configPath string) (bool, error) {
	if _, err := os.Stat(configPath); err != nil {
		return true, nil
	}

	var overwrite bool
	err := huh.NewConfirm().
		Title("Configuration already exists").
		Description(fmt.Sprintf("Overwrite %s?", configPath)).
		Value(&overwrite).
		Run()
	return overwrite, err
}

func runForm(cfg *config.Config) error {
	backend := backendFile
	if cfg.RedisAddr != "" {
		backend = backendRedis
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Publication URL").
				Description("The address of the newsletter").
				Placeholder("https://example.substack.com").
				Value(&cfg.URL).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("URL is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Content directory").
				Description("Where sbk sync writes MDX files").
				Value(&cfg.ContentDir),

			huh.NewSelect[string]().
				Title("Feed cache").
				Options(
					huh.NewOption("Local file", backendFile),
					huh.NewOption("Redis / Valkey", backendRedis),
				).
				Value(&backend),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Redis address").
				Placeholder("localhost:6379").
				Value(&cfg.RedisAddr).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("address is required")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return backend != backendRedis }),
	)

	if err := form.Run(); err != nil {
		return err
	}
	if backend != backendRedis {
		cfg.RedisAddr = ""
	}
	return nil
}

// verifyConnection fetches one archive entry from the publication, and pings
// Redis when one is configured.
func verifyConnection(ctx context.Context, cfg *config.Config, client *api.Client) error {
	if client == nil {
		client = api.NewClient(cfg.URL,
			api.WithRetries(0),
			api.WithUserAgent(cmdutil.UserAgent()),
			api.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		)
	}

	if _, err := client.ListArchive(ctx, &api.ListArchiveOptions{Limit: 1}); err != nil {
		var errResp *api.ErrorResponse
		switch {
		case errors.Is(err, api.ErrNotFound):
			return fmt.Errorf("no publication found at %s - check the URL", cfg.URL)
		case errors.As(err, &errResp) && errResp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("access denied - the publication may be private")
		case errors.As(err, &errResp):
			return fmt.Errorf("unexpected status code: %d", errResp.StatusCode)
		default:
			return err
		}
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		_ = rdb.Close()
	}

	return nil
}
