package configcmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/substack-cli/internal/config"
	"github.com/open-cli-collective/substack-cli/internal/view"
)

type showOptions struct {
	cmdutil.GlobalOptions
	out io.Writer
}

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current sbk configuration and where each value comes from.`,
		Example: `  # Show current config
  sbk config show

  # As JSON
  sbk config show -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(&showOptions{GlobalOptions: cmdutil.Globals(cmd), out: cmd.OutOrStdout()})
		},
	}

	return cmd
}

type shownField struct {
	Label   string `json:"-"`
	Key     string `json:"key"`
	Value   string `json:"value"`
	Source  string `json:"source"`
	envVars []string
}

func runShow(opts *showOptions) error {
	if opts.NoColor {
		color.NoColor = true
	}

	configPath := opts.Path()

	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fields := []shownField{
		{Label: "URL", Key: "url", Value: cfg.URL, envVars: []string{"SBK_URL", "SUBSTACK_URL"}},
		{Label: "Content dir", Key: "content_dir", Value: cfg.ContentDir, envVars: []string{"SBK_CONTENT_DIR"}},
		{Label: "Cache dir", Key: "cache_dir", Value: cfg.CacheDir, envVars: []string{"SBK_CACHE_DIR"}},
		{Label: "Cache TTL", Key: "cache_ttl", Value: cfg.CacheTTL, envVars: []string{"SBK_CACHE_TTL"}},
		{Label: "Redis", Key: "redis_addr", Value: cfg.RedisAddr, envVars: []string{"SBK_REDIS_ADDR"}},
		{Label: "Output", Key: "output_format", Value: cfg.OutputFormat},
	}
	fileValues := map[string]string{
		"url":           fileCfg.URL,
		"content_dir":   fileCfg.ContentDir,
		"cache_dir":     fileCfg.CacheDir,
		"cache_ttl":     fileCfg.CacheTTL,
		"redis_addr":    fileCfg.RedisAddr,
		"output_format": fileCfg.OutputFormat,
	}
	for i := range fields {
		fields[i].Source = source(fields[i], fileValues[fields[i].Key], fileErr == nil)
	}

	if opts.Format(cfg) == view.FormatJSON {
		renderer := view.NewRenderer(view.FormatJSON, opts.NoColor)
		renderer.SetWriter(opts.out)
		return renderer.RenderJSON(map[string]any{
			"path":   configPath,
			"exists": fileErr == nil,
			"fields": fields,
		})
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	for _, f := range fields {
		_, _ = bold.Fprintf(opts.out, "%-13s", f.Label+":")
		if f.Value == "" {
			_, _ = dim.Fprintln(opts.out, "-")
			continue
		}
		fmt.Fprint(opts.out, f.Value)
		_, _ = dim.Fprintf(opts.out, "  (source: %s)\n", f.Source)
	}

	fmt.Fprintln(opts.out)
	_, _ = dim.Fprintf(opts.out, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(opts.out, "(file not found)")
	}

	return nil
}

// source names where a resolved value came from: an env var, the config file, or "-".
func source(f shownField, fileValue string, fileExists bool) string {
	if f.Value == "" {
		return "-"
	}
	for _, envVar := range f.envVars {
		if v := os.Getenv(envVar); v != "" && v == f.Value {
			return envVar
		}
	}
	if fileExists && fileValue == f.Value {
		return "config"
	}
	return "-"
}
