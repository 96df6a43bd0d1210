// Package cmdutil holds helpers shared by sbk commands.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/api"
	"github.com/open-cli-collective/substack-cli/internal/config"
	"github.com/open-cli-collective/substack-cli/internal/version"
	"github.com/open-cli-collective/substack-cli/internal/view"
)

// GlobalOptions are the values of the root command's persistent flags.
type GlobalOptions struct {
	ConfigPath string
	Output     string
	NoColor    bool
}

// Globals reads the persistent flags visible from cmd.
func Globals(cmd *cobra.Command) GlobalOptions {
	configPath, _ := cmd.Flags().GetString("config")
	output, _ := cmd.Flags().GetString("output")
	noColor, _ := cmd.Flags().GetBool("no-color")
	return GlobalOptions{ConfigPath: configPath, Output: output, NoColor: noColor}
}

// Path returns the config file path, defaulting to config.DefaultConfigPath.
func (g GlobalOptions) Path() string {
	if g.ConfigPath != "" {
		return g.ConfigPath
	}
	return config.DefaultConfigPath()
}

// Format resolves the output format: the --output flag, then the config file, then table.
func (g GlobalOptions) Format(cfg *config.Config) view.Format {
	if g.Output != "" {
		return view.Format(g.Output)
	}
	if cfg != nil && cfg.OutputFormat != "" {
		return view.Format(cfg.OutputFormat)
	}
	return view.FormatTable
}

// LoadConfig loads, normalizes and validates the configuration at path.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w (run 'sbk init' to configure)", err)
	}

	cfg.NormalizeURL()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run 'sbk init' to configure)", err)
	}
	return cfg, nil
}

// NewClient creates an API client for the configured publication.
func NewClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.URL, api.WithUserAgent(UserAgent()))
}

// UserAgent is the User-Agent sent by sbk.
func UserAgent() string {
	return "Mozilla/5.0 (compatible; sbk/" + version.Version + "; +https://github.com/open-cli-collective/substack-cli)"
}
