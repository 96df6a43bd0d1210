// Package root provides the root command for the sbk CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/internal/cmd/completion"
	"github.com/open-cli-collective/substack-cli/internal/cmd/configcmd"
	"github.com/open-cli-collective/substack-cli/internal/cmd/convert"
	"github.com/open-cli-collective/substack-cli/internal/cmd/feed"
	initcmd "github.com/open-cli-collective/substack-cli/internal/cmd/init"
	"github.com/open-cli-collective/substack-cli/internal/cmd/post"
	synccmd "github.com/open-cli-collective/substack-cli/internal/cmd/sync"
	"github.com/open-cli-collective/substack-cli/internal/logger"
	"github.com/open-cli-collective/substack-cli/internal/version"
	"github.com/open-cli-collective/substack-cli/internal/view"
)

// NewCmdRoot creates the root command for sbk.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sbk",
		Short: "A command-line toolkit for newsletter publications",
		Long: `sbk converts newsletter posts from HTML to Markdown and keeps a
local MDX copy of a publication in sync.

It reads posts from the publication's public API and RSS feed;
no account or API token is needed.

Get started by running: sbk init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			quiet, _ := cmd.Flags().GetBool("quiet")
			logger.Init(logger.Options{Debug: debug, Quiet: quiet})

			output, _ := cmd.Flags().GetString("output")
			return view.ValidateFormat(output)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/sbk/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")

	cmd.SetVersionTemplate("sbk version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(convert.NewCmdConvert())
	cmd.AddCommand(post.NewCmdPost())
	cmd.AddCommand(feed.NewCmdFeed())
	cmd.AddCommand(synccmd.NewCmdSync())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
