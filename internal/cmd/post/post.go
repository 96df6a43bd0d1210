// Package post provides post-related commands.
package post

import (
	"github.com/spf13/cobra"
)

// NewCmdPost creates the post command.
func NewCmdPost() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "post",
		Aliases: []string{"posts"},
		Short:   "Browse published posts",
		Long:    `Commands for listing the publication's archive and viewing posts as Markdown.`,
	}

	cmd.AddCommand(NewCmdList())
	cmd.AddCommand(NewCmdView())

	return cmd
}
