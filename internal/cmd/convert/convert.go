// Package convert provides the convert command.
package convert

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/pkg/md"
)

type convertOptions struct {
	engine string
	html   bool
	title  string
	in     io.Reader
	out    io.Writer
}

// NewCmdConvert creates the convert command.
func NewCmdConvert() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert HTML to Markdown",
		Long: `Convert post HTML to Markdown.

Reads the HTML from the given file, or from stdin when no file is given
or the file is "-". Scripts, styles and subscribe widgets are removed.`,
		Example: `  # Convert a saved post
  sbk convert post.html

  # From stdin
  curl -s https://example.com/post.html | sbk convert

  # Compare with the library engine
  sbk convert post.html --engine library

  # Preview the result as HTML
  sbk convert post.html --html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.in = cmd.InOrStdin()
			opts.out = cmd.OutOrStdout()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer f.Close()
				opts.in = f
			}
			return runConvert(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.engine, "engine", "e", "builtin", "Conversion engine: builtin, library")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Render the converted Markdown back to HTML")
	cmd.Flags().StringVar(&opts.title, "title", "", "Make this the document's top-level heading")

	return cmd
}

func runConvert(opts *convertOptions) error {
	engine, err := md.ParseEngine(opts.engine)
	if err != nil {
		return err
	}

	input, err := io.ReadAll(opts.in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	markdown, err := md.FromHTMLWithOptions(string(input), md.ConvertOptions{Engine: engine})
	if err != nil {
		return err
	}
	markdown = md.WithTitle(markdown, opts.title)

	if opts.html {
		rendered, err := md.ToHTML(markdown)
		if err != nil {
			return err
		}
		_, err = io.WriteString(opts.out, rendered)
		return err
	}

	if markdown == "" {
		return nil
	}
	_, err = fmt.Fprintln(opts.out, markdown)
	return err
}
