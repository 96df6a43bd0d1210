package post

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/api"
	"github.com/open-cli-collective/substack-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/substack-cli/internal/view"
)

type listOptions struct {
	cmdutil.GlobalOptions
	all    bool
	limit  int
	offset int
	sort   string
	out    io.Writer
}

// NewCmdList creates the post list command.
func NewCmdList() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List posts from the archive",
		Long:    `List posts from the publication's archive, newest first.`,
		Example: `  # Latest posts
  sbk post list

  # Next page
  sbk post list --offset 25

  # Every post, merged with the latest posts endpoint
  sbk post list --all

  # Output as JSON
  sbk post list -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.GlobalOptions = cmdutil.Globals(cmd)
			opts.out = cmd.OutOrStdout()
			return runList(cmd.Context(), opts, nil)
		},
	}

	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "List every post instead of one page")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 25, "Maximum number of posts to return")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Number of posts to skip")
	cmd.Flags().StringVar(&opts.sort, "sort", "new", "Archive order: new, top")

	return cmd
}

func runList(ctx context.Context, opts *listOptions, client *api.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}

	format := opts.Format(nil)
	if client == nil {
		cfg, err := cmdutil.LoadConfig(opts.Path())
		if err != nil {
			return err
		}
		format = opts.Format(cfg)
		client = cmdutil.NewClient(cfg)
	}

	var (
		posts []api.PostSummary
		err   error
	)
	if opts.all {
		posts, err = client.ListAllPosts(ctx)
	} else {
		posts, err = client.ListArchive(ctx, &api.ListArchiveOptions{
			Limit:  opts.limit,
			Offset: opts.offset,
			Sort:   opts.sort,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}

	renderer := view.NewRenderer(format, opts.NoColor)
	renderer.SetWriter(opts.out)

	if format == view.FormatJSON {
		if posts == nil {
			posts = []api.PostSummary{}
		}
		return renderer.RenderJSON(posts)
	}

	if len(posts) == 0 {
		renderer.RenderText("No posts found.")
		return nil
	}

	headers := []string{"SLUG", "TITLE", "DATE", "AUDIENCE"}
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		audience := p.Audience
		if audience == "" {
			audience = "-"
		}
		rows = append(rows, []string{
			p.Slug,
			view.Truncate(p.Title, 60),
			view.Date(p.Date()),
			audience,
		})
	}

	renderer.RenderTable(headers, rows)

	if !opts.all && len(posts) == opts.limit {
		fmt.Fprintf(opts.out, "\n(showing %d posts, use --offset %d for more)\n", len(posts), opts.offset+len(posts))
	}

	return nil
}
