package post

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/substack-cli/api"
	"github.com/open-cli-collective/substack-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/substack-cli/internal/mdxsync"
	"github.com/open-cli-collective/substack-cli/internal/view"
	"github.com/open-cli-collective/substack-cli/pkg/md"
)

type viewOptions struct {
	cmdutil.GlobalOptions
	raw    bool
	web    bool
	mdx    bool
	engine string
	out    io.Writer
}

// NewCmdView creates the post view command.
func NewCmdView() *cobra.Command {
	opts := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "view <slug>",
		Short: "View a post",
		Long:  `View a post's content converted to Markdown.`,
		Example: `  # View a post
  sbk post view hello-world

  # View the raw HTML body
  sbk post view hello-world --raw

  # Print the MDX document sync would write
  sbk post view hello-world --mdx

  # Open in browser
  sbk post view hello-world --web`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.GlobalOptions = cmdutil.Globals(cmd)
			opts.out = cmd.OutOrStdout()
			return runView(cmd.Context(), args[0], opts, nil)
		},
	}

	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Show the raw HTML body")
	cmd.Flags().BoolVarP(&opts.web, "web", "w", false, "Open in browser instead of displaying")
	cmd.Flags().BoolVar(&opts.mdx, "mdx", false, "Show the post as an MDX document with frontmatter")
	cmd.Flags().StringVarP(&opts.engine, "engine", "e", "builtin", "Conversion engine: builtin, library")

	return cmd
}

// postView is the JSON shape of a viewed post.
type postView struct {
	*api.Post
	Markdown string `json:"markdown,omitempty"`
}

func runView(ctx context.Context, slug string, opts *viewOptions, client *api.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := md.ParseEngine(opts.engine)
	if err != nil {
		return err
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

	post, err := client.GetPost(ctx, slug)
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}

	link := post.CanonicalURL
	if link == "" {
		link = client.PostURL(post.Slug)
	}

	if opts.web {
		return openBrowser(link)
	}

	if opts.mdx {
		summary := post.PostSummary
		summary.CanonicalURL = link
		_, err := io.WriteString(opts.out, mdxsync.BuildMDX(summary, post))
		return err
	}

	var markdown string
	if post.HasBody() && !opts.raw {
		markdown, err = md.FromHTMLWithOptions(post.BodyHTML, md.ConvertOptions{Engine: engine})
		if err != nil {
			return err
		}
	}

	renderer := view.NewRenderer(format, opts.NoColor)
	renderer.SetWriter(opts.out)

	if format == view.FormatJSON {
		return renderer.RenderJSON(postView{Post: post, Markdown: markdown})
	}

	renderer.RenderKeyValue("Title", mdxsync.PostTitle(post.PostSummary))
	if post.Subtitle != "" {
		renderer.RenderKeyValue("Subtitle", post.Subtitle)
	}
	renderer.RenderKeyValue("Date", view.Date(post.Date()))
	renderer.RenderKeyValue("Link", link)
	fmt.Fprintln(opts.out)

	switch {
	case !post.HasBody():
		fmt.Fprintln(opts.out, "(Body not available, open the post with --web)")
	case opts.raw:
		fmt.Fprintln(opts.out, post.BodyHTML)
	default:
		fmt.Fprintln(opts.out, markdown)
	}

	return nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}
