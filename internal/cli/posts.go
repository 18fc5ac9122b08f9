package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/personal-blog-api/internal/client"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/render"
	"github.com/personal-blog-api/internal/web"
	"github.com/spf13/cobra"
)

// NewPostsCommand creates the posts command group.
func NewPostsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List, show, delete and export posts",
	}
	cmd.AddCommand(newPostsListCommand(rootOpts))
	cmd.AddCommand(newPostsShowCommand(rootOpts))
	cmd.AddCommand(newPostsDeleteCommand(rootOpts))
	cmd.AddCommand(newPostsExportCommand(rootOpts))
	return cmd
}

type listOptions struct {
	featured bool
	latest   int
}

func newPostsListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := rootOpts.session()
			if err != nil {
				return err
			}
			posts, err := fetchPosts(cmd.Context(), c, opts)
			if err != nil {
				return err
			}
			return rootOpts.emit(cmd.OutOrStdout(), posts, func(w io.Writer) {
				writePostTable(w, posts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.featured, "featured", false, "only featured posts")
	cmd.Flags().IntVar(&opts.latest, "latest", 0, "only the N most recent posts")

	return cmd
}

func fetchPosts(ctx context.Context, c *client.Client, opts *listOptions) ([]*models.Post, error) {
	switch {
	case opts.featured:
		return c.FeaturedPosts(ctx)
	case opts.latest > 0:
		return c.LatestPosts(ctx, opts.latest)
	default:
		return c.ListPosts(ctx)
	}
}

func writePostTable(w io.Writer, posts []*models.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts")
		return
	}
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style { return cell }).
		Headers("ID", "SLUG", "TITLE", "PUBLISHED", "READ", "FEATURED")
	for _, p := range posts {
		featured := ""
		if p.Featured {
			featured = "yes"
		}
		t.Row(p.ID, p.Slug, p.Title, web.FormatDate(p.PublishedAt), fmt.Sprintf("%d min", p.ReadTime), featured)
	}
	fmt.Fprintln(w, t.String())
}

func newPostsShowCommand(rootOpts *RootOptions) *cobra.Command {
	var rendered bool

	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := rootOpts.session()
			if err != nil {
				return err
			}
			post, err := c.GetPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rendered {
				body, err := render.Render(post.Content)
				if err != nil {
					return err
				}
				post.Content = string(body)
			}
			return rootOpts.emit(cmd.OutOrStdout(), post, func(w io.Writer) {
				fmt.Fprintf(w, "%s\n%s · %d min read\n", post.Title, web.FormatDate(post.PublishedAt), post.ReadTime)
				if len(post.Tags) > 0 {
					fmt.Fprintf(w, "Tags: %s\n", strings.Join(post.Tags, ", "))
				}
				fmt.Fprintf(w, "\n%s\n\n%s\n", post.Summary, post.Content)
			})
		},
	}

	cmd.Flags().BoolVar(&rendered, "rendered", false, "show the article markup readers get instead of the stored content")

	return cmd
}

func newPostsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := rootOpts.authorized(cmd)
			if err != nil {
				return err
			}
			msg, err := c.DeletePost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newPostsExportCommand(rootOpts *RootOptions) *cobra.Command {
	var as, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := rootOpts.authorized(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return c.Export(cmd.Context(), w, as)
		},
	}

	cmd.Flags().StringVar(&as, "as", "ndjson", "export encoding (ndjson|json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}
