package cli

import (
	"context"
	"fmt"

	"github.com/personal-blog-api/internal/client"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/tui"
	"github.com/spf13/cobra"
)

// NewEditCommand creates the edit command. Without a slug it writes a new
// post.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [slug]",
		Short: "Write or edit a post in the terminal editor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := rootOpts.authorized(cmd)
			if err != nil {
				return err
			}

			var post *models.Post
			if len(args) == 1 {
				if post, err = c.GetPost(cmd.Context(), args[0]); err != nil {
					return err
				}
			}

			e, err := tui.NewEditor(post, saveThrough(c))
			if err != nil {
				return err
			}
			saved, err := rootOpts.RunEditor(e)
			if err != nil {
				return err
			}
			if saved == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing saved")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", saved.Slug)
			return nil
		},
	}
}

// saveThrough creates new posts and updates existing ones via the API
func saveThrough(c *client.Client) tui.SaveFunc {
	return func(ctx context.Context, originalSlug string, input *models.PostInput) (*models.Post, error) {
		if originalSlug == "" {
			return c.CreatePost(ctx, input)
		}
		return c.UpdatePost(ctx, originalSlug, input)
	}
}
