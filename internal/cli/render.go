package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/personal-blog-api/internal/editor"
	"github.com/personal-blog-api/internal/render"
	"github.com/spf13/cobra"
)

type renderOutput struct {
	HTML     string `json:"html"`
	Words    int    `json:"words"`
	ReadTime int    `json:"readTime"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	var standalone bool

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a stored content fragment as article HTML",
		Long: `Render a content fragment the way the blog shows it to readers.
Use - to read from stdin. With --standalone the output is a complete
page with the article stylesheet inlined.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fragment, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			body, err := render.Render(fragment)
			if err != nil {
				return err
			}
			stats := editor.StatsFor(fragment)
			out := renderOutput{HTML: string(body), Words: stats.Words, ReadTime: stats.ReadTime}

			return rootOpts.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
				if !standalone {
					fmt.Fprint(w, out.HTML)
					return
				}
				fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n%s</style>\n</head>\n<body>\n<div class=\"article\">\n%s</div>\n</body>\n</html>\n",
					render.Stylesheet(), out.HTML)
			})
		},
	}

	cmd.Flags().BoolVar(&standalone, "standalone", false, "wrap the article in a complete HTML page")

	return cmd
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
