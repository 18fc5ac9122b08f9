// Package cli implements blogctl, the command line companion of the blog
// server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/personal-blog-api/internal/client"
	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/tui"
	"github.com/personal-blog-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags and the collaborators commands use.
// Tests replace the function fields.
type RootOptions struct {
	APIURL      string
	SessionPath string
	Format      string // "text" | "json"
	Verbose     bool

	LoadConfig func() (*config.Config, error)
	OpenStore  func(cfg *config.Config, log zerolog.Logger) (*Store, error)
	RunEditor  func(e *tui.Editor) (*models.Post, error)
}

// NewRootCommand creates the blogctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{
		LoadConfig: config.Load,
		OpenStore:  OpenStore,
		RunEditor:  func(e *tui.Editor) (*models.Post, error) { return tui.Run(e) },
	}

	apiURL := os.Getenv("BLOG_API_URL")
	if apiURL == "" {
		apiURL = client.DefaultBaseURL
	}

	cmd := &cobra.Command{
		Use:   "blogctl",
		Short: "Manage a personal blog",
		Long:  "blogctl talks to the blog API for authoring and to the database for seeding and migrations.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", apiURL, "blog API root URL")
	cmd.PersistentFlags().StringVar(&opts.SessionPath, "session", "", "session file (default is the user config dir)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSetupCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewPostsCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewSubscribeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// logger writes to the command's stderr so JSON output stays clean
func (o *RootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.WarnLevel
	if o.Verbose {
		level = zerolog.DebugLevel
	}
	return logger.NewConsole(cmd.ErrOrStderr(), level)
}

// session opens the persisted session and a client that sends its token
func (o *RootOptions) session() (*client.Session, *client.Client, error) {
	path := o.SessionPath
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, nil, err
		}
	}
	s := client.NewSession(path)
	c := client.New(o.APIURL, client.WithTokenSource(s.Token))
	return s, c, nil
}

// authorized is session plus validation of the stored token
func (o *RootOptions) authorized(cmd *cobra.Command) (*client.Session, *client.Client, error) {
	s, c, err := o.session()
	if err != nil {
		return nil, nil, err
	}
	if err := s.Init(cmd.Context(), c); err != nil {
		return nil, nil, err
	}
	if !s.LoggedIn() {
		return nil, nil, errNotLoggedIn
	}
	return s, c, nil
}

var errNotLoggedIn = fmt.Errorf("not logged in: run blogctl login")

// emit prints v as JSON in json mode, or calls text otherwise
func (o *RootOptions) emit(w io.Writer, v interface{}, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
