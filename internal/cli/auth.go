package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/personal-blog-api/internal/models"
	"github.com/spf13/cobra"
)

// NewSetupCommand creates the setup command.
func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the admin account configured on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := rootOpts.session()
			if err != nil {
				return err
			}
			resp, err := c.Setup(cmd.Context())
			if err != nil {
				return err
			}
			return rootOpts.emit(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %s\n", resp.Message, resp.Email)
			})
		},
	}
}

type loginOptions struct {
	email    string
	password string
}

// NewLoginCommand creates the login command. The password is read from
// --password, then BLOG_PASSWORD, then the first line of stdin.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.email, "email", "e", "", "admin email")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "admin password")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runLogin(rootOpts *RootOptions, opts *loginOptions, cmd *cobra.Command) error {
	password := opts.password
	if password == "" {
		password = os.Getenv("BLOG_PASSWORD")
	}
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	s, c, err := rootOpts.session()
	if err != nil {
		return err
	}
	user, err := s.Login(cmd.Context(), c, opts.email, password)
	if err != nil {
		return err
	}
	return rootOpts.emit(cmd.OutOrStdout(), user, func(w io.Writer) {
		fmt.Fprintf(w, "Logged in as %s\n", user.Email)
	})
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := rootOpts.session()
			if err != nil {
				return err
			}
			if err := s.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := rootOpts.authorized(cmd)
			if err != nil {
				return err
			}
			user := s.User()
			if user == nil {
				user = &models.AdminView{}
			}
			return rootOpts.emit(cmd.OutOrStdout(), user, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s)\n", user.Email, user.Role)
			})
		},
	}
}

// NewSubscribeCommand creates the subscribe command.
func NewSubscribeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <email>",
		Short: "Add an address to the newsletter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := rootOpts.session()
			if err != nil {
				return err
			}
			msg, err := c.Subscribe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
