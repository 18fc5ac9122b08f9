package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/database"
	"github.com/personal-blog-api/internal/repository"
	"github.com/personal-blog-api/internal/seed"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Migrator is the schema side of the database
type Migrator interface {
	RunMigrations(path string) error
	MigrateDown(path string) error
	MigrateToVersion(path string, version uint) error
}

// Store is direct database access for the commands that bypass the API
type Store struct {
	Repos    *repository.Repositories
	Migrator Migrator
	Close    func() error
}

// OpenStore connects to the configured Postgres database
func OpenStore(cfg *config.Config, log zerolog.Logger) (*Store, error) {
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &Store{Repos: repository.New(db), Migrator: db, Close: db.Close}, nil
}

func (o *RootOptions) openStore(cmd *cobra.Command) (*config.Config, *Store, zerolog.Logger, error) {
	log := o.logger(cmd)
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, nil, log, fmt.Errorf("loading configuration: %w", err)
	}
	store, err := o.OpenStore(cfg, log)
	if err != nil {
		return nil, nil, log, err
	}
	return cfg, store, log, nil
}

type seedOptions struct {
	file  string
	reset bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample posts and the admin account into the database",
		Long: `Load a YAML fixture into the database. Without --file the built-in
sample is used. The admin is created only when none exists; its
credentials default to ADMIN_EMAIL and ADMIN_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "fixture file (default is the built-in sample)")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "delete existing posts and admins first")

	return cmd
}

func runSeed(rootOpts *RootOptions, opts *seedOptions, cmd *cobra.Command) error {
	fixture, err := loadFixture(opts.file)
	if err != nil {
		return err
	}

	cfg, store, log, err := rootOpts.openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := seed.Apply(cmd.Context(), store.Repos, fixture, seed.Options{
		Reset:         opts.reset,
		AdminEmail:    cfg.Auth.AdminEmail,
		AdminPassword: cfg.Auth.AdminPassword,
		BcryptCost:    cfg.Auth.BcryptCost,
	}, log)
	if err != nil {
		return err
	}

	return rootOpts.emit(cmd.OutOrStdout(), res, func(w io.Writer) {
		if opts.reset {
			fmt.Fprintf(w, "Cleared %d posts\n", res.Cleared)
		}
		if res.AdminCreated {
			fmt.Fprintf(w, "Created admin %s\n", res.AdminEmail)
		}
		fmt.Fprintf(w, "Inserted %d posts\n", res.Posts)
	})
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.Sample()
	}
	return seed.LoadFile(path)
}

// NewMigrateCommand creates the migrate command group.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "migrations directory (default MIGRATIONS_PATH)")

	migrationsPath := func(cfg *config.Config) string {
		if path != "" {
			return path
		}
		return cfg.Server.MigrationsPath
	}

	run := func(fn func(m Migrator, dir string) error, done string) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, store, _, err := rootOpts.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := fn(store.Migrator, migrationsPath(cfg)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), done)
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(m Migrator, dir string) error {
			return m.RunMigrations(dir)
		}, "Migrations applied"),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: run(func(m Migrator, dir string) error {
			return m.MigrateDown(dir)
		}, "Rolled back one migration"),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "to <version>",
		Short: "Migrate up or down to a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return run(func(m Migrator, dir string) error {
				return m.MigrateToVersion(dir, uint(version))
			}, fmt.Sprintf("At version %d", version))(cmd, args)
		},
	})

	return cmd
}
