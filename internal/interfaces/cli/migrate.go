package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/riskibarqy/match-insights/internal/app"
	"github.com/riskibarqy/match-insights/internal/config"
	"github.com/spf13/cobra"
)

// Migrator is the part of *migrate.Migrate the migrate commands drive.
type Migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Force(version int) error
	Version() (uint, bool, error)
	Close() (error, error)
}

func openMigrator(cfg config.Config, dir string) (Migrator, error) {
	resolved, err := app.ResolveMigrationsDir(dir)
	if err != nil {
		return nil, err
	}
	return app.NewMigrator(cfg, resolved)
}

func (r *runner) migrateCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the player metrics schema migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory, defaults to MIGRATIONS_DIR or ./db/migrations")

	run := func(fn func(*cobra.Command, Migrator, []string) error) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, args []string) error {
			cfg, err := r.config()
			if err != nil {
				return err
			}
			m, err := r.opts.OpenMigrator(cfg, dir)
			if err != nil {
				return err
			}
			defer func() {
				srcErr, dbErr := m.Close()
				if srcErr != nil || dbErr != nil {
					r.opts.Logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
				}
			}()
			return fn(c, m, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: run(func(_ *cobra.Command, m Migrator, _ []string) error {
				return r.reportMigration(m.Up(), "migrations applied")
			}),
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back the given number of migrations, one by default",
			Args:  cobra.MaximumNArgs(1),
			RunE: run(func(_ *cobra.Command, m Migrator, args []string) error {
				steps, err := parseSteps(args)
				if err != nil {
					return err
				}
				return r.reportMigration(m.Steps(-steps), "migrations rolled back", "steps", steps)
			}),
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to a target version",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(_ *cobra.Command, m Migrator, args []string) error {
				target, err := parseTarget(args[0])
				if err != nil {
					return err
				}
				return r.reportMigration(m.Migrate(target), "migrated", "version", target)
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations, clearing the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(_ *cobra.Command, m Migrator, args []string) error {
				version, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				if err := m.Force(version); err != nil {
					return fmt.Errorf("force version %d: %w", version, err)
				}
				r.opts.Logger.Info("forced version", "version", version)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: run(func(c *cobra.Command, m Migrator, _ []string) error {
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					_, err = fmt.Fprintln(c.OutOrStdout(), "version: none\ndirty: false")
					return err
				}
				if err != nil {
					return fmt.Errorf("read version: %w", err)
				}
				_, err = fmt.Fprintf(c.OutOrStdout(), "version: %d\ndirty: %t\n", version, dirty)
				return err
			}),
		},
	)
	return cmd
}

func (r *runner) reportMigration(err error, msg string, args ...any) error {
	if errors.Is(err, migrate.ErrNoChange) {
		r.opts.Logger.Info("no migration changes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	r.opts.Logger.Info(msg, args...)
	return nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}
