package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply or roll back the portfolio schema",
		SilenceUsage: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrate(func(m *migrate.Migrate, _ []string) error {
				if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("migration up failed: %w", err)
				}
				logger.Get().Info("Migrations applied successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: withMigrate(func(m *migrate.Migrate, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("invalid step count %q", args[0])
					}
					steps = n
				}
				if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("migration down failed: %w", err)
				}
				logger.Get().Infof("Rolled back %d migration(s)", steps)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrate(func(m *migrate.Migrate, _ []string) error {
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					logger.Get().Info("No migrations applied")
					return nil
				}
				if err != nil {
					return fmt.Errorf("failed to get version: %w", err)
				}
				logger.Get().Infof("Version: %d, Dirty: %v", version, dirty)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without running migrations, clearing the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrate(func(m *migrate.Migrate, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				if err := m.Force(v); err != nil {
					return fmt.Errorf("force failed: %w", err)
				}
				logger.Get().Infof("Forced version %d", v)
				return nil
			}),
		},
	)
	return root
}

// withMigrate opens the configured database for fn and closes it afterwards.
func withMigrate(fn func(m *migrate.Migrate, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		m, err := database.NewMigrate(database.NewConfig(cfg))
		if err != nil {
			return err
		}
		defer func() {
			srcErr, dbErr := m.Close()
			if srcErr != nil {
				logger.Get().Warnf("migrate source close error: %v", srcErr)
			}
			if dbErr != nil {
				logger.Get().Warnf("migrate database close error: %v", dbErr)
			}
		}()
		return fn(m, args)
	}
}
