package main

import (
	"context"
	"database/sql"
	"fmt"
	root "shoptogether"
	"shoptogether/internal/config"
	"shoptogether/pkg/logger"

	"github.com/pressly/goose/v3"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateSchema applies the embedded goose migrations of the shop tables.
func migrateSchema(db *sql.DB, statusOnly bool) error {
	goose.SetBaseFS(root.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set goose dialect to postgres: %w", err)
	}

	if statusOnly {
		if err := goose.Status(db, "migrations"); err != nil {
			return fmt.Errorf("could not read migration status: %w", err)
		}

		return nil
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("could not migrate pgsql: %w", err)
	}

	return nil
}

// migrateQueue brings the river job tables to the latest version.
func migrateQueue(ctx context.Context, db *sql.DB) error {
	migrator, err := rivermigrate.New(riverdatabasesql.New(db), nil)
	if err != nil {
		return fmt.Errorf("could not create river queue migrator: %w", err)
	}

	migrations := migrator.AllVersions()
	latestVersion := migrations[len(migrations)-1].Version

	existing, err := migrator.ExistingVersions(ctx)
	if err != nil {
		return fmt.Errorf("could not get existing river queue migrations: %w", err)
	}
	if len(existing) > 0 && existing[len(existing)-1].Version >= latestVersion {
		return nil
	}

	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{
		TargetVersion: latestVersion,
	}); err != nil {
		return fmt.Errorf("could not migrate river queue: %w", err)
	}

	return nil
}

// migrateCommand constructs the 'migrate' subcommand that brings the postgres
// schema and the job queue tables to their latest version.
func migrateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates database to the latest version",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			statusOnly, _ := cmd.Flags().GetBool("status")

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			db, ok := strg.DB.(*sql.DB)
			if !ok {
				logger.Fatal(ctx, "postgres storage is not backed by a database handle")
			}

			if err := migrateSchema(db, statusOnly); err != nil {
				logger.Fatal(ctx, "could not migrate schema", zap.Error(err))
			}
			if statusOnly {
				return
			}

			if err := migrateQueue(ctx, db); err != nil {
				logger.Fatal(ctx, "could not migrate job queue", zap.Error(err))
			}
			logger.Info(ctx, "database is up to date")
		},
	}

	cmd.Flags().Bool("status", false, "Only print the schema migration status")

	return cmd
}
