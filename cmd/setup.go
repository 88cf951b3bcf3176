package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/shared"
)

// SetupDatabase creates the config file from the template when it is missing,
// then initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configFile()

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			config, err := shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
			} else {
				r.configure(config)
			}
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// SetupStatus lists which migrations have been applied to the configured database.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.store(); err != nil {
		return err
	}

	total, applied, err := shared.MigrationStatus(r.db)
	if err != nil {
		return err
	}

	r.writePlain("Database:   %s\n", r.config.Database.Path)
	r.writePlain("Migrations: %d of %d applied\n", len(applied), total)
	for _, version := range applied {
		r.writePlain("  ✓ %03d\n", version)
	}
	return nil
}

// SetupRollback undoes the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	r.logger.Warn("rolled back latest migration", "path", r.config.Database.Path)
	return r.writePlain("✓ Rolled back the latest migration\n")
}
