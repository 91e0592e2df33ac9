package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/repositories"
	"github.com/desertthunder/handoff/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file when missing, then initializes the destination database.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	if err := r.configure(cmd); err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		r.config = shared.DefaultConfig()
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	} else {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	applied, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v (%d migrations applied)", r.config.Database.Path, len(applied))
	return nil
}

// SetupFixture writes a legacy database at source.path so the wizard has something to migrate.
func (r *Runner) SetupFixture(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	path := r.config.Source.Path
	if out := cmd.String("output"); out != "" {
		path = out
	}

	if _, err := os.Stat(path); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: %s exists, pass --force to overwrite", shared.ErrInvalidArgument, path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing fixture: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create fixture directory: %w", err)
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to create fixture database: %w", err)
	}
	defer db.Close()

	account, sites := fixtureData(int(cmd.Int("sites")))
	if err := repositories.SeedLegacy(ctx, db, account, sites); err != nil {
		return err
	}

	r.logger.Info("fixture written", "path", path, "sites", len(sites))
	r.writePlain("✓ Legacy fixture written to %s\n", path)
	r.writePlain("  Account: %s\n", account.Username)
	r.writePlain("  Sites: %d\n", len(sites))
	r.writePlainln("Next: run 'handoff wizard' or 'handoff migrate'")
	return nil
}

var fixtureSites = []models.LegacySite{
	{RemoteID: 101, Name: "Field Notes", HomeURL: "https://fieldnotes.example.com/", IconURL: "https://cdn.example.com/icons/101.png"},
	{RemoteID: 102, Name: "", HomeURL: "https://example.org/garden", IconURL: "https://cdn.example.com/icons/102.png?v=2"},
	{RemoteID: 103, Name: "Recipe Box", HomeURL: "https://recipes.example.net", IconURL: ""},
	{RemoteID: 104, Name: "Trail Log", HomeURL: "https://trail.example.com/", IconURL: "https://cdn.example.com/icons/104.png"},
}

// fixtureData returns a sample account and the first n sample sites. A non-positive n selects all of them.
func fixtureData(n int) (models.LegacyAccount, []models.LegacySite) {
	account := models.LegacyAccount{
		RemoteID:    4242,
		Username:    "wanderer",
		DisplayName: "Wanderer",
		AvatarURL:   "https://secure.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200",
		AccessToken: "fixture-token",
	}

	if n <= 0 || n > len(fixtureSites) {
		n = len(fixtureSites)
	}
	sites := make([]models.LegacySite, n)
	copy(sites, fixtureSites[:n])
	return account, sites
}
