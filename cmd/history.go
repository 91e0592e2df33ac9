package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/handoff/internal/formatter"
	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/repositories"
	"github.com/desertthunder/handoff/internal/shared"
	"github.com/urfave/cli/v3"
)

// History prints or exports recorded migration attempts, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	status := cmd.String("status")
	if status != "" && !models.JobStatus(status).Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidFlag, status)
	}

	db, err := shared.OpenDestination(r.config)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	jobs, err := repositories.NewMigrationRepository(db).List(map[string]any{
		"status": status,
		"limit":  int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}
	r.logger.Debug("loaded migration history", "jobs", len(jobs))

	if out := cmd.String("output"); out != "" {
		path, err := formatter.WriteFile(jobs, format, out)
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %d %s to %s\n", len(jobs), shared.Plural(len(jobs), "job", "jobs"), path)
		return nil
	}

	data, err := formatter.Export(jobs, format)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}
