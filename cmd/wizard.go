package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/handoff/internal/shared"
	"github.com/desertthunder/handoff/internal/tasks"
	"github.com/desertthunder/handoff/internal/ui"
	"github.com/desertthunder/handoff/internal/wizard"
	"github.com/urfave/cli/v3"
)

// Wizard launches the interactive terminal wizard.
func (r *Runner) Wizard(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if level, err := shared.ParseLevel(r.config.Log.Level); err == nil {
		shared.SetLogLevel(fileLogger, level)
	}
	r.SetLogger(fileLogger)

	progress := make(chan tasks.ProgressUpdate, 32)
	sess, err := r.openSession(progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	model := ui.NewModel(ctx, sess.wizard, ui.Options{
		HelpURL:  r.config.Wizard.HelpURL,
		Progress: progress,
		Logger:   r.logger,
	})
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if !model.Completed() {
		r.logger.Info("wizard exited before completion", "step", model.Screen().Step())
	}
	return nil
}

// Migrate drives the wizard without a terminal UI: it advances through every screen on its own
// and retries failures up to --retries times.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 32)
	sess, err := r.openSession(progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.logProgress(ctx, progress)

	if err := sess.wizard.Start(); err != nil {
		return err
	}

	if err := r.drive(ctx, sess.wizard, int(cmd.Int("retries"))); err != nil {
		return err
	}

	job, err := sess.jobs.Latest()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"id":       job.ID(),
			"status":   job.Status(),
			"sites":    job.SitesTotal(),
			"migrated": job.SitesMigrated(),
			"failed":   job.SitesFailed(),
			"duration": job.Duration().String(),
		}, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Migration complete")
	r.writePlain("Job:      %s\n", job.ID())
	r.writePlain("Sites:    %d of %d migrated\n", job.SitesMigrated(), job.SitesTotal())
	r.writePlain("Duration: %s\n", job.Duration())
	return nil
}

// drive reacts to each published screen until the flow completes, fails for good, or ctx ends.
func (r *Runner) drive(ctx context.Context, w *wizard.Wizard, retries int) error {
	screens := w.Screens()
	events := w.Events()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case e, ok := <-events:
			if !ok {
				return shared.ErrClosed
			}
			switch e {
			case wizard.FlowComplete:
				r.logger.Info("flow complete")
				return nil
			case wizard.RequestHelp:
				r.logger.Info("help requested", "url", r.config.Wizard.HelpURL)
			}

		case s, ok := <-screens:
			if !ok {
				return shared.ErrClosed
			}
			r.logger.Debug("screen", "step", s.Step())

			switch s := s.(type) {
			case wizard.WelcomeScreen:
				if s.Busy {
					continue
				}
				r.logger.Info("welcome", "sites", len(s.Sites), "avatar", s.AvatarURL)
				for _, site := range s.Sites {
					r.logger.Debug("site", "id", site.ID, "name", site.Name, "url", site.URL)
				}
				w.AdvancePastWelcome()
			case wizard.NotificationsScreen:
				w.AdvancePastNotifications()
			case wizard.DoneScreen:
				if err := w.Complete(); err != nil && !errors.Is(err, shared.ErrInvalidState) {
					return err
				}
			case wizard.ErrorScreen:
				if s.Busy {
					continue
				}
				cause := failureCause(w)
				if retries <= 0 {
					return fmt.Errorf("migration failed (%s): %w", s.Kind, cause)
				}
				retries--
				r.logger.Warn("migration failed, retrying", "kind", s.Kind, "error", cause, "remaining", retries)
				if err := w.Retry(); err != nil && !errors.Is(err, shared.ErrInvalidState) {
					return err
				}
			}
		}
	}
}

// failureCause returns the error carried by the wizard's current Failed status.
func failureCause(w *wizard.Wizard) error {
	if failed, ok := w.Snapshot().Status.(wizard.Failed); ok && failed.Err != nil {
		return failed.Err
	}
	return shared.ErrServiceUnavailable
}

func (r *Runner) logProgress(ctx context.Context, progress <-chan tasks.ProgressUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-progress:
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}
}
