package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/handoff/internal/server"
	"github.com/desertthunder/handoff/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// Serve exposes the wizard over HTTP until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}
	if cmd.IsSet("port") {
		r.config.Server.Port = int(cmd.Int("port"))
	}

	progress := make(chan tasks.ProgressUpdate, 32)
	sess, err := r.openSession(progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := server.NewWizardRouter(sess.wizard, r.logger, cmd.Duration("event-wait"))
	srv := server.NewServer(r.config.Server.Addr(), router, r.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		r.logProgress(ctx, progress)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if !cmd.Bool("no-start") {
		if err := sess.wizard.Start(); err != nil {
			stop()
			return errors.Join(err, g.Wait())
		}
	}

	r.writePlain("Wizard listening on http://%s\n", srv.Addr())
	return g.Wait()
}
