// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand prepares the destination database or a sample legacy source
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize databases",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create config.toml if missing and run database migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the latest migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "fixture",
				Usage: "Write a sample legacy database to migrate from",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Fixture path (default: source.path)",
					},
					&cli.IntFlag{
						Name:  "sites",
						Usage: "Number of sample sites (0 for all)",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing fixture",
					},
				},
				Action: r.SetupFixture,
			},
		},
	}
}

// wizardCommand runs the interactive wizard
func wizardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "wizard",
		Aliases: []string{"tui"},
		Usage:   "Walk through the migration in the terminal",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.Wizard,
	}
}

// migrateCommand runs the wizard headless
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run the migration without prompts",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "retries",
				Usage: "Retry a failed migration this many times",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the job summary as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Migrate,
	}
}

// serveCommand exposes the wizard over HTTP
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the wizard over HTTP",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.DurationFlag{
				Name:  "event-wait",
				Usage: "Longest time GET /events waits for an event",
				Value: 30 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "no-start",
				Usage: "Wait for POST /restart before running the engine",
			},
		},
		Action: r.Serve,
	}
}

// historyCommand lists recorded migration attempts
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded migration attempts",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, markdown, json",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show jobs with this status",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of jobs",
				Value: 20,
			},
		},
		Action: r.History,
	}
}
