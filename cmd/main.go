package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the root command. Global flags are read by [Runner.Load] before any subcommand runs.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "rdx",
		Usage:   "Browse and manage an Rdio library from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at debug level",
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "Store fetched objects in the local database",
			},
		},
		Before:   r.Load,
		After:    r.Close,
		Commands: r.register(),
	}
}
