package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/shared"
	"github.com/desertthunder/rdx/internal/ui"
)

// TUI launches the interactive catalog browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if !r.config.Credentials.Rdio.HasConsumer() {
		return fmt.Errorf("%w: consumer_key and consumer_secret must be set in %s", shared.ErrMissingCredentials, r.configFile())
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, f, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.ModelOpts{
		Catalog: r.client,
		Logger:  fileLogger,
		Query:   strings.Join(cmd.Args().Slice(), " "),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
