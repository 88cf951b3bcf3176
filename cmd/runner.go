package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/repositories"
	"github.com/desertthunder/rdx/internal/services"
	"github.com/desertthunder/rdx/internal/shared"
	"github.com/desertthunder/rdx/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	client      *services.Client
	logger      *log.Logger
	output      io.Writer
	openBrowser func(string) error

	db      *sql.DB
	objects *repositories.ObjectRepository
	cursors *repositories.CursorRepository
	caching bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	// OpenBrowser defaults to [shared.OpenBrowser].
	OpenBrowser func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	r := &Runner{
		configPath:  opts.ConfigPath,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: opts.OpenBrowser,
	}
	r.configure(opts.Config)
	return r
}

// configure (re)builds the API client from config.
func (r *Runner) configure(config *shared.Config) {
	r.config = config
	r.client = services.NewClientFromConfig(config, r.logger)
}

// Load reads the configuration named by --config and applies the global flags.
//
// A missing file is not an error: commands run with the defaults and report
// missing credentials when they need them.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	r.caching = cmd.Bool("cache")

	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	r.configure(config)
	return ctx, nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.objects, r.cursors = nil, nil, nil
	return err
}

// SetLogger replaces the logger used by the runner and its client.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.client.SetLogger(logger)
}

// store opens the configured database on first use.
func (r *Runner) store() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}

	r.db = db
	r.objects = repositories.NewObjectRepository(db)
	r.cursors = repositories.NewCursorRepository(db)
	return nil
}

// cacher returns the object cache when --cache is set, or nil.
func (r *Runner) cacher() tasks.ObjectCacher {
	if !r.caching {
		return nil
	}
	if err := r.store(); err != nil {
		r.logger.Warn("object cache unavailable", "error", err)
		return nil
	}
	return repositories.NewObjectCacheAdapter(r.objects)
}

func (r *Runner) cacheObjects(objects ...models.Object) {
	cache := r.cacher()
	if cache == nil || len(objects) == 0 {
		return
	}
	if err := cache.CacheObjects(objects...); err != nil {
		r.logger.Warn("failed to cache objects", "error", err)
		return
	}
	r.logger.Debug("cached objects", "count", len(objects))
}

func (r *Runner) exporter() *tasks.Exporter {
	return tasks.NewExporter(r.client, r.cacher(), shared.WithLogger(r.logger, "task", "export"))
}

// requireAuth fails early for commands that act for the current user.
func (r *Runner) requireAuth(what string) error {
	if !r.client.Session().IsAuthenticated() {
		return fmt.Errorf("%w: %s requires authorization, run 'rdx auth login' first", shared.ErrNotAuthenticated, what)
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, suggestCommand, getCommand, resolveCommand,
		artistCommand, chartsCommand, releasesCommand, rotationCommand, playbackTokenCommand,
		userCommand, activityCommand, friendCommand, collectionCommand, playlistCommand,
		cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// writeObjects renders objects in the format named by --format, caching them when enabled.
func (r *Runner) writeObjects(cmd *cli.Command, objects []models.Object) error {
	r.cacheObjects(objects...)

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if format == formatter.FormatJSON {
		return r.writeJSON(objects, cmd.Bool("pretty"))
	}
	if len(objects) == 0 && format == formatter.FormatText {
		return r.writePlain("No results\n")
	}

	data, err := formatter.RenderObjects(objects, format, r.config.API.SiteURL)
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeResult prints the outcome of a boolean procedure.
func (r *Runner) writeResult(ok bool, success, failure string) error {
	if ok {
		return r.writePlain("✓ %s\n", success)
	}
	return r.writePlain("✗ %s\n", failure)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
