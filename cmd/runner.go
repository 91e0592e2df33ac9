package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/repositories"
	"github.com/desertthunder/handoff/internal/services"
	"github.com/desertthunder/handoff/internal/shared"
	"github.com/desertthunder/handoff/internal/tasks"
	"github.com/desertthunder/handoff/internal/wizard"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger, e.g. to keep log lines out of the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, wizardCommand, migrateCommand, serveCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the file named by --config when it exists and applies its log level.
func (r *Runner) configure(cmd *cli.Command) error {
	path := cmd.String("config")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return err
			}
			r.config = config
		} else if cmd.IsSet("config") {
			return fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
	}

	level, err := shared.ParseLevel(r.config.Log.Level)
	if err != nil {
		return err
	}
	shared.SetLogLevel(r.logger, level)
	return nil
}

// session is one wizard wired to the destination database and the legacy source.
type session struct {
	wizard *wizard.Wizard
	jobs   *repositories.MigrationRepository
	dest   *sql.DB
	source *legacySource
}

// Close stops the wizard, then releases both databases.
func (s *session) Close() error {
	s.wizard.Close()
	return errors.Join(s.source.Close(), s.dest.Close())
}

// openSession builds the engine and wizard from the runner's config.
//
// A nil progress channel disables progress updates.
func (r *Runner) openSession(progress chan<- tasks.ProgressUpdate) (*session, error) {
	cfg := r.config

	dest, err := shared.OpenDestination(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	source := &legacySource{path: cfg.Source.Path}
	resolver := services.NewSiteResolver(cfg.Wizard.IconSize)
	jobs := repositories.NewMigrationRepository(dest)

	engine := tasks.NewLocalMigrationEngine(
		source,
		repositories.NewAccountRepository(dest),
		repositories.NewSiteRepository(dest),
		jobs,
		tasks.EngineOpts{
			SourcePath: cfg.Source.Path,
			NumWorkers: cfg.Engine.Workers,
			RateLimit:  cfg.Engine.RateLimit,
			StepDelay:  cfg.Engine.StepDelay(),
			Profiles:   r.profiles(),
			Registry:   resolver,
			Progress:   progress,
			Logger:     r.logger,
		},
	)

	opts := wizard.Options{
		Engine:   engine,
		Resolver: resolver,
		Avatar: func(url string) string {
			return services.ResizeAvatar(url, cfg.Wizard.AvatarSize)
		},
		EventBuffer: cfg.Wizard.EventBuffer,
		Logger:      r.logger,
	}
	if cfg.Wizard.ClassifyFailures {
		opts.Classify = wizard.Classify
	}

	return &session{
		wizard: wizard.New(opts),
		jobs:   jobs,
		dest:   dest,
		source: source,
	}, nil
}

// profiles returns a factory for profile clients, or nil when no profile endpoint is configured.
func (r *Runner) profiles() tasks.ProfileFactory {
	account := r.config.Account
	if account.ProfileURL == "" {
		return nil
	}
	base := r.httpClient
	if base == http.DefaultClient {
		// no timeout on the default client
		base = nil
	}
	return func(token string) (services.ProfileService, error) {
		return services.NewProfileClient(account.ProfileURL, token, account.Timeout(), base)
	}
}

// legacySource opens the legacy store on first read, so a missing file becomes a retryable failure.
type legacySource struct {
	path  string
	mu    sync.Mutex
	store *repositories.LegacyStore
}

func (s *legacySource) open() (*repositories.LegacyStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		return s.store, nil
	}
	store, err := repositories.OpenLegacyStore(s.path)
	if err != nil {
		return nil, err
	}
	s.store = store
	return store, nil
}

func (s *legacySource) ReadAccount(ctx context.Context) (*models.LegacyAccount, error) {
	store, err := s.open()
	if err != nil {
		return nil, err
	}
	return store.ReadAccount(ctx)
}

func (s *legacySource) ReadSites(ctx context.Context) ([]models.LegacySite, error) {
	store, err := s.open()
	if err != nil {
		return nil, err
	}
	return store.ReadSites(ctx)
}

func (s *legacySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
