package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/services"
	"github.com/desertthunder/handoff/internal/shared"
	"github.com/desertthunder/handoff/internal/wizard"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Source reads what is being moved.
type Source interface {
	ReadAccount(ctx context.Context) (*models.LegacyAccount, error)
	ReadSites(ctx context.Context) ([]models.LegacySite, error)
}

// AccountStore persists the migrated account.
type AccountStore interface {
	Upsert(legacy models.LegacyAccount) (*models.Account, error)
}

// SiteStore persists migrated sites.
type SiteStore interface {
	Upsert(legacy models.LegacySite) (*models.Site, error)
}

// JobStore records migration attempts.
type JobStore interface {
	Create(job *models.MigrationJob) error
	Update(job *models.MigrationJob) error
}

// SiteRegistry receives the sites read from the source so references can be resolved for display.
type SiteRegistry interface {
	Add(sites ...models.LegacySite)
}

// ProfileFactory builds a profile client for an access token.
type ProfileFactory func(token string) (services.ProfileService, error)

// EngineOpts contains configuration for [LocalMigrationEngine].
type EngineOpts struct {
	SourcePath string        // Recorded on each job
	NumWorkers int           // Concurrent site copies (default: 4)
	RateLimit  float64       // Site copies per second (default: 10)
	StepDelay  time.Duration // Pause after reporting progress, for demos
	Profiles   ProfileFactory
	Registry   SiteRegistry
	Progress   chan<- ProgressUpdate
	Logger     *log.Logger
}

// LocalMigrationEngine implements [wizard.Engine] by copying from a legacy [Source] into local stores.
type LocalMigrationEngine struct {
	source   Source
	accounts AccountStore
	sites    SiteStore
	jobs     JobStore
	opts     EngineOpts
	logger   *log.Logger
	now      func() time.Time
}

// NewLocalMigrationEngine creates a new engine. Missing options fall back to defaults.
func NewLocalMigrationEngine(source Source, accounts AccountStore, sites SiteStore, jobs JobStore, opts EngineOpts) *LocalMigrationEngine {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 16 {
		opts.NumWorkers = 16
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10.0
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &LocalMigrationEngine{
		source:   source,
		accounts: accounts,
		sites:    sites,
		jobs:     jobs,
		opts:     opts,
		logger:   logger.With("component", "engine"),
		now:      time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *LocalMigrationEngine) sendProgress(update ProgressUpdate) {
	if e.opts.Progress == nil {
		return
	}
	select {
	case e.opts.Progress <- update:
	default:
	}
}

// TryMigration runs one migration attempt, writing its progress to w.
func (e *LocalMigrationEngine) TryMigration(ctx context.Context, w wizard.StatusWriter) error {
	if e.source == nil || e.accounts == nil || e.sites == nil {
		err := fmt.Errorf("%w: engine not initialized", shared.ErrServiceUnavailable)
		w.WriteStatus(wizard.Failed{Err: err})
		return err
	}

	job := models.NewMigrationJob(0, e.opts.SourcePath)
	job.Start(e.now())
	e.createJob(job)

	fail := func(err error) error {
		e.finishJob(job, err)
		e.logger.Error("migration failed", "job", job.ID(), "error", err)
		w.WriteStatus(wizard.Failed{Err: err})
		return err
	}

	account, err := e.source.ReadAccount(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to read legacy account: %w", err))
	}
	sites, err := e.source.ReadSites(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to read legacy sites: %w", err))
	}
	if len(sites) == 0 {
		return fail(shared.ErrNoSites)
	}
	job.SetSitesTotal(len(sites))

	if e.opts.Registry != nil {
		e.opts.Registry.Add(sites...)
	}
	refs := make([]wizard.SiteRef, 0, len(sites))
	for _, s := range sites {
		refs = append(refs, wizard.SiteRef(s.RemoteID))
	}
	e.sendProgress(readSourceUpdate(account, len(sites)))
	w.WriteStatus(wizard.InProgress{AvatarURL: account.AvatarURL, Sites: refs})

	if err := e.pause(ctx); err != nil {
		return fail(err)
	}

	if err := e.verify(ctx, account); err != nil {
		return fail(err)
	}

	migrated, err := e.accounts.Upsert(*account)
	if err != nil {
		return fail(fmt.Errorf("failed to copy account: %w", err))
	}
	e.sendProgress(copyAccountUpdate(migrated))

	if err := e.copySites(ctx, job, sites); err != nil {
		return fail(err)
	}

	if err := e.pause(ctx); err != nil {
		return fail(err)
	}

	e.finishJob(job, nil)
	e.logger.Info("migration succeeded", "job", job.ID(), "sites", job.SitesMigrated())
	w.WriteStatus(wizard.Succeeded{})
	return nil
}

// verify checks the legacy token against the new service and fills in missing profile fields.
func (e *LocalMigrationEngine) verify(ctx context.Context, account *models.LegacyAccount) error {
	if e.opts.Profiles == nil {
		return nil
	}
	client, err := e.opts.Profiles(account.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to create profile client: %w", err)
	}

	profile, err := client.Profile(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify account: %w", err)
	}
	if profile.ID != 0 && profile.ID != account.RemoteID {
		return fmt.Errorf("%w: token belongs to account %d, expected %d", shared.ErrNotAuthenticated, profile.ID, account.RemoteID)
	}
	if account.DisplayName == "" {
		account.DisplayName = profile.DisplayName
	}
	if account.AvatarURL == "" {
		account.AvatarURL = profile.AvatarURL
	}

	e.sendProgress(verifyAccountUpdate(account.Username))
	return nil
}

// copySites upserts every site through a bounded pool. Per-site failures are collected instead of stopping the pool.
func (e *LocalMigrationEngine) copySites(ctx context.Context, job *models.MigrationJob, sites []models.LegacySite) error {
	limiter := rate.NewLimiter(rate.Limit(e.opts.RateLimit), 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.NumWorkers)

	var (
		mu       sync.Mutex
		done     int
		migrated int
		failures []error
	)

	for _, site := range sites {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			_, err := e.sites.Upsert(site)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				failures = append(failures, fmt.Errorf("site %d: %w", site.RemoteID, err))
				e.sendProgress(siteFailedUpdate(done, len(sites), site, err))
				return nil
			}
			migrated++
			e.sendProgress(siteCopiedUpdate(done, len(sites), site))
			return nil
		})
	}

	err := g.Wait()

	job.SetSitesMigrated(migrated)
	job.SetSitesFailed(len(failures))

	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return fmt.Errorf("failed to copy %d of %d sites: %w", len(failures), len(sites), errors.Join(failures...))
	}
	return nil
}

func (e *LocalMigrationEngine) pause(ctx context.Context) error {
	if e.opts.StepDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.opts.StepDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// createJob and finishJob log bookkeeping failures instead of failing the migration.
func (e *LocalMigrationEngine) createJob(job *models.MigrationJob) {
	if e.jobs == nil {
		return
	}
	if err := e.jobs.Create(job); err != nil {
		e.logger.Warn("failed to record migration job", "error", err)
	}
}

func (e *LocalMigrationEngine) finishJob(job *models.MigrationJob, err error) {
	job.Finish(e.now(), err)
	if e.jobs == nil || job.ID() == "" {
		return
	}
	if err := e.jobs.Update(job); err != nil {
		e.logger.Warn("failed to update migration job", "job", job.ID(), "error", err)
		return
	}
	e.sendProgress(jobRecordedUpdate(job))
}
