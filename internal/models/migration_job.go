package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/handoff/internal/shared"
)

// JobStatus is the lifecycle state of a [MigrationJob].
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobPending, JobRunning, JobSucceeded, JobFailed:
		return true
	}
	return false
}

// MigrationJob records a single engine attempt.
type MigrationJob struct {
	base
	sourcePath    string
	status        JobStatus
	sitesTotal    int
	sitesMigrated int
	sitesFailed   int
	errorMessage  string
	startedAt     *time.Time
	completedAt   *time.Time
}

// NewMigrationJob creates a pending job for the given legacy database path.
func NewMigrationJob(sequence int, sourcePath string) *MigrationJob {
	return &MigrationJob{
		base:       newBase(sequence),
		sourcePath: sourcePath,
		status:     JobPending,
	}
}

func (m *MigrationJob) SourcePath() string      { return m.sourcePath }
func (m *MigrationJob) Status() JobStatus       { return m.status }
func (m *MigrationJob) SitesTotal() int         { return m.sitesTotal }
func (m *MigrationJob) SitesMigrated() int      { return m.sitesMigrated }
func (m *MigrationJob) SitesFailed() int        { return m.sitesFailed }
func (m *MigrationJob) ErrorMessage() string    { return m.errorMessage }
func (m *MigrationJob) StartedAt() *time.Time   { return m.startedAt }
func (m *MigrationJob) CompletedAt() *time.Time { return m.completedAt }

func (m *MigrationJob) SetStatus(s JobStatus)       { m.status = s }
func (m *MigrationJob) SetSitesTotal(n int)         { m.sitesTotal = n }
func (m *MigrationJob) SetSitesMigrated(n int)      { m.sitesMigrated = n }
func (m *MigrationJob) SetSitesFailed(n int)        { m.sitesFailed = n }
func (m *MigrationJob) SetErrorMessage(msg string)  { m.errorMessage = msg }
func (m *MigrationJob) SetStartedAt(t *time.Time)   { m.startedAt = t }
func (m *MigrationJob) SetCompletedAt(t *time.Time) { m.completedAt = t }

// Start marks the job running.
func (m *MigrationJob) Start(now time.Time) {
	m.status = JobRunning
	m.startedAt = &now
}

// Finish marks the job succeeded, or failed when err is non-nil.
func (m *MigrationJob) Finish(now time.Time, err error) {
	m.completedAt = &now
	if err != nil {
		m.status = JobFailed
		m.errorMessage = err.Error()
		return
	}
	m.status = JobSucceeded
	m.errorMessage = ""
}

// Duration is the time between start and completion, or zero while unfinished.
func (m *MigrationJob) Duration() time.Duration {
	if m.startedAt == nil || m.completedAt == nil {
		return 0
	}
	return m.completedAt.Sub(*m.startedAt)
}

// Validate checks required fields and counter consistency.
func (m *MigrationJob) Validate() error {
	switch {
	case m.sourcePath == "":
		return fmt.Errorf("%w: migration source path is required", shared.ErrValidation)
	case !m.status.Valid():
		return fmt.Errorf("%w: unknown migration status %q", shared.ErrValidation, m.status)
	case m.sitesMigrated+m.sitesFailed > m.sitesTotal:
		return fmt.Errorf("%w: migrated plus failed exceeds total", shared.ErrValidation)
	}
	return nil
}
