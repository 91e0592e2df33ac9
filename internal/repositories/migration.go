package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/shared"
)

var _ models.Repository[*models.MigrationJob] = (*MigrationRepository)(nil)

const migrationColumns = `
	id, sequence, source_path, status, sites_total, sites_migrated, sites_failed,
	error_message, started_at, completed_at, created_at, updated_at, deleted_at
`

// MigrationRepository implements models.Repository[*models.MigrationJob] for migration tracking.
//
// Handles migration job CRUD operations with soft delete support and status-based queries.
type MigrationRepository struct {
	db *sql.DB
}

// NewMigrationRepository creates a new MigrationRepository with the given database connection
func NewMigrationRepository(db *sql.DB) *MigrationRepository {
	return &MigrationRepository{db: db}
}

// Create inserts a new migration job into the database with generated ID and sequence
func (r *MigrationRepository) Create(job *models.MigrationJob) error {
	if err := job.Validate(); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "migrations")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	job.SetID(shared.GenerateID())
	job.SetSequence(sequence)

	query := `INSERT INTO migrations (` + migrationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`

	_, err = r.db.Exec(query,
		job.ID(),
		sequence,
		job.SourcePath(),
		string(job.Status()),
		job.SitesTotal(),
		job.SitesMigrated(),
		job.SitesFailed(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert migration: %w", err)
	}

	return nil
}

// Get retrieves a migration job by ID, excluding soft-deleted migrations
func (r *MigrationRepository) Get(id string) (*models.MigrationJob, error) {
	query := `SELECT ` + migrationColumns + ` FROM migrations WHERE id = ? AND deleted_at IS NULL`
	job, err := r.scan(r.db.QueryRow(query, id))
	if err != nil {
		return nil, notFound(err, "migration", id)
	}
	return job, nil
}

// Latest returns the most recent migration job.
func (r *MigrationRepository) Latest() (*models.MigrationJob, error) {
	query := `SELECT ` + migrationColumns + ` FROM migrations WHERE deleted_at IS NULL ORDER BY sequence DESC LIMIT 1`
	job, err := r.scan(r.db.QueryRow(query))
	if err != nil {
		return nil, notFound(err, "migration", "latest")
	}
	return job, nil
}

// Update modifies an existing migration job in the database
func (r *MigrationRepository) Update(job *models.MigrationJob) error {
	if err := job.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	job.SetUpdatedAt(now)

	query := `
		UPDATE migrations
		SET status = ?, sites_total = ?, sites_migrated = ?, sites_failed = ?,
			error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(job.Status()),
		job.SitesTotal(),
		job.SitesMigrated(),
		job.SitesFailed(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update migration: %w", err)
	}

	return expectOneRow(result, "migration", job.ID())
}

// Delete soft-deletes a migration job by ID
func (r *MigrationRepository) Delete(id string) error {
	return softDelete(r.db, "migrations", id)
}

// List retrieves migration jobs newest first. Supported criteria: "status" (string or [models.JobStatus]), "limit" (int).
func (r *MigrationRepository) List(criteria map[string]any) ([]*models.MigrationJob, error) {
	query := `SELECT ` + migrationColumns + ` FROM migrations WHERE deleted_at IS NULL`
	args := []any{}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case models.JobStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var jobs []*models.MigrationJob
	for rows.Next() {
		job, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

// scan reads one row into a [models.MigrationJob]
func (r *MigrationRepository) scan(row rowScanner) (*models.MigrationJob, error) {
	var (
		id            string
		sequence      int
		sourcePath    string
		status        string
		sitesTotal    int
		sitesMigrated int
		sitesFailed   int
		errorMessage  sql.NullString
		startedAt     sql.NullTime
		completedAt   sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &sourcePath, &status, &sitesTotal, &sitesMigrated, &sitesFailed,
		&errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	job := models.NewMigrationJob(sequence, sourcePath)
	job.SetID(id)
	job.SetStatus(models.JobStatus(status))
	job.SetSitesTotal(sitesTotal)
	job.SetSitesMigrated(sitesMigrated)
	job.SetSitesFailed(sitesFailed)
	job.SetErrorMessage(errorMessage.String)
	job.SetCreatedAt(createdAt)
	job.SetUpdatedAt(updatedAt)
	if startedAt.Valid {
		job.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		job.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		job.SetDeletedAt(&deletedAt.Time)
	}

	return job, nil
}
