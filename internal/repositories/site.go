package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/shared"
)

var _ models.Repository[*models.Site] = (*SiteRepository)(nil)

const siteColumns = `id, sequence, remote_id, name, home_url, icon_url, created_at, updated_at, deleted_at`

// SiteRepository implements [models.Repository] for [models.Site] persistence.
type SiteRepository struct {
	db *sql.DB
}

// NewSiteRepository creates a new [SiteRepository] with the given database connection
func NewSiteRepository(db *sql.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// Create inserts a new site with generated ID and sequence
func (r *SiteRepository) Create(site *models.Site) error {
	return r.insert(site, "")
}

// insert writes site with a fresh ID and sequence. onConflict is appended to the INSERT statement.
func (r *SiteRepository) insert(site *models.Site, onConflict string) error {
	if err := site.Validate(); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "sites")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	site.SetID(shared.GenerateID())
	site.SetSequence(sequence)

	query := `INSERT INTO sites (` + siteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)` + onConflict

	_, err = r.db.Exec(query,
		site.ID(), sequence, site.RemoteID(),
		nullString(site.Name()), nullString(site.HomeURL()), nullString(site.IconURL()),
		site.CreatedAt(), site.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert site: %w", err)
	}

	return nil
}

// Get retrieves a site by ID, excluding soft-deleted sites
func (r *SiteRepository) Get(id string) (*models.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = ? AND deleted_at IS NULL`
	site, err := r.scan(r.db.QueryRow(query, id))
	if err != nil {
		return nil, notFound(err, "site", id)
	}
	return site, nil
}

// GetByRemoteID retrieves a site by its id on the remote service
func (r *SiteRepository) GetByRemoteID(remoteID int64) (*models.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE remote_id = ? AND deleted_at IS NULL`
	site, err := r.scan(r.db.QueryRow(query, remoteID))
	if err != nil {
		return nil, notFound(err, "site", fmt.Sprint(remoteID))
	}
	return site, nil
}

// Update modifies the display columns of a site
func (r *SiteRepository) Update(site *models.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	site.SetUpdatedAt(now)

	query := `
		UPDATE sites
		SET name = ?, home_url = ?, icon_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		nullString(site.Name()), nullString(site.HomeURL()), nullString(site.IconURL()), now, site.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}

	return expectOneRow(result, "site", site.ID())
}

// Upsert creates the site or refreshes the existing row with the same remote id.
//
// Concurrent calls for one remote id converge on a single row. The losing insert still consumes a sequence number.
func (r *SiteRepository) Upsert(legacy models.LegacySite) (*models.Site, error) {
	existing, err := r.GetByRemoteID(legacy.RemoteID)
	switch {
	case err == nil:
		existing.SetName(legacy.Name)
		existing.SetHomeURL(legacy.HomeURL)
		existing.SetIconURL(legacy.IconURL)
		err := r.Update(existing)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if err := r.insert(models.NewSite(0, legacy), siteUpsertClause); err != nil {
		return nil, err
	}
	return r.GetByRemoteID(legacy.RemoteID)
}

const siteUpsertClause = `
	ON CONFLICT(remote_id) WHERE deleted_at IS NULL DO UPDATE SET
		name = excluded.name,
		home_url = excluded.home_url,
		icon_url = excluded.icon_url,
		updated_at = excluded.updated_at`

// Delete soft-deletes a site by ID
func (r *SiteRepository) Delete(id string) error {
	return softDelete(r.db, "sites", id)
}

// List retrieves all sites in sequence order. Supported criteria: "remote_ids" ([]int64).
func (r *SiteRepository) List(criteria map[string]any) ([]*models.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE deleted_at IS NULL`
	args := []any{}

	if ids, ok := criteria["remote_ids"].([]int64); ok && len(ids) > 0 {
		query += " AND remote_id IN (?" + strings.Repeat(", ?", len(ids)-1) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	var sites []*models.Site
	for rows.Next() {
		site, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sites, nil
}

func (r *SiteRepository) scan(row rowScanner) (*models.Site, error) {
	var (
		id        string
		sequence  int
		remoteID  int64
		name      sql.NullString
		homeURL   sql.NullString
		iconURL   sql.NullString
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &remoteID, &name, &homeURL, &iconURL, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	site := models.NewSite(sequence, models.LegacySite{
		RemoteID: remoteID,
		Name:     name.String,
		HomeURL:  homeURL.String,
		IconURL:  iconURL.String,
	})
	site.SetID(id)
	site.SetCreatedAt(createdAt)
	site.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		site.SetDeletedAt(&deletedAt.Time)
	}

	return site, nil
}
