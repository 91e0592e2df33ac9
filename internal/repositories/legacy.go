package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/shared"
)

const legacySchema = `
	CREATE TABLE IF NOT EXISTS account (
		remote_id INTEGER PRIMARY KEY,
		username TEXT NOT NULL,
		display_name TEXT,
		avatar_url TEXT,
		access_token TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sites (
		remote_id INTEGER PRIMARY KEY,
		position INTEGER NOT NULL DEFAULT 0,
		name TEXT,
		home_url TEXT,
		icon_url TEXT
	)
`

// LegacyStore reads the legacy app's database.
type LegacyStore struct {
	db   *sql.DB
	path string
}

// OpenLegacyStore opens the legacy database read-only. A missing file is reported as [shared.ErrSourceMissing]
// instead of letting sqlite create an empty database.
func OpenLegacyStore(path string) (*LegacyStore, error) {
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrSourceMissing, path, err)
		}
		path = "file:" + path + "?mode=ro"
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceMissing, err)
	}

	return &LegacyStore{db: db, path: path}, nil
}

// NewLegacyStore wraps an already open legacy database.
func NewLegacyStore(db *sql.DB) *LegacyStore {
	return &LegacyStore{db: db}
}

// Close closes the underlying database.
func (s *LegacyStore) Close() error {
	return s.db.Close()
}

// ReadAccount returns the signed-in account. An empty table yields [shared.ErrNoAccount].
func (s *LegacyStore) ReadAccount(ctx context.Context) (*models.LegacyAccount, error) {
	query := `SELECT remote_id, username, display_name, avatar_url, access_token FROM account LIMIT 1`

	var (
		account     models.LegacyAccount
		displayName sql.NullString
		avatarURL   sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query).Scan(
		&account.RemoteID, &account.Username, &displayName, &avatarURL, &account.AccessToken,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNoAccount
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read account: %v", shared.ErrSourceMissing, err)
	}

	account.DisplayName = displayName.String
	account.AvatarURL = avatarURL.String
	return &account, nil
}

// ReadSites returns the legacy sites in display order.
func (s *LegacyStore) ReadSites(ctx context.Context) ([]models.LegacySite, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT remote_id, name, home_url, icon_url FROM sites ORDER BY position, remote_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sites: %v", shared.ErrSourceMissing, err)
	}
	defer rows.Close()

	var sites []models.LegacySite
	for rows.Next() {
		var (
			site    models.LegacySite
			name    sql.NullString
			homeURL sql.NullString
			iconURL sql.NullString
		)
		if err := rows.Scan(&site.RemoteID, &name, &homeURL, &iconURL); err != nil {
			return nil, fmt.Errorf("failed to scan legacy site: %w", err)
		}
		site.Name, site.HomeURL, site.IconURL = name.String, homeURL.String, iconURL.String
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// SeedLegacy creates the legacy schema in db and fills it with account and sites.
//
// Used by "handoff setup fixture" and by tests.
func SeedLegacy(ctx context.Context, db *sql.DB, account models.LegacyAccount, sites []models.LegacySite) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, legacySchema); err != nil {
		return fmt.Errorf("failed to create legacy schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO account (remote_id, username, display_name, avatar_url, access_token) VALUES (?, ?, ?, ?, ?)`,
		account.RemoteID, account.Username, nullString(account.DisplayName), nullString(account.AvatarURL), account.AccessToken,
	); err != nil {
		return fmt.Errorf("failed to insert legacy account: %w", err)
	}

	for i, site := range sites {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO sites (remote_id, position, name, home_url, icon_url) VALUES (?, ?, ?, ?, ?)`,
			site.RemoteID, i, nullString(site.Name), nullString(site.HomeURL), nullString(site.IconURL),
		); err != nil {
			return fmt.Errorf("failed to insert legacy site %d: %w", site.RemoteID, err)
		}
	}

	return tx.Commit()
}
