package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/shared"
)

var _ models.Repository[*models.Account] = (*AccountRepository)(nil)

const accountColumns = `id, sequence, remote_id, username, display_name, avatar_url, access_token, created_at, updated_at, deleted_at`

// AccountRepository implements [models.Repository] for [models.Account] persistence.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new [AccountRepository] with the given database connection
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account with generated ID and sequence
func (r *AccountRepository) Create(account *models.Account) error {
	return r.insert(account, "")
}

// insert writes account with a fresh ID and sequence. onConflict is appended to the INSERT statement.
func (r *AccountRepository) insert(account *models.Account, onConflict string) error {
	if err := account.Validate(); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "accounts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	account.SetID(shared.GenerateID())
	account.SetSequence(sequence)

	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)` + onConflict

	_, err = r.db.Exec(query,
		account.ID(), sequence, account.RemoteID(), account.Username(),
		nullString(account.DisplayName()), nullString(account.AvatarURL()), account.AccessToken(),
		account.CreatedAt(), account.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// Get retrieves an account by ID, excluding soft-deleted accounts
func (r *AccountRepository) Get(id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ? AND deleted_at IS NULL`
	account, err := r.scan(r.db.QueryRow(query, id))
	if err != nil {
		return nil, notFound(err, "account", id)
	}
	return account, nil
}

// GetByRemoteID retrieves an account by its id on the remote service
func (r *AccountRepository) GetByRemoteID(remoteID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE remote_id = ? AND deleted_at IS NULL`
	account, err := r.scan(r.db.QueryRow(query, remoteID))
	if err != nil {
		return nil, notFound(err, "account", fmt.Sprint(remoteID))
	}
	return account, nil
}

// Update modifies the mutable account columns
func (r *AccountRepository) Update(account *models.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	account.SetUpdatedAt(now)

	query := `
		UPDATE accounts
		SET username = ?, display_name = ?, avatar_url = ?, access_token = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		account.Username(), nullString(account.DisplayName()), nullString(account.AvatarURL()),
		account.AccessToken(), now, account.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	return expectOneRow(result, "account", account.ID())
}

// Upsert creates the account or refreshes the existing row with the same remote id.
//
// Concurrent calls for one remote id converge on a single row.
func (r *AccountRepository) Upsert(legacy models.LegacyAccount) (*models.Account, error) {
	existing, err := r.GetByRemoteID(legacy.RemoteID)
	switch {
	case err == nil:
		existing.SetDisplayName(legacy.DisplayName)
		existing.SetAvatarURL(legacy.AvatarURL)
		existing.SetAccessToken(legacy.AccessToken)
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

	if err := r.insert(models.NewAccount(0, legacy), accountUpsertClause); err != nil {
		return nil, err
	}
	return r.GetByRemoteID(legacy.RemoteID)
}

const accountUpsertClause = `
	ON CONFLICT(remote_id) WHERE deleted_at IS NULL DO UPDATE SET
		display_name = excluded.display_name,
		avatar_url = excluded.avatar_url,
		access_token = excluded.access_token,
		updated_at = excluded.updated_at`

// Delete soft-deletes an account by ID
func (r *AccountRepository) Delete(id string) error {
	return softDelete(r.db, "accounts", id)
}

// List retrieves all accounts, optionally filtered by "username"
func (r *AccountRepository) List(criteria map[string]any) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE deleted_at IS NULL`
	args := []any{}

	if username, ok := criteria["username"].(string); ok && username != "" {
		query += " AND username = ?"
		args = append(args, username)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) scan(row rowScanner) (*models.Account, error) {
	var (
		id          string
		sequence    int
		legacy      models.LegacyAccount
		displayName sql.NullString
		avatarURL   sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &legacy.RemoteID, &legacy.Username, &displayName, &avatarURL,
		&legacy.AccessToken, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	legacy.DisplayName = displayName.String
	legacy.AvatarURL = avatarURL.String

	account := models.NewAccount(sequence, legacy)
	account.SetID(id)
	account.SetCreatedAt(createdAt)
	account.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		account.SetDeletedAt(&deletedAt.Time)
	}

	return account, nil
}
