// Package repositories implements SQLite persistence for handoff.
//
// Destination repositories handle CRUD with atomic sequence generation and soft deletes via deleted_at.
// Deleted records are excluded from queries by default.
//
// Key Implementations:
//   - [AccountRepository] : Migrated account, looked up by remote id
//   - [SiteRepository] : Migrated sites, upserted by remote id so re-runs stay idempotent
//   - [MigrationRepository] : Engine attempt history with status-based queries
//   - [LegacyStore] : Read-only view over the legacy app's database (plus a fixture seeder)
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
