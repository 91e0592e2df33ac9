// Package tasks moves the legacy account and its sites into the destination store.
//
// # Engine
//
// [LocalMigrationEngine] implements [wizard.Engine]. One call to TryMigration:
//
//  1. opens a [models.MigrationJob] record
//  2. reads the legacy account and sites
//  3. writes [wizard.InProgress] so the Welcome screen can show what is moving
//  4. verifies the account token against the profile endpoint, when one is configured
//  5. copies the account, then the sites through a bounded worker pool throttled by a rate limiter
//  6. closes the job record and writes [wizard.Succeeded] or [wizard.Failed]
//
// Every failure is written to the status feed as [wizard.Failed] and also returned.
//
// # Progress Reporting
//
// Step-level progress goes out on an optional [ProgressUpdate] channel.
// Updates use select with default to prevent blocking.
package tasks
