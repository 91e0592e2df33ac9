// Package models defines domain entities and persistence interfaces for handoff.
//
// The package contains two categories of types:
//
// 1. Legacy records: plain structs read from the legacy app's database
//   - [LegacyAccount] : Signed-in account with access token and avatar
//   - [LegacySite] : Site connected to that account
//
// 2. Persistent Entities: destination database rows with full lifecycle management
//   - [Account] : Account copied into the destination store
//   - [Site] : Site copied into the destination store
//   - [MigrationJob] : One engine attempt with counts, status and error
//
// All persistent entities implement the [Model] interface providing ID, timestamps and validation,
// and embed [base] for soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
