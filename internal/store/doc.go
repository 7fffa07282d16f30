// Package store provides persistent storage for taskdesk over database/sql.
//
// # Backends
//
// SQLStore runs on SQLite (modernc.org/sqlite, the default) or Postgres
// (pgx through its database/sql adapter). Queries are written once with ?
// placeholders and rebound for Postgres. Schema changes live in
// migrations/<dialect>/ and are applied by goose on Open.
//
// # Data Models
//
//   - User: account with unique email and username, role and optional position
//   - Position: job grade referenced by users
//   - TaskStatus: seeded workflow columns (todo, in_progress, review, done)
//   - Task: work item with status, priority and user references
//   - ProfileChangeRequest: proposed name change awaiting review
//   - AuditEntry: record of an administrative action
//
// # Errors
//
// Lookups return ErrNotFound. Unique violations surface as ErrEmailExists,
// ErrUsernameExists or ErrPositionExists; foreign key violations as
// ErrInvalidReference. Reviewing a request that is not pending returns
// ErrNotPending, which wraps ErrNotFound.
//
// # Timestamps
//
// Timestamps are stored as fixed-width UTC text so they sort lexically on
// both backends.
package store
