// ABOUTME: SQLStore opens the configured SQL backend and runs goose migrations
// ABOUTME: Shared plumbing: placeholder rebinding, transactions, timestamps and constraint mapping

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

// Dialect identifies the SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Options selects and tunes the backend.
type Options struct {
	Driver       string // "sqlite" or "postgres"
	Path         string // sqlite database file
	DSN          string // postgres connection string
	MaxOpenConns int
}

// SQLStore implements persistence over database/sql for SQLite and Postgres.
// All queries are written with ? placeholders and rebound for Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	now     func() time.Time
}

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the configured backend, applies pending migrations and
// returns a ready store.
func Open(ctx context.Context, opts Options) (*SQLStore, error) {
	logger := slog.Default().With("component", "store")

	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)
	switch Dialect(opts.Driver) {
	case DialectSQLite, "":
		dialect = DialectSQLite
		db, err = openSQLite(opts.Path)
	case DialectPostgres:
		dialect = DialectPostgres
		db, err = openPostgres(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLStore{
		db:      db,
		dialect: dialect,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}

	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("store initialized", "driver", dialect)
	return s, nil
}

// NewSQLiteStore opens a migrated SQLite store at the given path.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLStore, error) {
	return Open(context.Background(), Options{Driver: string(DialectSQLite), Path: path})
}

// Migrate applies all pending migrations for the store's dialect.
func (s *SQLStore) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrationFS, "migrations/"+string(s.dialect))
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	gooseDialect := goose.DialectSQLite3
	if s.dialect == DialectPostgres {
		gooseDialect = goose.DialectPostgres
	}

	provider, err := goose.NewProvider(gooseDialect, s.db, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Info("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// SchemaVersion returns the latest applied migration version.
func (s *SQLStore) SchemaVersion(ctx context.Context) (int64, error) {
	fsys, err := fs.Sub(migrationFS, "migrations/"+string(s.dialect))
	if err != nil {
		return 0, err
	}
	gooseDialect := goose.DialectSQLite3
	if s.dialect == DialectPostgres {
		gooseDialect = goose.DialectPostgres
	}
	provider, err := goose.NewProvider(gooseDialect, s.db, fsys)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

// Dialect reports the backend in use.
func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

// Ping verifies the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	s.logger.Info("closing store")
	return s.db.Close()
}

// withTx runs fn inside a transaction, committing on success and rolling back
// on error or panic. Panics are rethrown.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx dbtx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("committing transaction: %w", cerr)
		}
	}()

	return fn(tx)
}

// rebind converts ? placeholders to $N for Postgres. Question marks inside
// single-quoted literals are left alone.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// setClause accumulates "col = ?" fragments for partial updates.
type setClause struct {
	cols []string
	args []any
}

func (c *setClause) add(col string, val any) {
	c.cols = append(c.cols, col+" = ?")
	c.args = append(c.args, val)
}

func (c *setClause) String() string {
	return strings.Join(c.cols, ", ")
}

// whereClause accumulates AND-ed conditions.
type whereClause struct {
	conds []string
	args  []any
}

func (w *whereClause) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// uniqueViolation reports whether err is a unique constraint failure and,
// when it is, the offending constraint or column name.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if name, ok := pgUniqueViolation(err); ok {
		return name, true
	}
	return sqliteUniqueViolation(err)
}

// foreignKeyViolation reports whether err is a foreign key failure.
func foreignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return pgForeignKeyViolation(err) || sqliteForeignKeyViolation(err)
}

// userConstraintError maps constraint failures on the users table.
func userConstraintError(err error) error {
	if name, ok := uniqueViolation(err); ok {
		switch {
		case strings.Contains(name, "email"):
			return ErrEmailExists
		case strings.Contains(name, "username"):
			return ErrUsernameExists
		}
	}
	if foreignKeyViolation(err) {
		return ErrInvalidReference
	}
	return nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
