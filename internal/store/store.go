// Package store opens the relational database and provides the atomic unit
// of work used by posting, reversal and chart seeding.
//
// Queries are written with '?' placeholders and rebound for the active
// dialect, so the same SQL runs on SQLite and Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DefaultSQLiteDSN is used when no DSN is configured.
const DefaultSQLiteDSN = "file:finreport.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Querier runs statements. Both *DB and *Tx satisfy it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is a connection pool bound to one dialect.
type DB struct {
	sql     *sql.DB
	dialect Dialect
	dsn     string
	logger  *zap.Logger
}

var _ Querier = (*DB)(nil)

// Option configures Open.
type Option func(*DB)

// WithLogger sets the logger used for rollback and migration messages.
func WithLogger(logger *zap.Logger) Option {
	return func(db *DB) { db.logger = logger }
}

// Open connects to the database named by dialect and dsn and verifies the
// connection. SQLite pools are capped at one connection: writers serialize
// and in-memory databases stay shared.
func Open(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*DB, error) {
	var driver string
	switch dialect {
	case SQLite:
		driver = "sqlite"
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
	case Postgres:
		driver = "pgx"
		if dsn == "" {
			return nil, errors.New("postgres requires a dsn")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dialect)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{sql: sqlDB, dialect: dialect, dsn: dsn, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(db)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", dialect, err)
	}
	return db, nil
}

// Dialect returns the backend in use.
func (db *DB) Dialect() Dialect { return db.dialect }

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error { return db.sql.PingContext(ctx) }

// Close releases the pool.
func (db *DB) Close() error { return db.sql.Close() }

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.sql.ExecContext(ctx, rebind(db.dialect, query), args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.sql.QueryContext(ctx, rebind(db.dialect, query), args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.sql.QueryRowContext(ctx, rebind(db.dialect, query), args...)
}

// Tx is an open atomic unit of work. Functions that take a *Tx can only be
// called from inside WithTx.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

var _ Querier = (*Tx)(nil)

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, rebind(t.dialect, query), args...)
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, rebind(t.dialect, query), args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, rebind(t.dialect, query), args...)
}

// WithTx runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back when fn returns an error or panics; nothing fn
// wrote is visible to other connections unless the commit succeeds.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{tx: sqlTx, dialect: db.dialect}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.logger.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// rebind rewrites '?' placeholders as $1, $2, ... for Postgres.
func rebind(dialect Dialect, query string) string {
	if dialect != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
