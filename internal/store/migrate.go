package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate brings the schema up to the latest version. It is idempotent.
func (db *DB) Migrate() error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	var (
		drv   database.Driver
		owned *sql.DB
	)
	switch db.dialect {
	case SQLite:
		// The migrate driver closes the pool it wraps, so the shared SQLite
		// pool is never handed to m.Close below.
		drv, err = sqlite.WithInstance(db.sql, &sqlite.Config{})
	case Postgres:
		owned, err = sql.Open("pgx", db.dsn)
		if err != nil {
			return fmt.Errorf("opening migration connection: %w", err)
		}
		drv, err = postgres.WithInstance(owned, &postgres.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", db.dialect)
	}
	if err != nil {
		if owned != nil {
			_ = owned.Close()
		}
		_ = src.Close()
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(db.dialect), drv)
	if err != nil {
		if owned != nil {
			_ = owned.Close()
		}
		return fmt.Errorf("creating migration instance: %w", err)
	}
	if owned != nil {
		defer m.Close()
	} else {
		defer src.Close()
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			db.logger.Debug("schema up to date")
			return nil
		}
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return fmt.Errorf("migration failed: dirty database version %d", dirty.Version)
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	version, _, _ := m.Version()
	db.logger.Info("schema migrated", zap.Uint("version", version))
	return nil
}
