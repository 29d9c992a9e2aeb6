// Package database owns the schema: embedded goose migrations and the runner
// that applies them.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const migrationsDir = "migrations"

// seams for tests
var (
	gooseUp     = func(ctx context.Context, db *sql.DB, dir string) error { return goose.UpContext(ctx, db, dir) }
	gooseDown   = func(ctx context.Context, db *sql.DB, dir string) error { return goose.DownContext(ctx, db, dir) }
	gooseDownTo = func(ctx context.Context, db *sql.DB, dir string, version int64) error {
		return goose.DownToContext(ctx, db, dir, version)
	}
	gooseStatus = func(ctx context.Context, db *sql.DB, dir string) error { return goose.StatusContext(ctx, db, dir) }
)

// Migrator applies the embedded schema migrations.
type Migrator struct {
	dsn string
	log *slog.Logger
}

// NewMigrator returns a Migrator for the database at dsn.
func NewMigrator(dsn string, log *slog.Logger) (*Migrator, error) {
	if dsn == "" {
		return nil, errors.New("empty database dsn")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Migrator{dsn: dsn, log: log}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.withDB(func(db *sql.DB) error {
		m.log.Info("applying migrations")
		if err := gooseUp(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		m.log.Info("migrations applied")
		return nil
	})
}

// Status logs applied and pending migrations.
func (m *Migrator) Status(ctx context.Context) error {
	return m.withDB(func(db *sql.DB) error {
		if err := gooseStatus(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return nil
	})
}

// Down rolls back the latest migration, or down to targetVersion when it is positive.
func (m *Migrator) Down(ctx context.Context, targetVersion int64) error {
	return m.withDB(func(db *sql.DB) error {
		if targetVersion > 0 {
			m.log.Info("rolling back migrations", "target", targetVersion)
			if err := gooseDownTo(ctx, db, migrationsDir, targetVersion); err != nil {
				return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
			}
			return nil
		}
		m.log.Info("rolling back latest migration")
		if err := gooseDown(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("rollback latest migration: %w", err)
		}
		return nil
	})
}

func (m *Migrator) withDB(fn func(*sql.DB) error) error {
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}

	db, err := sql.Open("pgx", m.dsn)
	if err != nil {
		return fmt.Errorf("open sql connection: %w", err)
	}
	defer db.Close()

	return fn(db)
}
