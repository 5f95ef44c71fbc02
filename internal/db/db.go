// Package db is the SQLite storage backend.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

var _ store.Store = (*DB)(nil)

// Open opens a database connection and runs migrations
func Open(dbPath string) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", dbPath)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports one writer
	sqlDB.SetMaxIdleConns(1)

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB}

	// Run migrations
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// migrate runs database migrations using embedded SQL files
func (db *DB) migrate() error {
	// Silence goose logging (it corrupts TUI output)
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Transaction executes a function within a transaction
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return errors.WithStack(tx.Commit())
}

// Load reads the whole snapshot. A table that cannot be read comes back
// empty and the failure is logged.
func (db *DB) Load(ctx context.Context) store.Snapshot {
	var snap store.Snapshot

	tasks, err := db.loadTasks(ctx)
	if err != nil {
		applog.Log.WithError(err).Warn("failed to load tasks, starting empty")
	}
	subjects, err := db.loadSubjects(ctx)
	if err != nil {
		applog.Log.WithError(err).Warn("failed to load subjects, starting empty")
	}
	cp, err := db.loadCheckpoint(ctx)
	if err != nil {
		applog.Log.WithError(err).Warn("failed to load checkpoint")
	}

	snap.Tasks = tasks
	snap.Subjects = subjects
	snap.Checkpoint = cp
	if snap.Tasks == nil {
		snap.Tasks = []model.Task{}
	}
	if snap.Subjects == nil {
		snap.Subjects = []model.Subject{}
	}
	return snap
}

// Save replaces every table with snap in one transaction
func (db *DB) Save(ctx context.Context, snap store.Snapshot) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := saveTasks(ctx, tx, snap.Tasks); err != nil {
			return err
		}
		if err := saveSubjects(ctx, tx, snap.Subjects); err != nil {
			return err
		}
		return saveCheckpoint(ctx, tx, snap.Checkpoint)
	})
}
