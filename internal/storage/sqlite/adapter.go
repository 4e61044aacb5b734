package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/migration"
	"github.com/julianstephens/habitgrid/migrations"
)

// Adapter keeps documents as rows of a SQLite database file
type Adapter struct {
	path string
	db   *sql.DB
}

func New(path string) *Adapter {
	return &Adapter{
		path: path,
	}
}

// Open creates the database if needed and brings its schema up to date
func (a *Adapter) Open(ctx context.Context) error {
	if a.db != nil {
		return nil
	}

	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", a.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection serializes writers and keeps pragmas consistent
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db

	if err := a.runMigrations(ctx); err != nil {
		a.db = nil
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (a *Adapter) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(a.db, subFS, migration.SQLite), nil
}

func (a *Adapter) runMigrations(ctx context.Context) error {
	runner, err := a.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(ctx, func(msg string) {
		logger.Debug(msg, "path", a.path)
	})
	return err
}

func (a *Adapter) Location() string {
	return a.path
}

// Path returns the database file
func (a *Adapter) Path() string {
	return a.path
}

func (a *Adapter) Exists(ctx context.Context, name string) (bool, error) {
	if a.db == nil {
		return false, fmt.Errorf("storage not opened")
	}
	var count int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", name, err)
	}
	return count > 0, nil
}

func (a *Adapter) Read(ctx context.Context, name string) ([]byte, error) {
	if a.db == nil {
		return nil, fmt.Errorf("storage not opened")
	}
	var body string
	err := a.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE name = ?", name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", name, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	return []byte(body), nil
}

func (a *Adapter) Write(ctx context.Context, name string, data []byte) error {
	if a.db == nil {
		return fmt.Errorf("storage not opened")
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", name, err)
	}
	return nil
}

// CheckSchema reports whether the database is at exactly the latest migration
func (a *Adapter) CheckSchema(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("storage not opened")
	}
	runner, err := a.runner()
	if err != nil {
		return err
	}
	return runner.Check(ctx)
}

// SchemaStatus compares the database with the migrations in this build
func (a *Adapter) SchemaStatus(ctx context.Context) (migration.Status, error) {
	if a.db == nil {
		return migration.Status{}, fmt.Errorf("storage not opened")
	}
	runner, err := a.runner()
	if err != nil {
		return migration.Status{}, err
	}
	return runner.Status(ctx)
}

func (a *Adapter) Close() error {
	if a.db != nil {
		err := a.db.Close()
		a.db = nil
		return err
	}
	return nil
}
