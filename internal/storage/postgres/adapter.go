package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/migration"
	"github.com/julianstephens/habitgrid/migrations"
)

// Adapter keeps documents as rows of a PostgreSQL table in the application schema
type Adapter struct {
	connStr string
	db      *sql.DB
}

// New checks the connection string format and prepares an adapter. It does
// not reject embedded passwords: strings read from the OS keyring may carry
// them. Strings typed on the command line go through ValidateConnString first.
func New(connStr string) (*Adapter, error) {
	if strings.TrimSpace(connStr) == "" {
		return nil, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return nil, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}
	withPath, err := withSearchPath(connStr)
	if err != nil {
		return nil, err
	}
	return &Adapter{connStr: withPath}, nil
}

// Open connects, creates the schema if needed and applies migrations
func (a *Adapter) Open(ctx context.Context) error {
	if a.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", a.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(a.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+constants.AppName); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
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
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(a.db, subFS, migration.Postgres), nil
}

func (a *Adapter) runMigrations(ctx context.Context) error {
	runner, err := a.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(ctx, func(msg string) {
		logger.Debug(msg, "backend", "postgresql")
	})
	return err
}

// Location returns a non-sensitive identifier instead of the connection string
func (a *Adapter) Location() string {
	return "postgresql"
}

func (a *Adapter) Exists(ctx context.Context, name string) (bool, error) {
	if a.db == nil {
		return false, fmt.Errorf("storage not opened")
	}
	var exists bool
	err := a.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM documents WHERE name = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", name, err)
	}
	return exists, nil
}

func (a *Adapter) Read(ctx context.Context, name string) ([]byte, error) {
	if a.db == nil {
		return nil, fmt.Errorf("storage not opened")
	}
	var body []byte
	err := a.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE name = $1", name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", name, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	return body, nil
}

func (a *Adapter) Write(ctx context.Context, name string, data []byte) error {
	if a.db == nil {
		return fmt.Errorf("storage not opened")
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		name, string(data))
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
