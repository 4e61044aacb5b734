package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitgrid/internal/keyring"
	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/storage/postgres"
	"github.com/julianstephens/habitgrid/internal/storage/sqlite"
)

// Backend identifies where documents are kept
type Backend string

const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// BackendOf infers the backend from a store location: the word "postgres"
// or a postgres:// URL, a .db/.sqlite file, otherwise a directory.
func BackendOf(location string) Backend {
	if location == string(BackendPostgres) || postgres.IsConnString(location) {
		return BackendPostgres
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".db", ".sqlite", ".sqlite3":
		return BackendSQLite
	}
	return BackendFile
}

// Open returns a ready adapter for location. For PostgreSQL the connection
// string is taken from location itself when it is a URL, otherwise from
// the environment or the OS keyring. A URL given directly must not carry a
// password.
func Open(ctx context.Context, location string) (Adapter, error) {
	switch BackendOf(location) {
	case BackendPostgres:
		return openPostgres(ctx, location)
	case BackendSQLite:
		a := sqlite.New(location)
		if err := a.Open(ctx); err != nil {
			return nil, err
		}
		logger.Debug("Opened SQLite store", "path", location)
		return a, nil
	default:
		logger.Debug("Using file store", "dir", location)
		return NewFileAdapter(location), nil
	}
}

func openPostgres(ctx context.Context, location string) (Adapter, error) {
	explicit := ""
	if postgres.IsConnString(location) {
		if _, err := postgres.ValidateConnString(location); err != nil {
			return nil, err
		}
		explicit = location
	}

	connStr, source, err := keyring.ResolveConnectionString(explicit)
	if err != nil {
		return nil, fmt.Errorf("no PostgreSQL connection string configured: %w", err)
	}
	logger.Debug("Resolved PostgreSQL connection string", "source", source)

	a, err := postgres.New(connStr)
	if err != nil {
		return nil, err
	}
	if err := a.Open(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// LocalPath returns the file holding the named document when the adapter
// keeps it on the local filesystem.
func LocalPath(a Adapter, name string) (string, bool) {
	switch a := a.(type) {
	case *FileAdapter:
		return a.Path(name), true
	case *sqlite.Adapter:
		return a.Path(), true
	}
	return "", false
}
