package storage

import (
	"context"

	"github.com/julianstephens/habitgrid/internal/migration"
)

// Adapter is the host service the habit store persists through: whole
// documents addressed by a fixed name.
//
// Read returns an error matching fs.ErrNotExist when the document is absent.
type Adapter interface {
	Exists(ctx context.Context, name string) (bool, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error

	// Location returns a non-sensitive description of where documents live
	Location() string
}

// SchemaChecker is implemented by adapters backed by a migrated database
type SchemaChecker interface {
	CheckSchema(ctx context.Context) error
	SchemaStatus(ctx context.Context) (migration.Status, error)
}
