package system

import (
	"fmt"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/storage"
)

// MigrateCmd reports the schema version of a database store. Pending
// migrations are applied when the store is opened, so a store that reaches
// this command is normally up to date.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()

	checker, ok := ctx.Adapter.(storage.SchemaChecker)
	if !ok {
		fmt.Fprintf(out, "The store at %s has no schema to migrate.\n", ctx.Adapter.Location())
		return nil
	}

	s, err := checker.SchemaStatus(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to read schema status: %w", err)
	}

	switch {
	case s.TooNew():
		return fmt.Errorf("database schema version %d is newer than this build (%d), please upgrade habitgrid", s.Current, s.Latest)
	case len(s.Pending) > 0:
		fmt.Fprintf(out, "Database schema version %d, %d migration(s) pending:\n", s.Current, len(s.Pending))
		for _, m := range s.Pending {
			fmt.Fprintf(out, "  %03d %s\n", m.Version, m.Name)
		}
		return fmt.Errorf("database schema is behind, reopen the store to apply pending migrations")
	}

	fmt.Fprintf(out, "No migrations to apply. Database is up to date (version %d).\n", s.Current)
	return nil
}
