package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/julianstephens/habitgrid/internal/backup"
	"github.com/julianstephens/habitgrid/internal/config"
	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/storage"
)

// Context is handed to every command's Run method
type Context struct {
	// Base carries cancellation into store and backend calls
	Base    context.Context
	Store   *habits.Store
	Adapter storage.Adapter
	Config  config.Config
	TZ      *time.Location

	// Now is replaced in tests
	Now func() time.Time
	Out io.Writer
	// Interactive is false when prompts must be skipped
	Interactive bool
}

// Today returns the current time in the configured timezone
func (c *Context) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.TZ
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// Ctx returns the context for store and backend calls
func (c *Context) Ctx() context.Context {
	if c.Base != nil {
		return c.Base
	}
	return context.Background()
}

// Stdout returns the command output writer
func (c *Context) Stdout() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

// BackupManager returns a manager for the local habit data, or false when
// the store does not keep its data in a local file.
func (c *Context) BackupManager() (*backup.Manager, bool) {
	path, ok := storage.LocalPath(c.Adapter, constants.DocumentName)
	if !ok {
		return nil, false
	}
	return backup.NewManager(path), true
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, ok := c.BackupManager()
	if !ok {
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
