// Package config resolves runtime settings from flags, the environment and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/utils"
)

// Config holds the settings shared by every command
type Config struct {
	// ConfigDir holds logs and, by default, the habit document
	ConfigDir string
	// Store is a directory, a .db/.sqlite file, "postgres" or a postgres:// URL
	Store     string
	Timezone  string
	Debug     bool
	LogFormat string
	AMQP      AMQP
}

// AMQP configures the optional change publisher
type AMQP struct {
	URL      string
	Exchange string
	Queue    string
}

// Enabled reports whether change messages should be published
func (a AMQP) Enabled() bool {
	return a.URL != ""
}

// LoadEnv loads variables from .env files without overriding the ones
// already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Resolve expands paths and fills defaults. The store defaults to the config
// directory, holding the habit document as a JSON file.
func (c Config) Resolve() (Config, error) {
	if c.ConfigDir == "" {
		c.ConfigDir = constants.DefaultConfigPath
	}
	dir, err := ExpandPath(c.ConfigDir)
	if err != nil {
		return c, err
	}
	c.ConfigDir = dir

	switch {
	case c.Store == "":
		c.Store = c.ConfigDir
	case c.Store == "postgres" || strings.Contains(c.Store, "://"):
	default:
		if c.Store, err = ExpandPath(c.Store); err != nil {
			return c, err
		}
	}

	if c.Timezone == "" {
		c.Timezone = constants.DefaultTimezone
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return c, fmt.Errorf("invalid timezone %q", c.Timezone)
	}

	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		return c, err
	}

	if c.AMQP.Exchange == "" {
		c.AMQP.Exchange = constants.DefaultAMQPExchange
	}
	if c.AMQP.Queue == "" {
		c.AMQP.Queue = constants.DefaultAMQPQueue
	}
	return c, nil
}

// ExpandPath replaces a leading ~ with the home directory and cleans the path
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("path cannot be empty")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}
