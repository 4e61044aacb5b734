// Package migrations embeds the SQL schema for the database-backed document adapters.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
