// Package migrations embeds the goose schema migrations for each SQL backend.
package migrations

import "embed"

// Postgres contains the migrations applied to PostgreSQL.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite contains the migrations applied to SQLite.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
