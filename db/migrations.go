// Package db embeds the database migration files so production builds can
// run migrations without the source tree on disk.
package db

import "embed"

// Migrations holds the SQL migration files. Built with the
// embed_migrations tag; development builds read db/migrations from disk
// instead.
//
//go:embed migrations
var Migrations embed.FS
