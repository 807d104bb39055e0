// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contains the goose migrations for the application database.
//
//go:embed *.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "."
