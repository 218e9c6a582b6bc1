package migrations

import "embed"

// MigrationsFS holds the goose SQL migrations applied at start-up.
//
//go:embed *.sql
var MigrationsFS embed.FS
