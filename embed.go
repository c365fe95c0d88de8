package valens

import "embed"

// MigrationsFS holds the SQL migrations applied on startup.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
