package migrations

import "embed"

// FS holds the SQL migrations applied by db.ApplyMigrations
//
//go:embed *.sql
var FS embed.FS
