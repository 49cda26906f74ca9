package migrations

import "embed"

// FS contains embedded SQLite migrations for seen marker storage.
//
//go:embed *.sql
var FS embed.FS
