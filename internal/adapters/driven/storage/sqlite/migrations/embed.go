// Package migrations holds the schema for the SQLite document store.
// Files are applied in name order; only *.up.sql files are run by Open.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
