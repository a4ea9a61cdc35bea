// Package migrations holds the goose migrations for the client-side store.
// Schema version is the goose version; a bump only ever adds tables or
// indexes and never drops tables it does not supersede.
package migrations

import "embed"

// FS contains the embedded SQLite migrations.
//
//go:embed *.sql
var FS embed.FS
