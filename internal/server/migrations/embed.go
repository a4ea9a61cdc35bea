// Package migrations embeds the sync server's PostgreSQL schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
