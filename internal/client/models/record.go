// Package models defines the typed records owned by the persistent store.
//
// Every record kind implements Record and belongs to exactly one Table. The
// store validates records at Put, so a malformed record fails before it
// reaches the database.
package models

import (
	"fmt"

	"github.com/dmitrijs2005/offlinefeed/internal/common"
)

// Table names a store table.
type Table string

const (
	TablePosts       Table = "posts"
	TableDrafts      Table = "drafts"
	TablePreferences Table = "preferences"
	TableCache       Table = "cache"
	TableSyncQueue   Table = "sync_queue"
)

// Tables lists every table in schema order.
func Tables() []Table {
	return []Table{TablePosts, TableDrafts, TablePreferences, TableCache, TableSyncQueue}
}

// Index names a secondary (or primary) index usable by ScanByIndex.
type Index string

const (
	IndexPrimary      Index = "primary"
	IndexAuthor       Index = "author"
	IndexExpiresAt    Index = "expires_at"
	IndexLastModified Index = "last_modified"
	IndexCreatedAt    Index = "created_at"
)

// Record is the closed set of values the store accepts.
type Record interface {
	Table() Table
	Key() string
	Validate() error
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidRecord, fmt.Sprintf(format, args...))
}
