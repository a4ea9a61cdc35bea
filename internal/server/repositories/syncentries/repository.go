// Package syncentries stores the mutations devices push to the sync server.
// Entries are keyed by the client-generated id, so a batch that is delivered
// again after a lost response is absorbed without duplicates.
package syncentries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

// Entry is one received mutation.
type Entry struct {
	ID         string
	DeviceID   string
	Op         models.SyncOp
	DraftID    string
	Payload    []byte
	CreatedAt  time.Time
	ReceivedAt time.Time
}

type Repository interface {
	// Insert stores entries, skipping ids already present, and returns how
	// many were new.
	Insert(ctx context.Context, entries []*Entry) (int64, error)
	// ByDraft returns a draft's history, oldest first.
	ByDraft(ctx context.Context, draftID string) ([]*Entry, error)
	Count(ctx context.Context) (int64, error)
}
