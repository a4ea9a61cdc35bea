package syncqueue

import (
	"context"
	"iter"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

// Repository is the append-only outbound mutation queue. Entries are never
// updated; they are removed once a sync has delivered them.
type Repository interface {
	// Append fails if an entry with the same id already exists.
	Append(ctx context.Context, e *models.SyncQueueEntry) error
	GetByID(ctx context.Context, id string) (*models.SyncQueueEntry, error)
	DeleteByID(ctx context.Context, id string) error

	// DeleteByIDs removes the listed entries and reports how many existed.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)

	// All iterates entries oldest first.
	All(ctx context.Context) iter.Seq2[*models.SyncQueueEntry, error]

	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
