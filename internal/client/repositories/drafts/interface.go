package drafts

import (
	"context"
	"iter"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

// Repository persists offline drafts.
type Repository interface {
	// Upsert inserts the draft or replaces the row with the same id.
	Upsert(ctx context.Context, d *models.OfflineDraft) error

	// Update replaces an existing draft and returns common.ErrNotFound if
	// the id is absent. It never inserts.
	Update(ctx context.Context, d *models.OfflineDraft) error

	GetByID(ctx context.Context, id string) (*models.OfflineDraft, error)
	DeleteByID(ctx context.Context, id string) error

	// All iterates drafts in primary-key order.
	All(ctx context.Context) iter.Seq2[*models.OfflineDraft, error]

	// ByLastModified iterates drafts, most recently modified first.
	ByLastModified(ctx context.Context) iter.Seq2[*models.OfflineDraft, error]

	// DeleteModifiedBefore removes drafts with lastModified < cutoff.
	DeleteModifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
