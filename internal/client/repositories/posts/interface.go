package posts

import (
	"context"
	"iter"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

// Repository persists cached posts. Reads do not check expiry; that is the
// store's job so that lazy deletion happens in one place.
type Repository interface {
	// Upsert inserts the post or overwrites the row with the same id.
	Upsert(ctx context.Context, p *models.CachedPost) error

	// GetByID returns common.ErrNotFound when no row exists.
	GetByID(ctx context.Context, id string) (*models.CachedPost, error)

	// DeleteByID returns common.ErrNotFound when no row was removed.
	DeleteByID(ctx context.Context, id string) error

	// All iterates posts in primary-key order.
	All(ctx context.Context) iter.Seq2[*models.CachedPost, error]

	// ByAuthor iterates one author's posts, newest cache write first.
	ByAuthor(ctx context.Context, author string) iter.Seq2[*models.CachedPost, error]

	// AllByAuthor iterates every post ordered by author, then newest first.
	AllByAuthor(ctx context.Context) iter.Seq2[*models.CachedPost, error]

	// ByExpiry iterates every post ordered by expiresAt ascending.
	ByExpiry(ctx context.Context) iter.Seq2[*models.CachedPost, error]

	// DeleteExpired removes posts with expiresAt < now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
