package cacheentries

import (
	"context"
	"iter"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

// Repository persists ancillary cache entries such as relay metadata.
type Repository interface {
	Upsert(ctx context.Context, e *models.CacheEntry) error
	GetByKey(ctx context.Context, key string) (*models.CacheEntry, error)
	DeleteByKey(ctx context.Context, key string) error
	All(ctx context.Context) iter.Seq2[*models.CacheEntry, error]
	ByExpiry(ctx context.Context) iter.Seq2[*models.CacheEntry, error]
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
