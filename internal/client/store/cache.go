package store

import (
	"context"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
)

func (s *Store) PutCacheEntry(ctx context.Context, e *models.CacheEntry) error {
	return s.Put(ctx, models.TableCache, e)
}

// GetCacheEntry returns common.ErrNotFound for absent or expired entries.
// Expired entries are left for CleanupExpired.
func (s *Store) GetCacheEntry(ctx context.Context, key string) (*models.CacheEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	e, err := s.cache.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if e.ExpiresAt.Before(s.now()) {
		return nil, common.ErrNotFound
	}
	return e, nil
}
