package store

import (
	"context"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

// EnqueueSync appends one outbound mutation to the sync queue.
func (s *Store) EnqueueSync(ctx context.Context, payload any) (*models.SyncQueueEntry, error) {
	e, err := models.NewSyncQueueEntry(s.now(), payload)
	if err != nil {
		return nil, err
	}
	if err := s.Put(ctx, models.TableSyncQueue, e); err != nil {
		return nil, err
	}
	return e, nil
}

// PendingSync returns the queue, oldest first.
func (s *Store) PendingSync(ctx context.Context) ([]*models.SyncQueueEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var out []*models.SyncQueueEntry
	for e, err := range s.queue.All(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) CountPendingSync(ctx context.Context) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	return s.queue.Count(ctx)
}

// RemoveSync deletes exactly the given entries, leaving anything enqueued
// since they were read.
func (s *Store) RemoveSync(ctx context.Context, ids []string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var removed int64
	err := s.withTx(ctx, func(ctx context.Context, r txRepos) error {
		n, err := r.queue.DeleteByIDs(ctx, ids)
		removed = n
		return err
	})
	return removed, err
}
