package store

import (
	"context"
	"fmt"
	"iter"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
)

// Predicate filters records during ScanByIndex. A nil Predicate matches all.
type Predicate func(models.Record) bool

// Put validates rec and writes it to table. A record that belongs to another
// table, or fails validation, is rejected with common.ErrInvalidRecord before
// the database is touched. Each Put is its own atomic unit.
func (s *Store) Put(ctx context.Context, table models.Table, rec models.Record) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", common.ErrInvalidRecord)
	}
	if rec.Table() != table {
		return fmt.Errorf("%w: %T belongs to %s, not %s", common.ErrInvalidRecord, rec, rec.Table(), table)
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := s.ready(ctx); err != nil {
		return err
	}

	var err error
	switch r := rec.(type) {
	case *models.CachedPost:
		err = s.posts.Upsert(ctx, r)
	case *models.OfflineDraft:
		err = s.drafts.Upsert(ctx, r)
	case *models.PreferenceRecord:
		err = s.preferences.Set(ctx, r)
	case *models.CacheEntry:
		err = s.cache.Upsert(ctx, r)
	case *models.SyncQueueEntry:
		err = s.queue.Append(ctx, r)
	default:
		return fmt.Errorf("%w: unsupported record type %T", common.ErrInvalidRecord, rec)
	}
	return mapErr(err)
}

// Get returns the record stored under key, or common.ErrNotFound. It does not
// apply expiry; use GetPost for TTL-aware reads.
func (s *Store) Get(ctx context.Context, table models.Table, key string) (models.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	switch table {
	case models.TablePosts:
		return nonNil(s.posts.GetByID(ctx, key))
	case models.TableDrafts:
		return nonNil(s.drafts.GetByID(ctx, key))
	case models.TablePreferences:
		return nonNil(s.preferences.Get(ctx, key))
	case models.TableCache:
		return nonNil(s.cache.GetByKey(ctx, key))
	case models.TableSyncQueue:
		return nonNil(s.queue.GetByID(ctx, key))
	default:
		return nil, unknownTable(table)
	}
}

// Delete removes one record and returns common.ErrNotFound if none existed.
func (s *Store) Delete(ctx context.Context, table models.Table, key string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	switch table {
	case models.TablePosts:
		return s.posts.DeleteByID(ctx, key)
	case models.TableDrafts:
		return s.drafts.DeleteByID(ctx, key)
	case models.TablePreferences:
		return s.preferences.Delete(ctx, key)
	case models.TableCache:
		return s.cache.DeleteByKey(ctx, key)
	case models.TableSyncQueue:
		return s.queue.DeleteByID(ctx, key)
	default:
		return unknownTable(table)
	}
}

// ScanByIndex lazily walks table in the order of index, yielding records
// accepted by pred. Each range starts a fresh scan. An unsupported
// table/index pair yields a single error.
//
// Supported pairs: every table's primary key, posts/author,
// posts/expires_at, drafts/last_modified (newest first), cache/expires_at and
// sync_queue/created_at.
func (s *Store) ScanByIndex(ctx context.Context, table models.Table, index models.Index, pred Predicate) iter.Seq2[models.Record, error] {
	return func(yield func(models.Record, error) bool) {
		if err := s.ready(ctx); err != nil {
			yield(nil, err)
			return
		}
		src, err := s.indexSource(ctx, table, index)
		if err != nil {
			yield(nil, err)
			return
		}
		for rec, err := range src {
			if err != nil {
				yield(nil, err)
				return
			}
			if pred != nil && !pred(rec) {
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func (s *Store) indexSource(ctx context.Context, table models.Table, index models.Index) (iter.Seq2[models.Record, error], error) {
	switch {
	case table == models.TablePosts && index == models.IndexPrimary:
		return asRecords(s.posts.All(ctx)), nil
	case table == models.TablePosts && index == models.IndexAuthor:
		return asRecords(s.posts.AllByAuthor(ctx)), nil
	case table == models.TablePosts && index == models.IndexExpiresAt:
		return asRecords(s.posts.ByExpiry(ctx)), nil
	case table == models.TableDrafts && index == models.IndexPrimary:
		return asRecords(s.drafts.All(ctx)), nil
	case table == models.TableDrafts && index == models.IndexLastModified:
		return asRecords(s.drafts.ByLastModified(ctx)), nil
	case table == models.TablePreferences && index == models.IndexPrimary:
		return asRecords(s.preferences.All(ctx)), nil
	case table == models.TableCache && index == models.IndexPrimary:
		return asRecords(s.cache.All(ctx)), nil
	case table == models.TableCache && index == models.IndexExpiresAt:
		return asRecords(s.cache.ByExpiry(ctx)), nil
	case table == models.TableSyncQueue && (index == models.IndexPrimary || index == models.IndexCreatedAt):
		return asRecords(s.queue.All(ctx)), nil
	}
	return nil, fmt.Errorf("no index %q on table %q", index, table)
}

func asRecords[T models.Record](seq iter.Seq2[T, error]) iter.Seq2[models.Record, error] {
	return func(yield func(models.Record, error) bool) {
		for v, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// nonNil keeps a typed nil pointer from escaping as a non-nil interface.
func nonNil[T models.Record](v T, err error) (models.Record, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func unknownTable(t models.Table) error {
	return fmt.Errorf("unknown table %q", t)
}
