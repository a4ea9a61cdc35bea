package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

// Counts is the number of rows per table.
type Counts struct {
	Posts       int64
	Drafts      int64
	Preferences int64
	Cache       int64
	SyncQueue   int64
}

// HasOfflineData reports whether any user-visible content is stored.
// Preferences alone do not count.
func (c Counts) HasOfflineData() bool {
	return c.Posts > 0 || c.Drafts > 0 || c.Cache > 0 || c.SyncQueue > 0
}

func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if err := s.ready(ctx); err != nil {
		return c, err
	}
	var err error
	if c.Posts, err = s.posts.Count(ctx); err != nil {
		return c, err
	}
	if c.Drafts, err = s.drafts.Count(ctx); err != nil {
		return c, err
	}
	if c.Preferences, err = s.preferences.Count(ctx); err != nil {
		return c, err
	}
	if c.Cache, err = s.cache.Count(ctx); err != nil {
		return c, err
	}
	if c.SyncQueue, err = s.queue.Count(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// Tables lists the application tables present in the database file.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'goose_db_version'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// EstimateUsage reports bytes used by the database files and the host's
// available/total capacity for the data directory. It is queried on demand
// and never cached. Zero fields mean the host could not say.
func (s *Store) EstimateUsage(ctx context.Context) (models.StorageEstimate, error) {
	var est models.StorageEstimate
	if err := s.ready(ctx); err != nil {
		return est, err
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if fi, err := os.Stat(s.cfg.Path + suffix); err == nil {
			est.Used += fi.Size()
		}
	}
	available, total, err := diskQuota(filepath.Dir(s.cfg.Path))
	if err != nil {
		s.log.Debug(ctx, "host quota unavailable", "error", err)
		return est, nil
	}
	est.Available, est.Total = available, total
	return est, nil
}
