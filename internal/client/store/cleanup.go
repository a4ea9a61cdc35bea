package store

import (
	"context"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/timex"
)

// CleanupReport counts what one CleanupExpired pass removed.
type CleanupReport struct {
	Posts  int64
	Cache  int64
	Drafts int64
}

// Total is the number of rows removed across all tables.
func (r CleanupReport) Total() int64 { return r.Posts + r.Cache + r.Drafts }

// CleanupExpired deletes posts and cache entries with expiresAt < now and
// drafts whose lastModified is older than the retention window. Running it
// twice with no intervening writes leaves the same contents as running it
// once. Concurrent readers may still observe a row about to be deleted.
func (s *Store) CleanupExpired(ctx context.Context, now time.Time) (CleanupReport, error) {
	var rep CleanupReport
	if err := s.ready(ctx); err != nil {
		return rep, err
	}

	var err error
	if rep.Posts, err = s.posts.DeleteExpired(ctx, now); err != nil {
		return rep, err
	}
	if rep.Cache, err = s.cache.DeleteExpired(ctx, now); err != nil {
		return rep, err
	}
	if rep.Drafts, err = s.drafts.DeleteModifiedBefore(ctx, now.Add(-s.cfg.DraftRetention)); err != nil {
		return rep, err
	}
	return rep, nil
}

// RunCleanup calls CleanupExpired on every tick until ctx is done. Failures
// are logged and the loop keeps going.
func (s *Store) RunCleanup(ctx context.Context, ticker timex.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C():
			rep, err := s.CleanupExpired(ctx, t)
			if err != nil {
				s.log.Error(ctx, "cleanup failed", "error", err)
				continue
			}
			if rep.Total() > 0 {
				s.log.Info(ctx, "expired records removed",
					"posts", rep.Posts, "cache", rep.Cache, "drafts", rep.Drafts)
			}
		}
	}
}

// ClearAll truncates every table in one transaction. It is only ever called
// on explicit user action.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	err := s.withTx(ctx, func(ctx context.Context, r txRepos) error {
		for _, truncate := range []func(context.Context) error{
			r.posts.Clear, r.drafts.Clear, r.preferences.Clear, r.cache.Clear, r.queue.Clear,
		} {
			if err := truncate(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "all tables cleared")
	return nil
}
