package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/dmitrijs2005/offlinefeed/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func newStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: base}
	s := New(Config{Path: filepath.Join(t.TempDir(), "offline.db")}, logging.Nop(), WithClock(clock.Now))
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func TestOpen_ConcurrentCallersShareResult(t *testing.T) {
	s := New(Config{Path: filepath.Join(t.TempDir(), "offline.db")}, logging.Nop())
	t.Cleanup(func() { _ = s.Close() })

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Open(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.True(t, s.Available())

	tables, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cache", "drafts", "posts", "preferences", "sync_queue"}, tables)
}

func TestOpen_IsIdempotentAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offline.db")
	ctx := context.Background()

	s1 := New(Config{Path: path}, logging.Nop(), WithClock(func() time.Time { return base }))
	require.NoError(t, s1.Open(ctx))
	require.NoError(t, s1.Open(ctx))
	_, err := s1.SavePost(ctx, models.PostPayload{ID: "p1", Author: "alice"})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2 := New(Config{Path: path}, logging.Nop(), WithClock(func() time.Time { return base }))
	require.NoError(t, s2.Open(ctx))
	t.Cleanup(func() { _ = s2.Close() })
	p, err := s2.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Data.Author)
}

func TestOpen_FailureIsPermanent(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	s := New(Config{Path: filepath.Join(blocker, "sub", "offline.db")}, logging.Nop())
	ctx := context.Background()

	err := s.Open(ctx)
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
	assert.False(t, s.Available())

	require.ErrorIs(t, s.Open(ctx), common.ErrStorageUnavailable)
	require.ErrorIs(t, s.SaveDraft(ctx, &models.OfflineDraft{ID: "d", CreatedAt: base, LastModified: base}), common.ErrStorageUnavailable)
	_, err = s.Get(ctx, models.TableDrafts, "d")
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
	_, err = s.ListDrafts(ctx)
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
	require.NoError(t, s.Close())
}

func TestOpen_CallerCancellationDoesNotPoisonOpen(t *testing.T) {
	s := New(Config{Path: filepath.Join(t.TempDir(), "offline.db")}, logging.Nop())
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Open(ctx)
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
	}
	require.NoError(t, s.Open(context.Background()))
}

func TestPut_RejectsWrongTableAndInvalidRecords(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	d := &models.OfflineDraft{ID: "d1", CreatedAt: base, LastModified: base}
	require.ErrorIs(t, s.Put(ctx, models.TablePosts, d), common.ErrInvalidRecord)
	require.ErrorIs(t, s.Put(ctx, models.TableDrafts, &models.OfflineDraft{}), common.ErrInvalidRecord)
	require.ErrorIs(t, s.Put(ctx, models.TableDrafts, nil), common.ErrInvalidRecord)

	n, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n.Drafts)
}

func TestPutGetDelete_AllTables(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	sq, err := models.NewSyncQueueEntry(base, models.SyncPayload{Op: models.SyncOpDraftSave, DraftID: "d1"})
	require.NoError(t, err)

	recs := []models.Record{
		models.NewCachedPost(models.PostPayload{ID: "p1", Author: "alice"}, base, time.Hour),
		&models.OfflineDraft{ID: "d1", Content: "hi", Tags: []string{}, CreatedAt: base, LastModified: base},
		&models.PreferenceRecord{ID: "user", Preferences: models.DefaultPreferences()},
		&models.CacheEntry{CacheKey: "relay:a", Payload: []byte(`{"ok":true}`), ExpiresAt: base.Add(time.Hour)},
		sq,
	}
	for _, r := range recs {
		require.NoError(t, s.Put(ctx, r.Table(), r), "%T", r)

		got, err := s.Get(ctx, r.Table(), r.Key())
		require.NoError(t, err, "%T", r)
		assert.Equal(t, r.Key(), got.Key())
		assert.Equal(t, r.Table(), got.Table())

		require.NoError(t, s.Delete(ctx, r.Table(), r.Key()))
		_, err = s.Get(ctx, r.Table(), r.Key())
		require.ErrorIs(t, err, common.ErrNotFound)
		require.ErrorIs(t, s.Delete(ctx, r.Table(), r.Key()), common.ErrNotFound)
	}

	_, err = s.Get(ctx, "bogus", "k")
	require.Error(t, err)
}

func TestGetPost_LazilyDeletesExpired(t *testing.T) {
	s, clock := newStore(t)
	ctx := context.Background()

	_, err := s.SavePost(ctx, models.PostPayload{ID: "p1", Author: "alice", Content: "gm"})
	require.NoError(t, err)

	clock.Set(base.Add(24*time.Hour - time.Millisecond))
	p, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "gm", p.Data.Content)

	clock.Set(base.Add(24 * time.Hour))
	_, err = s.GetPost(ctx, "p1")
	require.ErrorIs(t, err, common.ErrNotFound)

	// the row itself is gone, not just hidden
	_, err = s.Get(ctx, models.TablePosts, "p1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListPostsAndPostsByAuthor_SkipExpired(t *testing.T) {
	s, clock := newStore(t)
	ctx := context.Background()

	_, err := s.SavePost(ctx, models.PostPayload{ID: "old", Author: "alice"})
	require.NoError(t, err)
	clock.Set(base.Add(12 * time.Hour))
	_, err = s.SavePost(ctx, models.PostPayload{ID: "a2", Author: "alice"})
	require.NoError(t, err)
	_, err = s.SavePost(ctx, models.PostPayload{ID: "b1", Author: "bob"})
	require.NoError(t, err)

	clock.Set(base.Add(25 * time.Hour))
	list, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byAlice, err := s.PostsByAuthor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, byAlice, 1)
	assert.Equal(t, "a2", byAlice[0].ID)
}

func TestListDrafts_SortedByLastModifiedDesc(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i, offset := range []time.Duration{3 * time.Minute, time.Minute, 5 * time.Minute, 2 * time.Minute} {
		id := models.NewDraftID(base)
		require.False(t, seen[id])
		seen[id] = true
		require.NoError(t, s.SaveDraft(ctx, &models.OfflineDraft{
			ID: id, Content: string(rune('a' + i)), CreatedAt: base, LastModified: base.Add(offset),
		}))
	}

	list, err := s.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].LastModified.After(list[i-1].LastModified), "drafts out of order at %d", i)
	}
}

func TestListDrafts_SubMillisecondGaps(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		at := base.Add(time.Duration(i) * 100 * time.Microsecond)
		require.NoError(t, s.SaveDraft(ctx, &models.OfflineDraft{
			ID: models.NewDraftID(at), Content: "x", CreatedAt: at, LastModified: at,
		}))
	}

	list, err := s.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 10)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i].LastModified.Before(list[i-1].LastModified), "drafts out of order at %d", i)
	}
}

func TestUpdateDraft_NotFound(t *testing.T) {
	s, _ := newStore(t)
	err := s.UpdateDraft(context.Background(), &models.OfflineDraft{ID: "ghost", CreatedAt: base, LastModified: base})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPreferences_RoundTripIncludingEmptySets(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	got, err := s.GetPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPreferences(), got)

	in := models.Preferences{
		Theme:         "dark",
		FontSize:      "small",
		Language:      "en",
		DefaultRelays: []string{"wss://a", "wss://b"},
		MutedUsers:    []string{},
		MutedWords:    []string{},
	}
	require.NoError(t, s.SavePreferences(ctx, in))

	got, err = s.GetPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.NotNil(t, got.MutedUsers)
	assert.NotNil(t, got.MutedWords)
}

func TestGetCacheEntry_HidesExpired(t *testing.T) {
	s, clock := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCacheEntry(ctx, &models.CacheEntry{CacheKey: "k", Payload: []byte(`1`), ExpiresAt: base.Add(time.Minute)}))
	_, err := s.GetCacheEntry(ctx, "k")
	require.NoError(t, err)

	clock.Set(base.Add(2 * time.Minute))
	_, err = s.GetCacheEntry(ctx, "k")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSyncQueue_RemoveExactlyTheDeliveredEntries(t *testing.T) {
	s, clock := newStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		clock.Set(base.Add(time.Duration(i) * time.Second))
		_, err := s.EnqueueSync(ctx, models.SyncPayload{Op: models.SyncOpDraftSave, DraftID: "d"})
		require.NoError(t, err)
	}
	pending, err := s.PendingSync(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	// a fourth entry arrives after the batch was read
	_, err = s.EnqueueSync(ctx, models.SyncPayload{Op: models.SyncOpDraftDelete, DraftID: "d"})
	require.NoError(t, err)

	ids := make([]string, 0, len(pending))
	for _, e := range pending {
		ids = append(ids, e.ID)
	}
	n, err := s.RemoveSync(ctx, ids)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	left, err := s.CountPendingSync(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, left)
}

func TestPendingSync_SameInstantIsFIFO(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var want []string
	for i := 0; i < 10; i++ {
		e, err := s.EnqueueSync(ctx, models.SyncPayload{Op: models.SyncOpDraftUpdate, DraftID: "d"})
		require.NoError(t, err)
		want = append(want, e.ID)
	}

	pending, err := s.PendingSync(ctx)
	require.NoError(t, err)
	got := make([]string, 0, len(pending))
	for _, e := range pending {
		got = append(got, e.ID)
	}
	assert.Equal(t, want, got)
}

func TestScanByIndex(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, p := range []models.PostPayload{{ID: "1", Author: "bob"}, {ID: "2", Author: "alice"}, {ID: "3", Author: "bob"}} {
		_, err := s.SavePost(ctx, p)
		require.NoError(t, err)
	}

	byBob := func(r models.Record) bool { return r.(*models.CachedPost).Data.Author == "bob" }
	seq := s.ScanByIndex(ctx, models.TablePosts, models.IndexAuthor, byBob)

	for range 2 {
		var ids []string
		for rec, err := range seq {
			require.NoError(t, err)
			ids = append(ids, rec.Key())
		}
		assert.ElementsMatch(t, []string{"1", "3"}, ids)
	}

	// stopping early is fine
	for rec, err := range s.ScanByIndex(ctx, models.TablePosts, models.IndexPrimary, nil) {
		require.NoError(t, err)
		assert.Equal(t, "1", rec.Key())
		break
	}

	var gotErr error
	for _, err := range s.ScanByIndex(ctx, models.TablePreferences, models.IndexExpiresAt, nil) {
		gotErr = err
	}
	require.Error(t, gotErr)
}

func TestEstimateUsage(t *testing.T) {
	s, _ := newStore(t)
	est, err := s.EstimateUsage(context.Background())
	require.NoError(t, err)
	assert.Positive(t, est.Used)
	if est.Total > 0 {
		assert.LessOrEqual(t, est.Available, est.Total)
	}
}

func TestMapErr_PassesThroughUnknownErrors(t *testing.T) {
	require.NoError(t, mapErr(nil))
	e := errors.New("boom")
	require.Same(t, e, mapErr(e))
}
