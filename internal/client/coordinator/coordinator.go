// Package coordinator is the application-facing facade of the offline layer.
// It joins connectivity, store state and the sync queue into one Snapshot and
// exposes draft, preference and post operations.
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/client"
	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/client/store"
	"github.com/dmitrijs2005/offlinefeed/internal/logging"
	"github.com/dmitrijs2005/offlinefeed/internal/timex"
)

const DefaultCleanupInterval = time.Hour

// Store is the subset of *store.Store the coordinator depends on.
type Store interface {
	Open(ctx context.Context) error
	Available() bool

	SaveDraft(ctx context.Context, d *models.OfflineDraft) error
	UpdateDraft(ctx context.Context, d *models.OfflineDraft) error
	GetDraft(ctx context.Context, id string) (*models.OfflineDraft, error)
	ListDrafts(ctx context.Context) ([]*models.OfflineDraft, error)
	DeleteDraft(ctx context.Context, id string) error

	SavePreferences(ctx context.Context, p models.Preferences) error
	GetPreferences(ctx context.Context) (models.Preferences, error)

	SavePost(ctx context.Context, p models.PostPayload) (*models.CachedPost, error)
	GetPost(ctx context.Context, id string) (*models.CachedPost, error)
	ListPosts(ctx context.Context) ([]*models.CachedPost, error)

	EnqueueSync(ctx context.Context, payload any) (*models.SyncQueueEntry, error)
	PendingSync(ctx context.Context) ([]*models.SyncQueueEntry, error)
	RemoveSync(ctx context.Context, ids []string) (int64, error)

	Counts(ctx context.Context) (store.Counts, error)
	EstimateUsage(ctx context.Context) (models.StorageEstimate, error)
	CleanupExpired(ctx context.Context, now time.Time) (store.CleanupReport, error)
	RunCleanup(ctx context.Context, ticker timex.Ticker)
	ClearAll(ctx context.Context) error
}

// Connectivity is the online/offline signal source.
type Connectivity interface {
	Online() bool
	Subscribe(fn func(online bool)) (cancel func())
}

// StorageInfo describes the persistent store as of the last snapshot.
type StorageInfo struct {
	Available bool
	Estimate  models.StorageEstimate
}

// Snapshot is the aggregated offline state shown to the UI.
type Snapshot struct {
	IsOnline             bool
	IsOfflineModeEnabled bool
	HasOfflineData       bool
	PendingSyncCount     int
	StorageInfo          StorageInfo
}

type Option func(*Coordinator)

// WithClock overrides the time source for draft timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithCleanupTicker supplies the tick source for periodic cleanup. The
// coordinator owns it once Start is called.
func WithCleanupTicker(t timex.Ticker) Option {
	return func(c *Coordinator) { c.cleanupTicker = t }
}

// WithCleanupInterval sets the period of the default cleanup ticker.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.cleanupInterval = d
		}
	}
}

type Coordinator struct {
	store    Store
	conn     Connectivity
	executor client.SyncExecutor
	log      logging.Logger
	now      func() time.Time

	cleanupInterval time.Duration
	cleanupTicker   timex.Ticker

	mu          sync.Mutex
	snap        Snapshot
	offlineMode bool
	nextSub     int
	subs        map[int]func(Snapshot)
	// started counts refreshes begun; published is the newest one stored.
	started   uint64
	published uint64

	notifyMu  sync.Mutex
	delivered uint64

	syncMu sync.Mutex

	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

func New(s Store, conn Connectivity, exec client.SyncExecutor, log logging.Logger, opts ...Option) *Coordinator {
	if log == nil {
		log = logging.Nop()
	}
	c := &Coordinator{
		store:           s,
		conn:            conn,
		executor:        exec,
		log:             log.With("component", "coordinator"),
		now:             time.Now,
		cleanupInterval: DefaultCleanupInterval,
		subs:            map[int]func(Snapshot){},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start opens the store, publishes the first snapshot, follows connectivity
// transitions and schedules cleanup. A store that fails to open is not an
// error here: the coordinator keeps running with StorageInfo.Available false.
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.store.Open(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Error(ctx, "running without persistence", "error", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel

	c.unsubscribe = c.conn.Subscribe(func(online bool) {
		c.log.Info(runCtx, "connectivity changed", "online", online)
		c.refresh(runCtx)
	})

	if c.store.Available() {
		t := c.cleanupTicker
		if t == nil {
			t = timex.NewTicker(c.cleanupInterval)
		}
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.store.RunCleanup(runCtx, t)
		}()
	}

	c.refresh(ctx)
	return nil
}

// Close stops background work. It does not close the store.
func (c *Coordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Snapshot returns the most recently computed state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Subscribe registers fn to receive every recomputed snapshot. Deliveries are
// serialized and never go back in time; fn runs on the refreshing goroutine
// and must not call into the coordinator.
func (c *Coordinator) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// SetOfflineMode toggles the user's offline preference. It is independent of
// connectivity.
func (c *Coordinator) SetOfflineMode(enabled bool) {
	c.mu.Lock()
	c.offlineMode = enabled
	c.mu.Unlock()
	c.refresh(context.Background())
}

// Refresh recomputes the snapshot on demand and returns it.
func (c *Coordinator) Refresh(ctx context.Context) Snapshot {
	return c.refresh(ctx)
}

// refresh recomputes and publishes the snapshot. A refresh that finishes
// after a later-started one is dropped, so a slow connectivity refresh cannot
// overwrite counts taken after a mutation.
func (c *Coordinator) refresh(ctx context.Context) Snapshot {
	c.mu.Lock()
	c.started++
	gen := c.started
	c.mu.Unlock()

	next := Snapshot{IsOnline: c.conn.Online()}

	if c.store.Available() {
		next.StorageInfo.Available = true
		if counts, err := c.store.Counts(ctx); err != nil {
			c.log.Warn(ctx, "snapshot counts failed", "error", err)
		} else {
			next.HasOfflineData = counts.HasOfflineData()
			next.PendingSyncCount = int(counts.SyncQueue)
		}
		if est, err := c.store.EstimateUsage(ctx); err != nil {
			c.log.Debug(ctx, "storage estimate unavailable", "error", err)
		} else {
			next.StorageInfo.Estimate = est
		}
	}

	c.mu.Lock()
	if gen < c.published {
		latest := c.snap
		c.mu.Unlock()
		return latest
	}
	next.IsOfflineModeEnabled = c.offlineMode
	c.snap = next
	c.published = gen
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if gen < c.delivered {
		return next
	}
	c.delivered = gen
	for _, fn := range subs {
		fn(next)
	}
	return next
}
