// Package store is the persistent, multi-table local database of the client:
// cached posts, offline drafts, preferences, ancillary cache entries and the
// outbound sync queue.
//
// A Store is constructed with New and opened once with Open. Concurrent Open
// calls share a single in-flight initialization. If that initialization
// fails the Store is permanently unavailable and every operation returns an
// error matching common.ErrStorageUnavailable.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/migrations"
	"github.com/dmitrijs2005/offlinefeed/internal/client/repositories/cacheentries"
	"github.com/dmitrijs2005/offlinefeed/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/offlinefeed/internal/client/repositories/posts"
	"github.com/dmitrijs2005/offlinefeed/internal/client/repositories/preferences"
	"github.com/dmitrijs2005/offlinefeed/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/dmitrijs2005/offlinefeed/internal/dbx"
	"github.com/dmitrijs2005/offlinefeed/internal/logging"
	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DefaultPostTTL        = 24 * time.Hour
	DefaultDraftRetention = 30 * 24 * time.Hour
)

// Config describes where the database lives and how long records are kept.
type Config struct {
	Path           string
	PostTTL        time.Duration
	DraftRetention time.Duration
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for TTL stamping and lazy expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store owns every typed record. It is safe for concurrent use.
type Store struct {
	cfg Config
	log logging.Logger
	now func() time.Time

	once    sync.Once
	done    chan struct{}
	openErr error

	db          *sql.DB
	posts       posts.Repository
	drafts      drafts.Repository
	preferences preferences.Repository
	cache       cacheentries.Repository
	queue       syncqueue.Repository
}

// New returns an unopened Store.
func New(cfg Config, log logging.Logger, opts ...Option) *Store {
	if cfg.PostTTL <= 0 {
		cfg.PostTTL = DefaultPostTTL
	}
	if cfg.DraftRetention <= 0 {
		cfg.DraftRetention = DefaultDraftRetention
	}
	if log == nil {
		log = logging.Nop()
	}
	s := &Store{
		cfg:  cfg,
		log:  log.With("component", "store"),
		now:  time.Now,
		done: make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open opens the database and applies pending migrations. It is idempotent;
// callers arriving while an open is in flight wait for it and get its result.
// The open itself is not cancelled by ctx, only the caller's wait is.
func (s *Store) Open(ctx context.Context) error {
	s.once.Do(func() {
		go func() {
			defer close(s.done)
			s.openErr = s.open(context.WithoutCancel(ctx))
			if s.openErr != nil {
				s.log.Error(ctx, "store unavailable", "path", s.cfg.Path, "error", s.openErr)
			}
		}()
	})

	select {
	case <-s.done:
		return s.openErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) open(ctx context.Context) error {
	path := strings.TrimSpace(s.cfg.Path)
	if path == "" {
		return fmt.Errorf("%w: database path is required", common.ErrStorageUnavailable)
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("%w: create data dir: %w", common.ErrStorageUnavailable, err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("%w: open sqlite db: %w", common.ErrStorageUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: ping sqlite db: %w", common.ErrStorageUnavailable, err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: init migrations: %w", common.ErrStorageUnavailable, err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: run migrations: %w", common.ErrStorageUnavailable, err)
	}
	if len(results) > 0 {
		version, _ := provider.GetDBVersion(ctx)
		s.log.Info(ctx, "schema migrated", "applied", len(results), "version", version)
	}

	s.db = db
	s.posts = posts.NewSQLiteRepository(db)
	s.drafts = drafts.NewSQLiteRepository(db)
	s.preferences = preferences.NewSQLiteRepository(db)
	s.cache = cacheentries.NewSQLiteRepository(db)
	s.queue = syncqueue.NewSQLiteRepository(db)
	return nil
}

// ready opens the store on first use and reports whether it is usable.
func (s *Store) ready(ctx context.Context) error {
	err := s.Open(ctx)
	if err == nil || errors.Is(err, common.ErrStorageUnavailable) || ctx.Err() != nil {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
}

// Available reports whether the store has opened successfully. It does not
// trigger an open.
func (s *Store) Available() bool {
	select {
	case <-s.done:
		return s.openErr == nil
	default:
		return false
	}
}

// Path returns the database file path.
func (s *Store) Path() string { return s.cfg.Path }

// Close releases the database handle. A Store that never opened is a no-op.
func (s *Store) Close() error {
	if !s.Available() {
		return nil
	}
	return s.db.Close()
}

// mapErr translates driver errors into the store's taxonomy. Nothing is
// retried here.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_FULL {
		return fmt.Errorf("%w: %w", common.ErrQuotaExceeded, err)
	}
	return err
}

// withTx runs fn with repositories bound to one transaction.
func (s *Store) withTx(ctx context.Context, fn func(ctx context.Context, r txRepos) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, txRepos{
			posts:       posts.NewSQLiteRepository(tx),
			drafts:      drafts.NewSQLiteRepository(tx),
			preferences: preferences.NewSQLiteRepository(tx),
			cache:       cacheentries.NewSQLiteRepository(tx),
			queue:       syncqueue.NewSQLiteRepository(tx),
		})
	})
}

type txRepos struct {
	posts       posts.Repository
	drafts      drafts.Repository
	preferences preferences.Repository
	cache       cacheentries.Repository
	queue       syncqueue.Repository
}
