package cacheentries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/dmitrijs2005/offlinefeed/internal/dbx"
)

const selectColumns = `SELECT key, payload, expires_at FROM cache`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.CacheEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache (key, payload, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at
	`, e.CacheKey, []byte(e.Payload), dbx.Millis(e.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to upsert cache[%s]: %w", e.CacheKey, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByKey(ctx context.Context, key string) (*models.CacheEntry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, selectColumns+` WHERE key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache[%s]: %w", key, err)
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteByKey(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache[%s]: %w", key, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) All(ctx context.Context) iter.Seq2[*models.CacheEntry, error] {
	return dbx.Iterate(ctx, r.db, scanEntry, selectColumns+` ORDER BY key`)
}

func (r *SQLiteRepository) ByExpiry(ctx context.Context) iter.Seq2[*models.CacheEntry, error] {
	return dbx.Iterate(ctx, r.db, scanEntry, selectColumns+` ORDER BY expires_at, key`)
}

func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cache WHERE expires_at < ?`, dbx.Millis(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cache`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func scanEntry(s dbx.Scanner) (*models.CacheEntry, error) {
	var (
		e         models.CacheEntry
		payload   []byte
		expiresAt int64
	)
	if err := s.Scan(&e.CacheKey, &payload, &expiresAt); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		e.Payload = payload
	}
	e.ExpiresAt = dbx.FromMillis(expiresAt)
	return &e, nil
}
