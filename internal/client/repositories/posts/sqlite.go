package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/dmitrijs2005/offlinefeed/internal/dbx"
)

const selectColumns = `SELECT id, data, cached_at, expires_at FROM posts`

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.CachedPost) error {
	data, err := json.Marshal(p.Data)
	if err != nil {
		return fmt.Errorf("failed to encode post %s: %w", p.ID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO posts (id, author, data, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET author = excluded.author, data = excluded.data,
			cached_at = excluded.cached_at, expires_at = excluded.expires_at
	`, p.ID, p.Data.Author, string(data), dbx.Millis(p.CachedAt), dbx.Millis(p.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to upsert post %s: %w", p.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.CachedPost, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
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

func (r *SQLiteRepository) All(ctx context.Context) iter.Seq2[*models.CachedPost, error] {
	return dbx.Iterate(ctx, r.db, scanPost, selectColumns+` ORDER BY id`)
}

func (r *SQLiteRepository) ByAuthor(ctx context.Context, author string) iter.Seq2[*models.CachedPost, error] {
	return dbx.Iterate(ctx, r.db, scanPost, selectColumns+` WHERE author = ? ORDER BY cached_at DESC, id`, author)
}

func (r *SQLiteRepository) AllByAuthor(ctx context.Context) iter.Seq2[*models.CachedPost, error] {
	return dbx.Iterate(ctx, r.db, scanPost, selectColumns+` ORDER BY author, cached_at DESC, id`)
}

func (r *SQLiteRepository) ByExpiry(ctx context.Context) iter.Seq2[*models.CachedPost, error] {
	return dbx.Iterate(ctx, r.db, scanPost, selectColumns+` ORDER BY expires_at, id`)
}

func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE expires_at < ?`, dbx.Millis(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired posts: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return fmt.Errorf("failed to clear posts: %w", err)
	}
	return nil
}

func scanPost(s dbx.Scanner) (*models.CachedPost, error) {
	var (
		p                  models.CachedPost
		data               string
		cachedAt, expireAt int64
	)
	if err := s.Scan(&p.ID, &data, &cachedAt, &expireAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &p.Data); err != nil {
		return nil, fmt.Errorf("failed to decode post %s: %w", p.ID, err)
	}
	p.CachedAt = dbx.FromMillis(cachedAt)
	p.ExpiresAt = dbx.FromMillis(expireAt)
	return &p, nil
}
