package drafts

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

const selectColumns = `SELECT data FROM drafts`

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert stores the whole draft as JSON and mirrors the timestamps, in unix
// nanoseconds, into columns for the last_modified index.
func (r *SQLiteRepository) Upsert(ctx context.Context, d *models.OfflineDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft %s: %w", d.ID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO drafts (id, data, created_at, last_modified) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data,
			created_at = excluded.created_at, last_modified = excluded.last_modified
	`, d.ID, string(data), dbx.Nanos(d.CreatedAt), dbx.Nanos(d.LastModified))
	if err != nil {
		return fmt.Errorf("failed to upsert draft %s: %w", d.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, d *models.OfflineDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft %s: %w", d.ID, err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE drafts SET data = ?, created_at = ?, last_modified = ? WHERE id = ?`,
		string(data), dbx.Nanos(d.CreatedAt), dbx.Nanos(d.LastModified), d.ID)
	if err != nil {
		return fmt.Errorf("failed to update draft %s: %w", d.ID, err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.OfflineDraft, error) {
	d, err := scanDraft(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft %s: %w", id, err)
	}
	return d, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) All(ctx context.Context) iter.Seq2[*models.OfflineDraft, error] {
	return dbx.Iterate(ctx, r.db, scanDraft, selectColumns+` ORDER BY id`)
}

// ByLastModified breaks exact ties by insertion order, newest first.
func (r *SQLiteRepository) ByLastModified(ctx context.Context) iter.Seq2[*models.OfflineDraft, error] {
	return dbx.Iterate(ctx, r.db, scanDraft, selectColumns+` ORDER BY last_modified DESC, rowid DESC`)
}

func (r *SQLiteRepository) DeleteModifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE last_modified < ?`, dbx.Nanos(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale drafts: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drafts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count drafts: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM drafts`); err != nil {
		return fmt.Errorf("failed to clear drafts: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanDraft(s dbx.Scanner) (*models.OfflineDraft, error) {
	var data string
	if err := s.Scan(&data); err != nil {
		return nil, err
	}
	var d models.OfflineDraft
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &d, nil
}
