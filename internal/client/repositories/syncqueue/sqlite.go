package syncqueue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/dmitrijs2005/offlinefeed/internal/dbx"
)

const selectColumns = `SELECT id, created_at, payload FROM sync_queue`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, e *models.SyncQueueEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_queue (id, created_at, payload) VALUES (?, ?, ?)`,
		e.ID, dbx.Millis(e.CreatedAt), string(e.Payload))
	if err != nil {
		return fmt.Errorf("failed to append sync entry %s: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.SyncQueueEntry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync entry %s: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	n, err := r.DeleteByIDs(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	var total int64
	for _, id := range ids {
		res, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id)
		if err != nil {
			return total, fmt.Errorf("failed to delete sync entry %s: %w", id, err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to get rows affected: %w", err)
		}
		total += ra
	}
	return total, nil
}

// All iterates oldest first. Entries created in the same millisecond keep
// their append order: SQLite hands every new row a rowid above all live ones.
func (r *SQLiteRepository) All(ctx context.Context) iter.Seq2[*models.SyncQueueEntry, error] {
	return dbx.Iterate(ctx, r.db, scanEntry, selectColumns+` ORDER BY created_at, rowid`)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sync entries: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue`); err != nil {
		return fmt.Errorf("failed to clear sync queue: %w", err)
	}
	return nil
}

func scanEntry(s dbx.Scanner) (*models.SyncQueueEntry, error) {
	var (
		e         models.SyncQueueEntry
		createdAt int64
		payload   string
	)
	if err := s.Scan(&e.ID, &createdAt, &payload); err != nil {
		return nil, err
	}
	e.CreatedAt = dbx.FromMillis(createdAt)
	e.Payload = []byte(payload)
	return &e, nil
}
