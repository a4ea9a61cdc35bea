package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/dmitrijs2005/offlinefeed/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.PreferenceRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, `SELECT id, data FROM preferences WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences[%s]: %w", id, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, rec *models.PreferenceRecord) error {
	data, err := json.Marshal(rec.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences[%s]: %w", rec.ID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO preferences (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, rec.ID, string(data))
	if err != nil {
		return fmt.Errorf("failed to set preferences[%s]: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM preferences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete preferences[%s]: %w", id, err)
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

func (r *SQLiteRepository) All(ctx context.Context) iter.Seq2[*models.PreferenceRecord, error] {
	return dbx.Iterate(ctx, r.db, scanRecord, `SELECT id, data FROM preferences ORDER BY id`)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM preferences`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count preferences: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM preferences`)
	if err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}
	return nil
}

func scanRecord(s dbx.Scanner) (*models.PreferenceRecord, error) {
	var (
		rec  models.PreferenceRecord
		data string
	)
	if err := s.Scan(&rec.ID, &data); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &rec.Preferences); err != nil {
		return nil, fmt.Errorf("failed to decode preferences[%s]: %w", rec.ID, err)
	}
	return &rec, nil
}
