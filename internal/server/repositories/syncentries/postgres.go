package syncentries

import (
	"context"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, entries []*Entry) (int64, error) {
	const q = `INSERT INTO sync_entries (id, device_id, op, draft_id, payload, created_at, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING;`

	var inserted int64
	for _, e := range entries {
		res, err := r.db.ExecContext(ctx, q,
			e.ID, e.DeviceID, string(e.Op), e.DraftID, e.Payload, e.CreatedAt, e.ReceivedAt)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (r *PostgresRepository) ByDraft(ctx context.Context, draftID string) ([]*Entry, error) {
	const q = `SELECT id, device_id, op, draft_id, payload, created_at, received_at
		FROM sync_entries WHERE draft_id = $1 ORDER BY created_at, id;`

	var out []*Entry
	for e, err := range dbx.Iterate(ctx, r.db, scanEntry, q, draftID) {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_entries;`).Scan(&n)
	return n, err
}

func scanEntry(s dbx.Scanner) (*Entry, error) {
	var (
		e  Entry
		op string
	)
	if err := s.Scan(&e.ID, &e.DeviceID, &op, &e.DraftID, &e.Payload, &e.CreatedAt, &e.ReceivedAt); err != nil {
		return nil, err
	}
	e.Op = models.SyncOp(op)
	return &e, nil
}
