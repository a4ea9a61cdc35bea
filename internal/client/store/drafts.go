package store

import (
	"context"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

func (s *Store) SaveDraft(ctx context.Context, d *models.OfflineDraft) error {
	return s.Put(ctx, models.TableDrafts, d)
}

// UpdateDraft replaces an existing draft and returns common.ErrNotFound if
// the id is absent.
func (s *Store) UpdateDraft(ctx context.Context, d *models.OfflineDraft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := s.ready(ctx); err != nil {
		return err
	}
	return mapErr(s.drafts.Update(ctx, d))
}

func (s *Store) GetDraft(ctx context.Context, id string) (*models.OfflineDraft, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.drafts.GetByID(ctx, id)
}

// ListDrafts returns every draft ordered by lastModified, newest first.
func (s *Store) ListDrafts(ctx context.Context) ([]*models.OfflineDraft, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var out []*models.OfflineDraft
	for d, err := range s.drafts.ByLastModified(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Store) DeleteDraft(ctx context.Context, id string) error {
	return s.Delete(ctx, models.TableDrafts, id)
}
