package store

import (
	"context"
	"errors"
	"slices"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
)

// SavePost caches p, stamping it with the current time and the configured TTL.
func (s *Store) SavePost(ctx context.Context, p models.PostPayload) (*models.CachedPost, error) {
	cp := models.NewCachedPost(p, s.now(), s.cfg.PostTTL)
	if err := s.Put(ctx, models.TablePosts, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// GetPost returns a live post. An expired row is deleted on read and reported
// as common.ErrNotFound.
func (s *Store) GetPost(ctx context.Context, id string) (*models.CachedPost, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Expired(s.now()) {
		if err := s.posts.DeleteByID(ctx, id); err != nil && !errors.Is(err, common.ErrNotFound) {
			s.log.Warn(ctx, "lazy delete of expired post failed", "id", id, "error", err)
		}
		return nil, common.ErrNotFound
	}
	return p, nil
}

// ListPosts returns live posts, most recently cached first.
func (s *Store) ListPosts(ctx context.Context) ([]*models.CachedPost, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	now := s.now()
	var out []*models.CachedPost
	for p, err := range s.posts.ByExpiry(ctx) {
		if err != nil {
			return nil, err
		}
		if !p.Expired(now) {
			out = append(out, p)
		}
	}
	slices.Reverse(out)
	return out, nil
}

// PostsByAuthor returns an author's live posts using the author index.
func (s *Store) PostsByAuthor(ctx context.Context, author string) ([]*models.CachedPost, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	now := s.now()
	var out []*models.CachedPost
	for p, err := range s.posts.ByAuthor(ctx, author) {
		if err != nil {
			return nil, err
		}
		if !p.Expired(now) {
			out = append(out, p)
		}
	}
	return out, nil
}
