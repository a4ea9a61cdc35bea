package coordinator

import (
	"context"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

func (c *Coordinator) SavePreferences(ctx context.Context, p models.Preferences) error {
	if err := c.store.SavePreferences(ctx, p); err != nil {
		return err
	}
	c.refresh(ctx)
	return nil
}

// GetPreferences returns the stored preferences or the defaults.
func (c *Coordinator) GetPreferences(ctx context.Context) (models.Preferences, error) {
	return c.store.GetPreferences(ctx)
}

func (c *Coordinator) CachePost(ctx context.Context, p models.PostPayload) (*models.CachedPost, error) {
	cp, err := c.store.SavePost(ctx, p)
	if err != nil {
		return nil, err
	}
	c.refresh(ctx)
	return cp, nil
}

// GetCachedPost returns a live post or common.ErrNotFound.
func (c *Coordinator) GetCachedPost(ctx context.Context, id string) (*models.PostPayload, error) {
	cp, err := c.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return &cp.Data, nil
}

func (c *Coordinator) ListCachedPosts(ctx context.Context) ([]models.PostPayload, error) {
	cps, err := c.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PostPayload, 0, len(cps))
	for _, cp := range cps {
		out = append(out, cp.Data)
	}
	return out, nil
}

// Cleanup runs one expiry pass now.
func (c *Coordinator) Cleanup(ctx context.Context) (int64, error) {
	rep, err := c.store.CleanupExpired(ctx, c.now())
	if err != nil {
		return 0, err
	}
	c.refresh(ctx)
	return rep.Total(), nil
}

// ClearAllData empties every table and republishes the snapshot.
func (c *Coordinator) ClearAllData(ctx context.Context) error {
	if err := c.store.ClearAll(ctx); err != nil {
		return err
	}
	c.refresh(ctx)
	return nil
}
