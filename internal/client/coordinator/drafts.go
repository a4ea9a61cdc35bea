package coordinator

import (
	"context"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

// DraftInput is the user-editable part of a draft.
type DraftInput struct {
	Content      string
	Tags         []string
	Kind         int
	TargetRelays []string
}

// DraftPatch changes only the non-nil fields.
type DraftPatch struct {
	Content      *string
	Tags         *[]string
	Kind         *int
	TargetRelays *[]string
}

func (p DraftPatch) apply(d *models.OfflineDraft) {
	if p.Content != nil {
		d.Content = *p.Content
	}
	if p.Tags != nil {
		d.Tags = *p.Tags
	}
	if p.Kind != nil {
		d.Kind = *p.Kind
	}
	if p.TargetRelays != nil {
		d.TargetRelays = *p.TargetRelays
	}
}

// SaveDraft creates a draft with a fresh id and queues it for sync.
func (c *Coordinator) SaveDraft(ctx context.Context, in DraftInput) (*models.OfflineDraft, error) {
	now := c.now()
	d := &models.OfflineDraft{
		ID:           models.NewDraftID(now),
		Content:      in.Content,
		Tags:         in.Tags,
		Kind:         in.Kind,
		TargetRelays: in.TargetRelays,
		CreatedAt:    now,
		LastModified: now,
	}
	if err := c.store.SaveDraft(ctx, d); err != nil {
		return nil, err
	}
	if err := c.enqueue(ctx, models.SyncOpDraftSave, d.ID, d); err != nil {
		c.refresh(ctx)
		return nil, err
	}
	c.refresh(ctx)
	return d, nil
}

// UpdateDraft applies patch to an existing draft. A missing id returns
// common.ErrNotFound.
func (c *Coordinator) UpdateDraft(ctx context.Context, id string, patch DraftPatch) (*models.OfflineDraft, error) {
	d, err := c.store.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.apply(d)
	if now := c.now(); now.After(d.CreatedAt) {
		d.LastModified = now
	} else {
		d.LastModified = d.CreatedAt
	}
	if err := c.store.UpdateDraft(ctx, d); err != nil {
		return nil, err
	}
	if err := c.enqueue(ctx, models.SyncOpDraftUpdate, d.ID, d); err != nil {
		c.refresh(ctx)
		return nil, err
	}
	c.refresh(ctx)
	return d, nil
}

// DeleteDraft removes a draft. A missing id returns common.ErrNotFound.
func (c *Coordinator) DeleteDraft(ctx context.Context, id string) error {
	if err := c.store.DeleteDraft(ctx, id); err != nil {
		return err
	}
	if err := c.enqueue(ctx, models.SyncOpDraftDelete, id, nil); err != nil {
		c.refresh(ctx)
		return err
	}
	c.refresh(ctx)
	return nil
}

func (c *Coordinator) GetDraft(ctx context.Context, id string) (*models.OfflineDraft, error) {
	return c.store.GetDraft(ctx, id)
}

// ListDrafts returns drafts ordered by lastModified, newest first.
func (c *Coordinator) ListDrafts(ctx context.Context) ([]*models.OfflineDraft, error) {
	return c.store.ListDrafts(ctx)
}

func (c *Coordinator) enqueue(ctx context.Context, op models.SyncOp, id string, d *models.OfflineDraft) error {
	_, err := c.store.EnqueueSync(ctx, models.SyncPayload{Op: op, DraftID: id, Draft: d})
	if err != nil {
		c.log.Error(ctx, "enqueue sync failed", "op", op, "draft", id, "error", err)
	}
	return err
}
