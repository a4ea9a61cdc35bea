package coordinator

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/offlinefeed/internal/common"
)

// TriggerSync hands the pending queue to the executor. While offline it
// fails with common.ErrOffline without touching the queue. On success exactly
// the delivered entries are removed; on failure all of them stay for the next
// trigger. It returns the number of entries removed.
func (c *Coordinator) TriggerSync(ctx context.Context) (int, error) {
	if !c.conn.Online() {
		return 0, common.ErrOffline
	}
	if c.executor == nil {
		return 0, fmt.Errorf("no sync executor configured")
	}

	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	pending, err := c.store.PendingSync(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	if err := c.executor.Sync(ctx, pending); err != nil {
		c.log.Warn(ctx, "sync failed, entries kept", "pending", len(pending), "error", err)
		c.refresh(ctx)
		return 0, fmt.Errorf("sync %d entries: %w", len(pending), err)
	}

	ids := make([]string, 0, len(pending))
	for _, e := range pending {
		ids = append(ids, e.ID)
	}
	removed, err := c.store.RemoveSync(ctx, ids)
	if err != nil {
		return 0, err
	}
	c.log.Info(ctx, "sync complete", "removed", removed)
	c.refresh(ctx)
	return int(removed), nil
}
