package client

import (
	"context"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

// Pinger reports whether the sync server is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncExecutor delivers queued mutations. A nil error means every entry was
// accepted and may be removed from the queue; any error means none were and
// the whole batch is retried on the next trigger.
type SyncExecutor interface {
	Sync(ctx context.Context, entries []*models.SyncQueueEntry) error
}

// Client is the full server contract used by the coordinator.
type Client interface {
	Pinger
	SyncExecutor
	Close() error
}
