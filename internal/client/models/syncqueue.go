package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SyncOp names the mutation a queue entry represents.
type SyncOp string

const (
	SyncOpDraftSave   SyncOp = "draft.save"
	SyncOpDraftUpdate SyncOp = "draft.update"
	SyncOpDraftDelete SyncOp = "draft.delete"
)

// SyncQueueEntry is a pending outbound mutation. Entries are appended and
// later removed by a successful sync; they are never edited in place.
type SyncQueueEntry struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	Payload   json.RawMessage `json:"payload"`
}

// SyncPayload is the payload written for draft mutations.
type SyncPayload struct {
	Op      SyncOp        `json:"op"`
	DraftID string        `json:"draftId"`
	Draft   *OfflineDraft `json:"draft,omitempty"`
}

// NewSyncQueueEntry encodes payload into a fresh entry.
func NewSyncQueueEntry(createdAt time.Time, payload any) (*SyncQueueEntry, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &SyncQueueEntry{ID: uuid.NewString(), CreatedAt: createdAt, Payload: b}, nil
}

func (s *SyncQueueEntry) Table() Table { return TableSyncQueue }
func (s *SyncQueueEntry) Key() string  { return s.ID }

func (s *SyncQueueEntry) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return invalid("sync entry id is required")
	}
	if s.CreatedAt.IsZero() {
		return invalid("sync entry %s: createdAt is required", s.ID)
	}
	if !json.Valid(s.Payload) {
		return invalid("sync entry %s: payload is not valid JSON", s.ID)
	}
	return nil
}

// Known reports whether op is one the server understands.
func (op SyncOp) Known() bool {
	switch op {
	case SyncOpDraftSave, SyncOpDraftUpdate, SyncOpDraftDelete:
		return true
	}
	return false
}

// SyncBatch is the wire body of a sync request.
type SyncBatch struct {
	Entries []*SyncQueueEntry `json:"entries"`
}

// SyncResult is the server's answer to an accepted batch.
type SyncResult struct {
	Accepted   int64 `json:"accepted"`
	Duplicates int64 `json:"duplicates"`
}
