package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OfflineDraft is a user-authored post that has not been published yet.
type OfflineDraft struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	Kind         int       `json:"kind"`
	TargetRelays []string  `json:"targetRelays,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// NewDraftID returns "draft_<unix millis>_<random>". IDs are never reused.
func NewDraftID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("draft_%d_%s", now.UnixMilli(), suffix)
}

func (d *OfflineDraft) Table() Table { return TableDrafts }
func (d *OfflineDraft) Key() string  { return d.ID }

func (d *OfflineDraft) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return invalid("draft id is required")
	}
	if d.CreatedAt.IsZero() || d.LastModified.IsZero() {
		return invalid("draft %s: timestamps are required", d.ID)
	}
	if d.LastModified.Before(d.CreatedAt) {
		return invalid("draft %s: lastModified precedes createdAt", d.ID)
	}
	d.TargetRelays = NormalizeSet(d.TargetRelays)
	return nil
}
