package models

import (
	"strings"
	"time"
)

// PostPayload is the post body as received from relays. The cache layer only
// looks at ID and Author.
type PostPayload struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	Tags      []string  `json:"tags"`
	Kind      int       `json:"kind"`
	Signature *string   `json:"signature,omitempty"`
	Published *bool     `json:"published,omitempty"`
	Synced    *bool     `json:"synced,omitempty"`
}

// CachedPost is one row of the posts table.
type CachedPost struct {
	ID        string
	Data      PostPayload
	CachedAt  time.Time
	ExpiresAt time.Time
}

// NewCachedPost stamps p with cachedAt and an expiry of cachedAt+ttl.
func NewCachedPost(p PostPayload, cachedAt time.Time, ttl time.Duration) *CachedPost {
	return &CachedPost{ID: p.ID, Data: p, CachedAt: cachedAt, ExpiresAt: cachedAt.Add(ttl)}
}

// Expired reports whether the post must no longer be served at now.
func (p *CachedPost) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

func (p *CachedPost) Table() Table { return TablePosts }
func (p *CachedPost) Key() string  { return p.ID }

func (p *CachedPost) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return invalid("post id is required")
	}
	if p.Data.ID != p.ID {
		return invalid("post id %q does not match payload id %q", p.ID, p.Data.ID)
	}
	if strings.TrimSpace(p.Data.Author) == "" {
		return invalid("post %s: author is required", p.ID)
	}
	if !p.ExpiresAt.After(p.CachedAt) {
		return invalid("post %s: expiresAt must be after cachedAt", p.ID)
	}
	return nil
}
