package models

import (
	"encoding/json"
	"strings"
	"time"
)

// CacheEntry holds ancillary cached values (relay metadata, profiles) that are
// neither posts nor drafts.
type CacheEntry struct {
	CacheKey  string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func (c *CacheEntry) Table() Table { return TableCache }
func (c *CacheEntry) Key() string  { return c.CacheKey }

func (c *CacheEntry) Validate() error {
	if strings.TrimSpace(c.CacheKey) == "" {
		return invalid("cache key is required")
	}
	if c.ExpiresAt.IsZero() {
		return invalid("cache entry %s: expiresAt is required", c.CacheKey)
	}
	if len(c.Payload) > 0 && !json.Valid(c.Payload) {
		return invalid("cache entry %s: payload is not valid JSON", c.CacheKey)
	}
	return nil
}
