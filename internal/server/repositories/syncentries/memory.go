package syncentries

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps entries in process memory. It backs the server when
// no database DSN is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: map[string]*Entry{}}
}

func (r *MemoryRepository) Insert(_ context.Context, entries []*Entry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var inserted int64
	for _, e := range entries {
		if _, ok := r.entries[e.ID]; ok {
			continue
		}
		cp := *e
		r.entries[e.ID] = &cp
		inserted++
	}
	return inserted, nil
}

func (r *MemoryRepository) ByDraft(_ context.Context, draftID string) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Entry
	for _, e := range r.entries {
		if e.DraftID == draftID {
			cp := *e
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *Entry) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.entries)), nil
}
