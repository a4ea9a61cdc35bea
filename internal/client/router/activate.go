package router

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/offlinefeed/internal/client/buckets"
)

// BucketNames returns the bucket set of the router's generation.
func (r *Router) BucketNames() []string {
	var names []string
	for _, c := range Classes() {
		n := BucketName(c, r.cfg.Generation)
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}

// Activate creates the current generation's buckets and deletes every bucket
// outside that set, except the persistence probe. This is the only automatic
// cross-class eviction. It returns the deleted names.
func (r *Router) Activate(ctx context.Context) ([]string, error) {
	current := r.BucketNames()
	if err := r.buckets.Ensure(current...); err != nil {
		return nil, err
	}
	keep := append(current, buckets.ProbeBucket)

	existing, err := r.buckets.Names()
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, name := range existing {
		if slices.Contains(keep, name) {
			continue
		}
		if err := r.buckets.DeleteBucket(name); err != nil {
			return deleted, err
		}
		deleted = append(deleted, name)
	}
	if len(deleted) > 0 {
		r.log.Info(ctx, "evicted stale buckets", "generation", r.cfg.Generation, "buckets", deleted)
	}
	return deleted, nil
}
