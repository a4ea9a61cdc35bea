package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/buckets"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
)

func isNotFound(err error) bool { return errors.Is(err, common.ErrNotFound) }

// cacheFirst returns a hit without touching the network and never
// revalidates it.
func (r *Router) cacheFirst(req *http.Request, bucket string) (*http.Response, bool, error) {
	key := buckets.RequestKey(req.Method, req.URL.String())
	if e := r.lookup(req.Context(), bucket, key); e != nil {
		return toResponse(req, e, true), true, nil
	}
	e, err := r.coalescedFetch(req, bucket, key)
	if err != nil {
		return nil, false, err
	}
	return toResponse(req, e, false), false, nil
}

// staleWhileRevalidate returns a hit immediately and refreshes it in the
// background. A miss waits for the network.
func (r *Router) staleWhileRevalidate(req *http.Request, bucket string) (*http.Response, bool, error) {
	key := buckets.RequestKey(req.Method, req.URL.String())
	if e := r.lookup(req.Context(), bucket, key); e != nil {
		r.revalidate(req, bucket, key)
		return toResponse(req, e, true), true, nil
	}
	e, err := r.coalescedFetch(req, bucket, key)
	if err != nil {
		return nil, false, err
	}
	return toResponse(req, e, false), false, nil
}

// revalidate starts a detached refresh. Its result is discarded except for
// the bucket write; failures are only logged.
func (r *Router) revalidate(req *http.Request, bucket, key string) {
	ctx := context.WithoutCancel(req.Context())
	if r.limiter != nil && !r.limiter.Allow() {
		r.log.Debug(ctx, "revalidation skipped by rate limit", "bucket", bucket, "key", key)
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if _, err := r.fetchAndStore(ctx, req, bucket, key); err != nil {
			r.log.Warn(ctx, "background refresh failed", "bucket", bucket, "key", key, "error", err)
		}
	}()
}

type fetchResult struct {
	entry *buckets.Entry
	err   error
}

// networkFirst races the fetch against the network timeout. On failure or
// timeout it falls back to the bucket. The losing fetch is not aborted: if it
// completes later, its response is still stored.
func (r *Router) networkFirst(req *http.Request, bucket string) (*http.Response, bool, error) {
	ctx := req.Context()
	key := buckets.RequestKey(req.Method, req.URL.String())

	done := make(chan fetchResult, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		e, err := r.fetchAndStore(context.WithoutCancel(ctx), req, bucket, key)
		done <- fetchResult{entry: e, err: err}
	}()

	timer := time.NewTimer(r.cfg.NetworkTimeout)
	defer timer.Stop()

	var netErr error
	select {
	case res := <-done:
		if res.err == nil {
			return toResponse(req, res.entry, false), false, nil
		}
		netErr = res.err
	case <-timer.C:
		netErr = fmt.Errorf("%w: %w after %s", common.ErrNetworkFailure, common.ErrNetworkTimeout, r.cfg.NetworkTimeout)
	case <-ctx.Done():
		netErr = ctx.Err()
	}

	if e := r.lookup(ctx, bucket, key); e != nil {
		r.log.Debug(ctx, "network failed, serving cached response", "bucket", bucket, "key", key, "error", netErr)
		return toResponse(req, e, true), true, nil
	}
	return nil, false, netErr
}
