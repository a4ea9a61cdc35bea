// Package client talks to the sync server.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (Pinger, SyncExecutor, Client) consumed by
//     the connectivity monitor and the coordinator.
//  2. An HTTP implementation (HTTPClient): GET /api/ping for reachability and
//     POST /api/sync with the pending queue as JSON.
//
// # Error Handling
//
// Transport failures and 5xx answers match ErrUnavailable; 4xx answers to a
// sync match ErrRejected. Both leave the queue untouched.
//
// HTTPClient deliberately uses its own transport rather than the caching
// router: a ping answered from cache would report a dead server as alive.
package client
