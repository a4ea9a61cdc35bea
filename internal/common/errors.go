// Package common defines shared constants and sentinel errors used across
// the store, router, prober and coordinator. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNotFound           = errors.New("not found")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrInvalidRecord      = errors.New("invalid record")

	// Fetch-layer errors.
	ErrNetworkFailure = errors.New("network failure")
	ErrNetworkTimeout = errors.New("network timeout")

	// Coordinator errors.
	ErrOffline = errors.New("offline")
)
