package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinels_AreDistinctAndWrappable(t *testing.T) {
	all := []error{
		ErrStorageUnavailable, ErrNotFound, ErrQuotaExceeded, ErrInvalidRecord,
		ErrNetworkFailure, ErrNetworkTimeout, ErrOffline,
	}
	for i, a := range all {
		wrapped := fmt.Errorf("op failed: %w", a)
		if !errors.Is(wrapped, a) {
			t.Fatalf("wrapped %v must match itself", a)
		}
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Fatalf("%v must not match %v", a, b)
			}
		}
	}
}
