//go:build !linux && !darwin && !freebsd

package store

import "errors"

func diskQuota(string) (int64, int64, error) {
	return 0, 0, errors.New("disk quota not supported on this platform")
}
