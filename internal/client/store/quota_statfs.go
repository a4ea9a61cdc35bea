//go:build linux || darwin || freebsd

package store

import "golang.org/x/sys/unix"

func diskQuota(dir string) (available, total int64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, 0, err
	}
	bsize := int64(st.Bsize)
	return int64(st.Bavail) * bsize, int64(st.Blocks) * bsize, nil
}
