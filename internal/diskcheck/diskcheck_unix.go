//go:build unix

package diskcheck

import (
	"golang.org/x/sys/unix"
)

// FreeBytes reports the free bytes available to unprivileged users on the volume holding dir.
func FreeBytes(dir string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, err
	}

	return uint64(stat.Bavail) * uint64(stat.Bsize), nil //nolint:gosec,unconvert
}
