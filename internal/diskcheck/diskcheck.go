// Package diskcheck verifies that a volume has enough free space before the simulator writes its log.
package diskcheck

import (
	"errors"
	"fmt"
)

// ErrInsufficientDiskSpace is returned when the volume holds less free space than required.
var ErrInsufficientDiskSpace = errors.New("insufficient free disk space")

// ErrUnsupportedPlatform is returned by FreeBytes on platforms without a free space query.
var ErrUnsupportedPlatform = errors.New("free disk space query not supported on this platform")

const bytesPerMB = 1024 * 1024

// FreeSpaceFunc reports the free bytes available to the current user on the volume holding dir.
type FreeSpaceFunc func(dir string) (uint64, error)

// EnsureFreeSpace returns a wrapped ErrInsufficientDiskSpace if the volume holding dir has less than minBytes free.
func EnsureFreeSpace(dir string, minBytes uint64) error {
	return Check(FreeBytes, dir, minBytes)
}

// Check is EnsureFreeSpace with an explicit free space query.
func Check(free FreeSpaceFunc, dir string, minBytes uint64) error {
	available, err := free(dir)
	if err != nil {
		return fmt.Errorf("checking free disk space of %s: %w", dir, err)
	}

	if available < minBytes {
		return fmt.Errorf(
			"%w: %d MB available in %s, at least %d MB required",
			ErrInsufficientDiskSpace, available/bytesPerMB, dir, MB(minBytes),
		)
	}

	return nil
}

// MB converts bytes to whole megabytes, rounding up.
func MB(bytes uint64) uint64 {
	return (bytes + bytesPerMB - 1) / bytesPerMB
}

// Bytes converts megabytes to bytes.
func Bytes(mb uint64) uint64 {
	return mb * bytesPerMB
}
