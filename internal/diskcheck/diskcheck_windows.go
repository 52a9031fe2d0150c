//go:build windows

package diskcheck

import (
	"golang.org/x/sys/windows"
)

// FreeBytes reports the free bytes available to the calling user on the volume holding dir.
func FreeBytes(dir string) (uint64, error) {
	path, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return 0, err
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(path, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return 0, err
	}

	return freeBytesAvailable, nil
}
