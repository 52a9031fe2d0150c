//go:build !unix && !windows

package diskcheck

// FreeBytes always fails with ErrUnsupportedPlatform.
func FreeBytes(string) (uint64, error) {
	return 0, ErrUnsupportedPlatform
}
