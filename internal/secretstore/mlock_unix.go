//go:build !windows

package secretstore

import "golang.org/x/sys/unix"

// mlock attempts to lock the memory region containing data. Returns true
// on success; a failure (e.g. RLIMIT_MEMLOCK exceeded) just leaves the
// memory unlocked rather than being treated as fatal.
func mlock(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return unix.Mlock(data) == nil
}

// munlock unlocks the memory region.
func munlock(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Munlock(data)
}
