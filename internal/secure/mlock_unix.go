//go:build !windows

package secure

import (
	"golang.org/x/sys/unix"
)

// mlock pins data in RAM. Returns false if the kernel refused (RLIMIT_MEMLOCK).
func mlock(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return unix.Mlock(data) == nil
}

func munlock(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Munlock(data)
}
