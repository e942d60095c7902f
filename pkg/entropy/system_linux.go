//go:build linux

package entropy

import (
	"errors"

	"golang.org/x/sys/unix"
)

// readSystem fills p with getrandom(2), retrying on EINTR.
func readSystem(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := unix.Getrandom(p[total:], 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
