//go:build !linux

package entropy

import "crypto/rand"

func readSystem(p []byte) (int, error) {
	return rand.Read(p)
}
