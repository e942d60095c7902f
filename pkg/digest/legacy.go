//go:build legacyhash

package digest

import (
	//nolint:gosec,staticcheck // G501,SA1019: MD4 only for legacy interoperability
	"golang.org/x/crypto/md4"
	//nolint:gosec,staticcheck // G507,SA1019: RIPEMD160 only for legacy interoperability
	"golang.org/x/crypto/ripemd160"
)

// Legacy algorithms are opt-in: go build -tags legacyhash.
//
//nolint:gochecknoinits // Built-in backends register at package load
func init() {
	MustRegister(MD4, md4.New)
	MustRegister(RIPEMD160, ripemd160.New)
}
