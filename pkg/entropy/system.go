package entropy

import "io"

// Reader is the operating system entropy source polled by New. It is a
// package variable so tests can substitute a deterministic source.
//
//nolint:gochecknoglobals // Package-level entropy source is required for testability
var Reader io.Reader = systemReader{}

// systemReader reads from the kernel CSPRNG.
type systemReader struct{}

func (systemReader) Read(p []byte) (int, error) {
	return readSystem(p)
}
