package digest

import (
	"errors"
	"io"
	"os"

	"github.com/mrz1836/cryptocore/internal/metrics"
	"github.com/mrz1836/cryptocore/pkg/binview"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// FileChunkSize is the read size used when streaming files and readers.
const FileChunkSize = 1024

// MakeHash digests input in a single call.
func MakeHash(input binview.View, alg Algorithm) ([]byte, error) {
	var e Engine
	defer e.Close()

	if err := e.Start(alg); err != nil {
		return nil, err
	}
	if err := e.Update(input); err != nil {
		return nil, err
	}
	return e.Sum()
}

// MakeHashInto digests input into out and returns the number of bytes
// written. As with Engine.Finish, an empty out only reports the required size.
func MakeHashInto(input binview.View, alg Algorithm, out []byte) (int, error) {
	var e Engine
	defer e.Close()

	if err := e.Start(alg); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return e.Finish(nil)
	}
	if err := e.Update(input); err != nil {
		return 0, err
	}
	return e.Finish(out)
}

// SumSHA1 returns the SHA-1 digest of input.
func SumSHA1(input binview.View) ([]byte, error) {
	return MakeHash(input, SHA1)
}

// SumSHA256 returns the SHA-256 digest of input.
func SumSHA256(input binview.View) ([]byte, error) {
	return MakeHash(input, SHA256)
}

// SumSHA512 returns the SHA-512 digest of input.
func SumSHA512(input binview.View) ([]byte, error) {
	return MakeHash(input, SHA512)
}

// MakeFileHash digests the file at path, streaming it in FileChunkSize reads.
// Open and read failures are reported as ErrIO.
func MakeFileHash(path string, alg Algorithm) ([]byte, error) {
	size := Size(alg)
	if size == 0 {
		_, _, err := newBackend(alg)
		return nil, err
	}

	out := make([]byte, size)
	if _, err := MakeFileHashInto(path, alg, out); err != nil {
		return nil, err
	}
	return out, nil
}

// MakeFileHashInto digests the file at path into out. An empty out only
// reports the required size and does not touch the file.
func MakeFileHashInto(path string, alg Algorithm, out []byte) (int, error) {
	var e Engine
	defer e.Close()

	if err := e.Start(alg); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return e.Finish(nil)
	}
	if len(out) < e.Size() {
		return e.Finish(out)
	}

	// #nosec G304 -- digesting caller-named files is the purpose of this function
	f, err := os.Open(path)
	if err != nil {
		metrics.Global.RecordFileDigest(0, err)
		return 0, coreerr.WithDetails(coreerr.WithCause(coreerr.ErrIO, err), map[string]string{"path": path})
	}
	defer func() { _ = f.Close() }()

	n, err := stream(&e, f)
	if err != nil {
		metrics.Global.RecordFileDigest(n, err)
		return 0, coreerr.WithDetails(err, map[string]string{"path": path})
	}

	metrics.Global.RecordFileDigest(n, nil)
	return e.Finish(out)
}

// MakeReaderHash digests everything readable from r.
func MakeReaderHash(r io.Reader, alg Algorithm) ([]byte, error) {
	var e Engine
	defer e.Close()

	if err := e.Start(alg); err != nil {
		return nil, err
	}
	if _, err := stream(&e, r); err != nil {
		return nil, err
	}
	return e.Sum()
}

// stream copies r into e in FileChunkSize pieces.
func stream(e *Engine, r io.Reader) (int64, error) {
	buf := make([]byte, FileChunkSize)
	var total int64

	for {
		n, err := r.Read(buf)
		if n > 0 {
			if uerr := e.Update(binview.FromBytes(buf[:n])); uerr != nil {
				return total, uerr
			}
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, coreerr.WithCause(coreerr.ErrIO, err)
		}
	}
}
