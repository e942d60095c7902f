// Package metrics provides process-wide counters for digest and random
// generation activity. All counters are atomic and safe for concurrent use.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds cryptocore counters.
type Metrics struct {
	// Digest metrics
	digestsTotal  atomic.Int64
	digestErrors  atomic.Int64
	bytesDigested atomic.Int64
	fileDigests   atomic.Int64

	// Generator metrics
	generateCalls  atomic.Int64
	randomBytes    atomic.Int64
	reseedsTotal   atomic.Int64
	reseedFailures atomic.Int64
	reseedNanos    atomic.Int64
}

// Global is the process-wide metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordDigest records a finished (or failed) digest over n input bytes.
func (m *Metrics) RecordDigest(n int64, err error) {
	m.digestsTotal.Add(1)
	m.bytesDigested.Add(n)
	if err != nil {
		m.digestErrors.Add(1)
	}
}

// RecordFileDigest records a digest whose input was streamed from a file.
func (m *Metrics) RecordFileDigest(n int64, err error) {
	m.fileDigests.Add(1)
	m.RecordDigest(n, err)
}

// RecordGenerate records one internal DRBG request producing n bytes.
func (m *Metrics) RecordGenerate(n int) {
	m.generateCalls.Add(1)
	m.randomBytes.Add(int64(n))
}

// RecordReseed records a seeding or reseeding of a generator.
func (m *Metrics) RecordReseed(duration time.Duration, err error) {
	m.reseedsTotal.Add(1)
	m.reseedNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.reseedFailures.Add(1)
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	DigestsTotal   int64
	DigestErrors   int64
	BytesDigested  int64
	FileDigests    int64
	GenerateCalls  int64
	RandomBytes    int64
	ReseedsTotal   int64
	ReseedFailures int64
	ReseedNanos    int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		DigestsTotal:   m.digestsTotal.Load(),
		DigestErrors:   m.digestErrors.Load(),
		BytesDigested:  m.bytesDigested.Load(),
		FileDigests:    m.fileDigests.Load(),
		GenerateCalls:  m.generateCalls.Load(),
		RandomBytes:    m.randomBytes.Load(),
		ReseedsTotal:   m.reseedsTotal.Load(),
		ReseedFailures: m.reseedFailures.Load(),
		ReseedNanos:    m.reseedNanos.Load(),
	}
}

// ReseedsTotal returns the number of seed/reseed operations.
func (m *Metrics) ReseedsTotal() int64 {
	return m.reseedsTotal.Load()
}

// RandomBytes returns the number of random bytes produced.
func (m *Metrics) RandomBytes() int64 {
	return m.randomBytes.Load()
}

// ReseedLatencyAvgMs returns the average time spent drawing entropy, in
// milliseconds. Returns 0 if no reseed has happened.
func (m *Metrics) ReseedLatencyAvgMs() float64 {
	n := m.reseedsTotal.Load()
	if n == 0 {
		return 0
	}
	return float64(m.reseedNanos.Load()) / float64(n) / 1e6
}

// DigestErrorRate returns failed digests as a percentage (0-100).
func (m *Metrics) DigestErrorRate() float64 {
	total := m.digestsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.digestErrors.Load()) / float64(total) * 100
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.digestsTotal.Store(0)
	m.digestErrors.Store(0)
	m.bytesDigested.Store(0)
	m.fileDigests.Store(0)
	m.generateCalls.Store(0)
	m.randomBytes.Store(0)
	m.reseedsTotal.Store(0)
	m.reseedFailures.Store(0)
	m.reseedNanos.Store(0)
}
