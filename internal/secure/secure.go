// Package secure holds key material in memory that is locked against swapping
// where the platform allows it and is zeroed explicitly when released.
package secure

import (
	"runtime"
	"sync"
)

// Bytes is a fixed-size buffer for sensitive data such as DRBG key and
// counter state. The memory is mlocked when possible and wiped on Destroy.
type Bytes struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// New allocates a zeroed buffer of the given size.
// Locking failures are tolerated; IsLocked reports the outcome.
func New(size int) *Bytes {
	b := &Bytes{data: make([]byte, size)}
	b.locked = mlock(b.data)

	// Wipe even if Destroy is never called
	runtime.SetFinalizer(b, func(s *Bytes) {
		s.Destroy()
	})

	return b
}

// Bytes returns the underlying slice, or nil once destroyed.
func (s *Bytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Len returns the buffer size, 0 once destroyed.
func (s *Bytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// IsLocked returns whether the memory is mlocked.
func (s *Bytes) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Zero wipes the contents but keeps the buffer usable.
func (s *Bytes) Zero() {
	s.mu.Lock()
	defer s.mu.Unlock()
	Wipe(s.data)
}

// Destroy wipes and unlocks the memory. Safe to call multiple times.
func (s *Bytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}

	Wipe(s.data)
	if s.locked {
		munlock(s.data)
		s.locked = false
	}
	s.data = nil

	runtime.SetFinalizer(s, nil)
}

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	clear(b)
}
