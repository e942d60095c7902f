// Package entropy implements an entropy collector: registered sources are
// polled into a SHA-512 accumulator until every strong source has delivered
// its threshold, and output blocks are derived from the accumulator state.
//
// The collector is the default seed source of the drbg package.
package entropy

import (
	"crypto/sha512"
	"errors"
	"hash"
	"io"
	"strconv"
	"sync"

	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

const (
	// BlockSize is the largest output produced per accumulation cycle.
	BlockSize = sha512.Size

	// MaxSources bounds the number of registered sources.
	MaxSources = 20

	// MaxLoop bounds the polling rounds per block before giving up.
	MaxLoop = 256

	// MaxGather is the largest read requested from a source per poll.
	MaxGather = 128

	// DefaultThreshold is the number of bytes the system source must
	// deliver before a block is released.
	DefaultThreshold = 32

	// manualSourceID tags data added through Update.
	manualSourceID = MaxSources
)

// Source is a pollable entropy input.
type Source struct {
	// Name identifies the source in errors.
	Name string

	// Reader is polled for at most MaxGather bytes per round.
	Reader io.Reader

	// Threshold is the minimum number of bytes to collect per block.
	Threshold int

	// Strong sources gate output: every strong source must reach its
	// threshold. At least one strong source is required.
	Strong bool
}

// Collector accumulates entropy from its sources. It is safe for concurrent
// use.
type Collector struct {
	mu        sync.Mutex
	sources   []Source
	collected []int
	acc       hash.Hash
}

// New returns a collector polling the operating system source.
func New() *Collector {
	c := NewCollector()
	// A fresh collector always has room for one source.
	_ = c.AddSource(Source{
		Name:      "system",
		Reader:    Reader,
		Threshold: DefaultThreshold,
		Strong:    true,
	})
	return c
}

// NewCollector returns a collector with no sources.
func NewCollector() *Collector {
	return &Collector{acc: sha512.New()}
}

// AddSource registers s.
func (c *Collector) AddSource(s Source) error {
	if s.Reader == nil {
		return coreerr.Wrap(coreerr.ErrInvalidInput, "entropy source %q has no reader", s.Name)
	}
	if s.Threshold < 1 {
		return coreerr.Wrap(coreerr.ErrInvalidInput, "entropy source %q threshold must be positive", s.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.sources) >= MaxSources {
		return coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{
			"reason":      "too many entropy sources",
			"max_sources": strconv.Itoa(MaxSources),
		})
	}

	c.sources = append(c.sources, s)
	c.collected = append(c.collected, 0)
	return nil
}

// Update mixes caller-provided data into the accumulator. It does not count
// towards any threshold.
func (c *Collector) Update(data []byte) {
	if len(data) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.accumulate(manualSourceID, data)
}

// Gather polls every source once.
func (c *Collector) Gather() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gather()
}

// Read fills p with entropy, one block of at most BlockSize bytes per
// accumulation cycle. It fails with ErrEntropyExhausted when a source errors,
// when no strong source is registered, or when the thresholds are not met
// within MaxLoop rounds.
func (c *Collector) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for n < len(p) {
		block, err := c.block()
		if err != nil {
			clear(p)
			return 0, err
		}
		n += copy(p[n:], block)
		clear(block)
	}
	return n, nil
}

// Close closes every source reader that implements io.Closer.
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, s := range c.sources {
		if closer, ok := s.Reader.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	c.sources = nil
	c.collected = nil
	c.acc.Reset()
	return errors.Join(errs...)
}

// block runs one accumulation cycle and returns BlockSize bytes.
func (c *Collector) block() ([]byte, error) {
	if !c.hasStrongSource() {
		return nil, coreerr.WithDetails(coreerr.ErrEntropyExhausted, map[string]string{
			"reason": "no strong entropy source",
		})
	}

	for round := 0; ; round++ {
		if round >= MaxLoop {
			return nil, coreerr.WithDetails(coreerr.ErrEntropyExhausted, map[string]string{
				"reason": "entropy thresholds not reached",
				"rounds": strconv.Itoa(MaxLoop),
			})
		}
		if err := c.gather(); err != nil {
			return nil, err
		}
		if c.thresholdsMet() {
			break
		}
	}

	// Emit H(H(acc)) and feed H(acc) back so the next block depends on
	// everything collected so far.
	sum := c.acc.Sum(nil)
	c.acc.Reset()
	_, _ = c.acc.Write(sum)
	out := sha512.Sum512(sum)
	clear(sum)

	for i := range c.collected {
		c.collected[i] = 0
	}
	return out[:], nil
}

func (c *Collector) gather() error {
	buf := make([]byte, MaxGather)
	defer clear(buf)

	for i, s := range c.sources {
		n, err := s.Reader.Read(buf)
		if n > 0 {
			c.accumulate(i, buf[:n])
			c.collected[i] += n
		}
		if err != nil && (n == 0 || !errors.Is(err, io.EOF)) {
			return coreerr.WithDetails(coreerr.WithCause(coreerr.ErrEntropyExhausted, err), map[string]string{
				"source": s.Name,
			})
		}
	}
	return nil
}

// accumulate absorbs a (source id, length) header followed by data. Inputs
// longer than BlockSize are compressed to their SHA-512 first.
func (c *Collector) accumulate(id int, data []byte) {
	if len(data) > BlockSize {
		sum := sha512.Sum512(data)
		data = sum[:]
	}
	_, _ = c.acc.Write([]byte{byte(id), byte(len(data))})
	_, _ = c.acc.Write(data)
}

func (c *Collector) hasStrongSource() bool {
	for _, s := range c.sources {
		if s.Strong {
			return true
		}
	}
	return false
}

func (c *Collector) thresholdsMet() bool {
	for i, s := range c.sources {
		if s.Strong && c.collected[i] < s.Threshold {
			return false
		}
	}
	return true
}
