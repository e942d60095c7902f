package digest

import (
	"hash"
	"strconv"

	"github.com/mrz1836/cryptocore/internal/metrics"
	"github.com/mrz1836/cryptocore/pkg/binview"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

type engineState uint8

const (
	stateIdle engineState = iota
	stateActive
	stateFinalized
)

// Engine is a reusable streaming digest computation. The zero value is an
// idle engine ready for Start.
//
// An Engine must not be used from multiple goroutines without external
// synchronization.
type Engine struct {
	alg     Algorithm
	h       hash.Hash
	size    int
	state   engineState
	written int64
}

// NewEngine returns an idle engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Start binds a fresh backend for alg, discarding any computation in progress.
// An unsupported algorithm leaves the engine untouched.
func (e *Engine) Start(alg Algorithm) error {
	h, size, err := newBackend(alg)
	if err != nil {
		return err
	}

	e.release()
	e.alg = alg
	e.h = h
	e.size = size
	e.state = stateActive
	e.written = 0
	return nil
}

// Update feeds chunk into the running computation. An empty chunk is a no-op
// and succeeds in every state; any other chunk fails with ErrInvalidState
// before Start or after Finish.
func (e *Engine) Update(chunk binview.View) error {
	return e.absorb(chunk.Bytes())
}

// Write implements io.Writer with the same semantics as Update.
func (e *Engine) Write(p []byte) (int, error) {
	if err := e.absorb(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (e *Engine) absorb(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if e.state != stateActive {
		return e.stateError("update")
	}

	// hash.Hash.Write never returns an error
	_, _ = e.h.Write(p)
	e.written += int64(len(p))
	return nil
}

// Finish has two modes.
//
// With an empty out (nil or zero length) it is a pure length query: it returns
// the digest size and leaves the computation untouched, so it may be called any
// number of times before the real Finish.
//
// Otherwise it finalizes the digest into out, returns the number of bytes
// written (always Size()) and leaves the engine finalized: Update and Finish
// fail with ErrInvalidState until the next Start. A buffer shorter than Size()
// fails with ErrBufferTooSmall and keeps the computation active.
func (e *Engine) Finish(out []byte) (int, error) {
	if e.state != stateActive {
		return 0, e.stateError("finish")
	}
	if len(out) == 0 {
		return e.size, nil
	}
	if len(out) < e.size {
		return 0, coreerr.WithDetails(coreerr.ErrBufferTooSmall, map[string]string{
			"required": strconv.Itoa(e.size),
			"provided": strconv.Itoa(len(out)),
		})
	}

	e.h.Sum(out[:0])
	metrics.Global.RecordDigest(e.written, nil)

	n := e.size
	e.release()
	e.state = stateFinalized
	return n, nil
}

// Sum queries the required size, allocates and finishes in one call.
func (e *Engine) Sum() ([]byte, error) {
	n, err := e.Finish(nil)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	if _, err := e.Finish(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Size returns the digest length of the running computation, 0 if none.
func (e *Engine) Size() int {
	if e.state != stateActive {
		return 0
	}
	return e.size
}

// Algorithm returns the algorithm of the running computation, None if none.
func (e *Engine) Algorithm() Algorithm {
	if e.state != stateActive {
		return None
	}
	return e.alg
}

// Close releases the backend and returns the engine to idle. It is always
// safe to call, including on an engine that was never started.
func (e *Engine) Close() {
	e.release()
	e.state = stateIdle
}

func (e *Engine) release() {
	if e.h != nil {
		e.h.Reset()
		e.h = nil
	}
	e.alg = None
	e.size = 0
}

func (e *Engine) stateError(op string) error {
	state := "idle"
	if e.state == stateFinalized {
		state = "finalized"
	}
	return coreerr.WithDetails(coreerr.ErrInvalidState, map[string]string{
		"operation": op,
		"state":     state,
	})
}
