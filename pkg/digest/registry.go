package digest

import (
	"fmt"
	"hash"
	"sort"
	"sync"

	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// Factory creates a fresh backend. The returned hash.Hash is the transform
// capability the engine drives: Reset, Write (absorb) and Sum (finalize).
type Factory func() hash.Hash

type backend struct {
	size    int
	factory Factory
}

//nolint:gochecknoglobals // Backend registry shared by all engines
var (
	registry = make(map[Algorithm]backend)
	mu       sync.RWMutex
)

// Register installs the backend for alg. The digest size is taken from the
// backend itself. Registering an algorithm twice is an error; call Unregister
// first to swap implementations.
func Register(alg Algorithm, factory Factory) error {
	if _, named := algorithmNames[alg]; !named {
		return coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{"algorithm": alg.String()})
	}
	if factory == nil {
		return coreerr.Wrap(coreerr.ErrInvalidInput, "nil factory for %s", alg)
	}

	size := factory().Size()
	if size < 1 {
		return coreerr.Wrap(coreerr.ErrInvalidInput, "backend for %s reports size %d", alg, size)
	}

	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[alg]; exists {
		return coreerr.Wrap(coreerr.ErrInvalidInput, "digest algorithm %s already registered", alg)
	}

	registry[alg] = backend{size: size, factory: factory}
	return nil
}

// MustRegister is like Register but panics on error. Intended for init().
func MustRegister(alg Algorithm, factory Factory) {
	if err := Register(alg, factory); err != nil {
		panic(fmt.Sprintf("failed to register digest algorithm %s: %v", alg, err))
	}
}

// Unregister removes the backend for alg.
func Unregister(alg Algorithm) error {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[alg]; !exists {
		return coreerr.WithDetails(coreerr.ErrUnsupportedAlgorithm, map[string]string{"algorithm": alg.String()})
	}

	delete(registry, alg)
	return nil
}

// Size returns the digest length of alg, or 0 when it is not available.
func Size(alg Algorithm) int {
	mu.RLock()
	defer mu.RUnlock()
	return registry[alg].size
}

// IsSupported reports whether alg has a registered backend.
func IsSupported(alg Algorithm) bool {
	return Size(alg) > 0
}

// Supported returns the available algorithms in identifier order.
func Supported() []Algorithm {
	mu.RLock()
	defer mu.RUnlock()

	algorithms := make([]Algorithm, 0, len(registry))
	for alg := range registry {
		algorithms = append(algorithms, alg)
	}
	sort.Slice(algorithms, func(i, j int) bool { return algorithms[i] < algorithms[j] })
	return algorithms
}

// newBackend instantiates the backend for alg.
func newBackend(alg Algorithm) (hash.Hash, int, error) {
	mu.RLock()
	b, ok := registry[alg]
	mu.RUnlock()

	if !ok {
		return nil, 0, coreerr.WithDetails(coreerr.ErrUnsupportedAlgorithm, map[string]string{"algorithm": alg.String()})
	}
	return b.factory(), b.size, nil
}
