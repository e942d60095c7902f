package entropy

import (
	"bytes"
	"crypto/sha512"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

var (
	errMockReaderNotConfigured = errors.New("mock reader not configured")
	errSourceDown              = errors.New("source down")
	errCloseFailed             = errors.New("close failed")
)

// mockReader implements io.Reader for testing.
type mockReader struct {
	readFunc  func(p []byte) (int, error)
	closeFunc func() error
}

func (m *mockReader) Read(p []byte) (int, error) {
	if m.readFunc != nil {
		return m.readFunc(p)
	}
	return 0, errMockReaderNotConfigured
}

type closingReader struct {
	*mockReader
}

func (c closingReader) Close() error {
	if c.closeFunc != nil {
		return c.closeFunc()
	}
	return nil
}

func constantReader(b byte) *mockReader {
	return &mockReader{readFunc: func(p []byte) (int, error) {
		for i := range p {
			p[i] = b
		}
		return len(p), nil
	}}
}

func TestNew_SystemSource(t *testing.T) {
	t.Parallel()

	c := New()
	a := make([]byte, 48)
	b := make([]byte, 48)

	n, err := c.Read(a)
	require.NoError(t, err)
	assert.Equal(t, 48, n)

	_, err = c.Read(b)
	require.NoError(t, err)

	assert.NotEqual(t, make([]byte, 48), a)
	assert.NotEqual(t, a, b, "consecutive blocks should differ")
}

func TestSystemReader(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 256)
	n, err := systemReader{}.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 256, n)
	assert.NotEqual(t, make([]byte, 256), buf)
}

func TestCollector_Deterministic(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{0x01}, MaxGather)
	dataSum := sha512.Sum512(data)

	// First block: header (id 0, len 64) plus the compressed poll.
	first := sha512.Sum512(append([]byte{0x00, BlockSize}, dataSum[:]...))
	wantFirst := sha512.Sum512(first[:])

	// Second block: previous state fed back, then the next poll.
	seed := append(append([]byte{}, first[:]...), 0x00, BlockSize)
	second := sha512.Sum512(append(seed, dataSum[:]...))
	wantSecond := sha512.Sum512(second[:])

	c := NewCollector()
	require.NoError(t, c.AddSource(Source{Name: "fixed", Reader: constantReader(0x01), Threshold: 32, Strong: true}))

	out := make([]byte, 100)
	n, err := c.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, wantFirst[:], out[:BlockSize])
	assert.Equal(t, wantSecond[:36], out[BlockSize:])

	// An identical collector reproduces the stream.
	other := NewCollector()
	require.NoError(t, other.AddSource(Source{Name: "fixed", Reader: constantReader(0x01), Threshold: 32, Strong: true}))
	again := make([]byte, 100)
	_, err = other.Read(again)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestCollector_ShortSourcePollsUntilThreshold(t *testing.T) {
	t.Parallel()

	var calls int
	src := &mockReader{readFunc: func(p []byte) (int, error) {
		calls++
		p[0] = byte(calls)
		return 1, nil
	}}

	c := NewCollector()
	require.NoError(t, c.AddSource(Source{Name: "trickle", Reader: src, Threshold: 10, Strong: true}))

	_, err := c.Read(make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
}

func TestCollector_WeakSourceDoesNotGate(t *testing.T) {
	t.Parallel()

	weakCalls := 0
	weak := &mockReader{readFunc: func(_ []byte) (int, error) {
		weakCalls++
		return 0, nil
	}}

	c := NewCollector()
	require.NoError(t, c.AddSource(Source{Name: "weak", Reader: weak, Threshold: 1000, Strong: false}))
	require.NoError(t, c.AddSource(Source{Name: "strong", Reader: constantReader(0x02), Threshold: 32, Strong: true}))

	_, err := c.Read(make([]byte, 16))
	require.NoError(t, err)
	assert.Equal(t, 1, weakCalls)
}

func TestCollector_Errors(t *testing.T) {
	t.Parallel()

	t.Run("no sources", func(t *testing.T) {
		t.Parallel()
		buf := []byte{1, 2, 3}
		n, err := NewCollector().Read(buf)
		require.ErrorIs(t, err, coreerr.ErrEntropyExhausted)
		assert.Equal(t, 0, n)
		assert.Equal(t, []byte{0, 0, 0}, buf)
	})

	t.Run("only weak sources", func(t *testing.T) {
		t.Parallel()
		c := NewCollector()
		require.NoError(t, c.AddSource(Source{Name: "weak", Reader: constantReader(3), Threshold: 1}))
		_, err := c.Read(make([]byte, 8))
		require.ErrorIs(t, err, coreerr.ErrEntropyExhausted)
	})

	t.Run("source failure", func(t *testing.T) {
		t.Parallel()
		c := NewCollector()
		require.NoError(t, c.AddSource(Source{
			Name:      "broken",
			Reader:    &mockReader{readFunc: func(_ []byte) (int, error) { return 0, errSourceDown }},
			Threshold: 32,
			Strong:    true,
		}))

		_, err := c.Read(make([]byte, 8))
		require.ErrorIs(t, err, coreerr.ErrEntropyExhausted)
		require.ErrorIs(t, err, errSourceDown)

		var ce *coreerr.CoreError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "broken", ce.Details["source"])
	})

	t.Run("unconfigured reader", func(t *testing.T) {
		t.Parallel()
		c := NewCollector()
		require.NoError(t, c.AddSource(Source{Name: "empty", Reader: &mockReader{}, Threshold: 1, Strong: true}))
		_, err := c.Read(make([]byte, 8))
		require.ErrorIs(t, err, errMockReaderNotConfigured)
	})

	t.Run("exhausted reader", func(t *testing.T) {
		t.Parallel()
		c := NewCollector()
		require.NoError(t, c.AddSource(Source{Name: "eof", Reader: bytes.NewReader(make([]byte, 40)), Threshold: 32, Strong: true}))

		_, err := c.Read(make([]byte, 8))
		require.NoError(t, err)

		_, err = c.Read(make([]byte, 8))
		require.ErrorIs(t, err, coreerr.ErrEntropyExhausted)
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("threshold never reached", func(t *testing.T) {
		t.Parallel()
		calls := 0
		c := NewCollector()
		require.NoError(t, c.AddSource(Source{
			Name:      "dry",
			Reader:    &mockReader{readFunc: func(_ []byte) (int, error) { calls++; return 0, nil }},
			Threshold: 1,
			Strong:    true,
		}))

		_, err := c.Read(make([]byte, 8))
		require.ErrorIs(t, err, coreerr.ErrEntropyExhausted)
		assert.Equal(t, MaxLoop, calls)
	})
}

func TestCollector_AddSource(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	require.ErrorIs(t, c.AddSource(Source{Name: "nil"}), coreerr.ErrInvalidInput)
	require.ErrorIs(t, c.AddSource(Source{Name: "zero", Reader: constantReader(1)}), coreerr.ErrInvalidInput)

	for i := 0; i < MaxSources; i++ {
		require.NoError(t, c.AddSource(Source{Name: string(rune('a' + i)), Reader: constantReader(1), Threshold: 1}))
	}
	require.ErrorIs(t, c.AddSource(Source{Name: "extra", Reader: constantReader(1), Threshold: 1}), coreerr.ErrInvalidInput)
}

func TestCollector_Update(t *testing.T) {
	t.Parallel()

	newFixed := func() *Collector {
		c := NewCollector()
		require.NoError(t, c.AddSource(Source{Name: "fixed", Reader: constantReader(0x05), Threshold: 32, Strong: true}))
		return c
	}

	plain := make([]byte, 32)
	_, err := newFixed().Read(plain)
	require.NoError(t, err)

	mixed := newFixed()
	mixed.Update([]byte("caller supplied context"))
	mixed.Update(nil)
	withUpdate := make([]byte, 32)
	_, err = mixed.Read(withUpdate)
	require.NoError(t, err)

	assert.NotEqual(t, plain, withUpdate)
}

func TestCollector_Gather(t *testing.T) {
	t.Parallel()

	calls := 0
	c := NewCollector()
	require.NoError(t, c.AddSource(Source{
		Name:      "counted",
		Reader:    &mockReader{readFunc: func(p []byte) (int, error) { calls++; return len(p), nil }},
		Threshold: 1,
		Strong:    true,
	}))

	require.NoError(t, c.Gather())
	require.NoError(t, c.Gather())
	assert.Equal(t, 2, calls)
}

func TestCollector_Close(t *testing.T) {
	t.Parallel()

	closed := 0
	c := NewCollector()
	require.NoError(t, c.AddSource(Source{
		Name:      "closer",
		Reader:    closingReader{&mockReader{closeFunc: func() error { closed++; return errCloseFailed }}},
		Threshold: 1,
		Strong:    true,
	}))
	require.NoError(t, c.AddSource(Source{Name: "plain", Reader: constantReader(1), Threshold: 1}))

	require.ErrorIs(t, c.Close(), errCloseFailed)
	assert.Equal(t, 1, closed)

	_, err := c.Read(make([]byte, 8))
	require.ErrorIs(t, err, coreerr.ErrEntropyExhausted)
}

func TestCollector_Concurrent(t *testing.T) {
	t.Parallel()

	c := New()
	var wg sync.WaitGroup
	for k := 0; k < 8; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 64)
			_, err := c.Read(buf)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
