// Package drbg provides a cryptographically secure random byte generator
// built on the NIST SP 800-90A CTR_DRBG (AES-256 with derivation function),
// seeded from an entropy collector.
//
// A Generator is not safe for concurrent use. Give each goroutine its own
// instance, ideally personalized with a distinct custom value:
//
//	g, err := drbg.New(drbg.WithCustom([]byte{workerID}))
//	if err != nil {
//		return err
//	}
//	defer g.Close()
//	key, err := g.Make(32)
package drbg

import (
	"crypto/aes"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/mrz1836/cryptocore/internal/metrics"
	"github.com/mrz1836/cryptocore/internal/secure"
	"github.com/mrz1836/cryptocore/pkg/entropy"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

const (
	// DefaultEntropyLength matches the SHA-512 entropy collector output.
	DefaultEntropyLength = 48

	// DefaultReseedInterval is the number of generate requests between
	// automatic reseeds.
	DefaultReseedInterval = 10000
)

// Logger receives debug messages about seeding. *config.Logger satisfies it.
type Logger interface {
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

type options struct {
	custom        []byte
	source        io.Reader
	entropyLength int
	interval      int
	prediction    bool
	newCipher     BlockCipherFunc
	logger        Logger
}

// Option configures a Generator.
type Option func(*options)

// WithCustom sets the personalization string mixed into the initial seed.
func WithCustom(custom []byte) Option {
	return func(o *options) { o.custom = custom }
}

// WithEntropySource replaces the default entropy collector.
func WithEntropySource(r io.Reader) Option {
	return func(o *options) { o.source = r }
}

// WithEntropyLength sets how many entropy bytes are drawn per (re)seed.
func WithEntropyLength(n int) Option {
	return func(o *options) { o.entropyLength = n }
}

// WithReseedInterval sets the number of requests between automatic reseeds.
func WithReseedInterval(n int) Option {
	return func(o *options) { o.interval = n }
}

// WithPredictionResistance reseeds before every request when enabled.
func WithPredictionResistance(enabled bool) Option {
	return func(o *options) { o.prediction = enabled }
}

// WithBlockCipher replaces the AES-256 block cipher constructor.
func WithBlockCipher(fn BlockCipherFunc) Option {
	return func(o *options) { o.newCipher = fn }
}

// WithLogger sets the debug logger.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// Generator is a seeded CTR_DRBG with an automatic reseed policy. A failed
// reseed, explicit or automatic, disables the instance for good.
type Generator struct {
	source        io.Reader
	entropyLength int
	interval      int
	prediction    bool
	logger        Logger

	drbg     *ctrDRBG
	requests int
	reseeds  int64
	closed   bool

	// failed holds the reseed error that made this instance unusable.
	failed error
}

// Stats describes the generator's reseed bookkeeping.
type Stats struct {
	// Requests is the number of generate requests since the last (re)seed.
	Requests int

	// Reseeds counts reseeds after instantiation, automatic or explicit.
	Reseeds int64

	EntropyLength        int
	ReseedInterval       int
	PredictionResistance bool
}

// New creates and seeds a generator. A failing entropy source yields
// ErrEntropyExhausted and no generator.
func New(opts ...Option) (*Generator, error) {
	o := options{
		entropyLength: DefaultEntropyLength,
		interval:      DefaultReseedInterval,
		newCipher:     aes.NewCipher,
		logger:        nopLogger{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateEntropyLength(o.entropyLength); err != nil {
		return nil, err
	}
	if err := validateInterval(o.interval); err != nil {
		return nil, err
	}
	if o.entropyLength+len(o.custom) > MaxSeedInput {
		return nil, seedInputError(o.entropyLength, len(o.custom))
	}
	if o.newCipher == nil {
		return nil, coreerr.Wrap(coreerr.ErrInvalidInput, "nil block cipher constructor")
	}
	if o.logger == nil {
		o.logger = nopLogger{}
	}
	if o.source == nil {
		o.source = entropy.New()
	}

	d, err := newCTRDRBG(o.newCipher)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		source:        o.source,
		entropyLength: o.entropyLength,
		interval:      o.interval,
		prediction:    o.prediction,
		logger:        o.logger,
		drbg:          d,
	}

	start := time.Now()
	seed, err := g.seedMaterial(o.custom)
	if err == nil {
		err = d.instantiate(seed)
		secure.Wipe(seed)
	}
	metrics.Global.RecordReseed(time.Since(start), err)
	if err != nil {
		d.destroy()
		return nil, err
	}

	g.logger.Debug("instantiated (entropy_length=%d, reseed_interval=%d, prediction_resistance=%t)",
		g.entropyLength, g.interval, g.prediction)
	return g, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Generator {
	g, err := New(opts...)
	if err != nil {
		panic("drbg: " + err.Error())
	}
	return g
}

// Fill fills p with random bytes, issuing one generate request per
// MaxRequest bytes. On failure p is zeroed.
func (g *Generator) Fill(p []byte) error {
	return g.FillWithInput(p, nil)
}

// FillWithInput is Fill with additional input mixed into every generate
// request. additional may be at most MaxInput bytes.
func (g *Generator) FillWithInput(p, additional []byte) error {
	if err := g.usable("fill"); err != nil {
		secure.Wipe(p)
		return err
	}
	if len(additional) > MaxInput {
		return coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{
			"additional_input": strconv.Itoa(len(additional)),
			"max_input":        strconv.Itoa(MaxInput),
		})
	}

	for off := 0; off < len(p); off += MaxRequest {
		end := min(off+MaxRequest, len(p))
		if err := g.request(p[off:end], additional); err != nil {
			secure.Wipe(p)
			return err
		}
	}
	return nil
}

// Read implements io.Reader. It always fills p completely or fails.
func (g *Generator) Read(p []byte) (int, error) {
	if err := g.Fill(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Make returns n random bytes, or nil and an error. A partially filled
// buffer is never returned.
func (g *Generator) Make(n int) ([]byte, error) {
	if n < 0 {
		return nil, coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{"length": strconv.Itoa(n)})
	}

	out := make([]byte, n)
	if err := g.Fill(out); err != nil {
		return nil, err
	}
	return out, nil
}

// MustMake is like Make but panics on error.
func (g *Generator) MustMake(n int) []byte {
	out, err := g.Make(n)
	if err != nil {
		panic("drbg: " + err.Error())
	}
	return out
}

// Reseed draws fresh entropy, mixes in custom (nil is valid) and resets the
// request counter. If the entropy source fails, the state is wiped and every
// later call returns ErrEntropyExhausted; the generator has to be recreated.
func (g *Generator) Reseed(custom []byte) error {
	if err := g.usable("reseed"); err != nil {
		return err
	}
	if g.entropyLength+len(custom) > MaxSeedInput {
		return seedInputError(g.entropyLength, len(custom))
	}
	return g.reseed(custom)
}

// Update mixes additional into the state without drawing entropy or
// touching the request counter. Empty input is a no-op.
func (g *Generator) Update(additional []byte) error {
	if err := g.usable("update"); err != nil {
		return err
	}
	if len(additional) == 0 {
		return nil
	}
	if len(additional) > MaxSeedInput {
		return coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{
			"input":          strconv.Itoa(len(additional)),
			"max_seed_input": strconv.Itoa(MaxSeedInput),
		})
	}

	seed, err := g.drbg.derive(additional)
	if err != nil {
		return err
	}
	defer secure.Wipe(seed)
	return g.drbg.update(seed)
}

// SetEntropyLength changes the entropy drawn by subsequent reseeds.
func (g *Generator) SetEntropyLength(n int) error {
	if err := validateEntropyLength(n); err != nil {
		return err
	}
	g.entropyLength = n
	return nil
}

// SetReseedInterval changes the automatic reseed interval. A counter already
// at or past the new interval reseeds on the next request.
func (g *Generator) SetReseedInterval(n int) error {
	if err := validateInterval(n); err != nil {
		return err
	}
	g.interval = n
	return nil
}

// SetPredictionResistance toggles reseeding before every request.
func (g *Generator) SetPredictionResistance(enabled bool) {
	g.prediction = enabled
}

// Stats returns the current reseed bookkeeping.
func (g *Generator) Stats() Stats {
	return Stats{
		Requests:             g.requests,
		Reseeds:              g.reseeds,
		EntropyLength:        g.entropyLength,
		ReseedInterval:       g.interval,
		PredictionResistance: g.prediction,
	}
}

// Close zeroizes the state and closes the entropy source if it is an
// io.Closer. Further calls fail with ErrInvalidState.
func (g *Generator) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	g.drbg.destroy()

	if closer, ok := g.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (g *Generator) request(out, additional []byte) error {
	if g.prediction || g.requests >= g.interval {
		if err := g.reseed(additional); err != nil {
			return err
		}
		// Consumed by the reseed.
		additional = nil
	}

	if err := g.drbg.generate(out, additional); err != nil {
		return err
	}
	g.requests++
	metrics.Global.RecordGenerate(len(out))
	return nil
}

func (g *Generator) reseed(additional []byte) error {
	start := time.Now()
	seed, err := g.seedMaterial(additional)
	if err == nil {
		err = g.drbg.reseed(seed)
		secure.Wipe(seed)
	}
	metrics.Global.RecordReseed(time.Since(start), err)
	if err != nil {
		// The old state must not outlive a failed reseed.
		g.failed = err
		g.drbg.destroy()
		g.logger.Debug("reseed failed, generator disabled: %v", err)
		return err
	}

	g.requests = 0
	g.reseeds++
	g.logger.Debug("reseeded (count=%d)", g.reseeds)
	return nil
}

// seedMaterial returns entropy || extra.
func (g *Generator) seedMaterial(extra []byte) ([]byte, error) {
	seed := make([]byte, g.entropyLength, g.entropyLength+len(extra))
	if _, err := io.ReadFull(g.source, seed); err != nil {
		secure.Wipe(seed)
		if errors.Is(err, coreerr.ErrEntropyExhausted) {
			return nil, err
		}
		return nil, coreerr.WithCause(coreerr.ErrEntropyExhausted, err)
	}
	return append(seed, extra...), nil
}

func validateEntropyLength(n int) error {
	if n < 1 || n > MaxSeedInput {
		return coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{
			"entropy_length": strconv.Itoa(n),
			"max":            strconv.Itoa(MaxSeedInput),
		})
	}
	return nil
}

func validateInterval(n int) error {
	if n < 1 {
		return coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{
			"reseed_interval": strconv.Itoa(n),
		})
	}
	return nil
}

func seedInputError(entropyLength, customLength int) error {
	return coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{
		"entropy_length": strconv.Itoa(entropyLength),
		"custom_length":  strconv.Itoa(customLength),
		"max_seed_input": strconv.Itoa(MaxSeedInput),
	})
}

// usable returns nil when op may run. A closed generator fails with
// ErrInvalidState; one whose reseed failed keeps failing with
// ErrEntropyExhausted until it is recreated.
func (g *Generator) usable(op string) error {
	if g.closed {
		return closedError(op)
	}
	if g.failed != nil {
		return coreerr.WithDetails(coreerr.WithCause(coreerr.ErrEntropyExhausted, g.failed), map[string]string{
			"operation": op,
			"state":     "failed",
		})
	}
	return nil
}

func closedError(op string) error {
	return coreerr.WithDetails(coreerr.ErrInvalidState, map[string]string{
		"operation": op,
		"state":     "closed",
	})
}
