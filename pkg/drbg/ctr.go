package drbg

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"strconv"

	"github.com/mrz1836/cryptocore/internal/secure"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// CTR_DRBG parameters for AES-256 with a derivation function.
const (
	KeySize   = 32
	BlockSize = aes.BlockSize
	SeedLen   = KeySize + BlockSize

	// MaxRequest is the largest output of a single generate call. Longer
	// requests are split by Generator.
	MaxRequest = 1024

	// MaxInput is the largest additional input accepted per generate call.
	MaxInput = 256

	// MaxSeedInput bounds entropy plus personalization, and Update input.
	MaxSeedInput = 384
)

// BlockCipherFunc constructs the block cipher keyed with a KeySize key. The
// returned cipher must have a BlockSize block.
type BlockCipherFunc func(key []byte) (cipher.Block, error)

// ctrDRBG is the deterministic core. It holds Key || V in locked memory and
// knows nothing about entropy or reseed policy.
type ctrDRBG struct {
	newCipher BlockCipherFunc
	state     *secure.Bytes
	block     cipher.Block
}

func newCTRDRBG(newCipher BlockCipherFunc) (*ctrDRBG, error) {
	d := &ctrDRBG{newCipher: newCipher, state: secure.New(SeedLen)}
	if err := d.rekey(); err != nil {
		d.destroy()
		return nil, err
	}
	return d, nil
}

func (d *ctrDRBG) key() []byte { return d.state.Bytes()[:KeySize] }

func (d *ctrDRBG) v() []byte { return d.state.Bytes()[KeySize:] }

func (d *ctrDRBG) rekey() error {
	block, err := d.cipherFor(d.key())
	if err != nil {
		return err
	}
	d.block = block
	return nil
}

func (d *ctrDRBG) cipherFor(key []byte) (cipher.Block, error) {
	block, err := d.newCipher(key)
	if err != nil {
		return nil, coreerr.WithCause(coreerr.ErrInvalidInput, err)
	}
	if block.BlockSize() != BlockSize {
		return nil, coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{
			"reason":     "block cipher has wrong block size",
			"block_size": strconv.Itoa(block.BlockSize()),
		})
	}
	return block, nil
}

// instantiate resets Key and V to zero and absorbs seedMaterial
// (entropy || personalization).
func (d *ctrDRBG) instantiate(seedMaterial []byte) error {
	d.state.Zero()
	if err := d.rekey(); err != nil {
		return err
	}
	return d.reseed(seedMaterial)
}

// reseed absorbs seedMaterial (entropy || additional input).
func (d *ctrDRBG) reseed(seedMaterial []byte) error {
	seed, err := d.derive(seedMaterial)
	if err != nil {
		return err
	}
	defer secure.Wipe(seed)
	return d.update(seed)
}

// generate fills out (at most MaxRequest bytes). A non-empty additional
// input is derived and mixed in before and after producing output.
func (d *ctrDRBG) generate(out, additional []byte) error {
	if len(out) > MaxRequest {
		return coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{
			"requested":   strconv.Itoa(len(out)),
			"max_request": strconv.Itoa(MaxRequest),
		})
	}
	if len(additional) > MaxInput {
		return coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{
			"additional_input": strconv.Itoa(len(additional)),
			"max_input":        strconv.Itoa(MaxInput),
		})
	}

	add := make([]byte, SeedLen)
	defer secure.Wipe(add)
	if len(additional) > 0 {
		derived, err := d.derive(additional)
		if err != nil {
			return err
		}
		copy(add, derived)
		secure.Wipe(derived)
		if err := d.update(add); err != nil {
			return err
		}
	}

	var tmp [BlockSize]byte
	for off := 0; off < len(out); off += BlockSize {
		increment(d.v())
		d.block.Encrypt(tmp[:], d.v())
		copy(out[off:], tmp[:])
	}
	secure.Wipe(tmp[:])

	return d.update(add)
}

// update is the CTR_DRBG update function. data must be SeedLen bytes.
func (d *ctrDRBG) update(data []byte) error {
	tmp := make([]byte, SeedLen)
	defer secure.Wipe(tmp)

	for off := 0; off < SeedLen; off += BlockSize {
		increment(d.v())
		d.block.Encrypt(tmp[off:off+BlockSize], d.v())
	}
	for i := range tmp {
		tmp[i] ^= data[i]
	}

	copy(d.state.Bytes(), tmp)
	return d.rekey()
}

// derive is Block_Cipher_df: it compresses input of any length up to
// MaxSeedInput into SeedLen bytes.
func (d *ctrDRBG) derive(input []byte) ([]byte, error) {
	if len(input) > MaxSeedInput {
		return nil, coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{
			"input":          strconv.Itoa(len(input)),
			"max_seed_input": strconv.Itoa(MaxSeedInput),
		})
	}

	// IV block || L || N || input || 0x80, zero padded to whole blocks.
	n := BlockSize + 8 + len(input) + 1
	buf := make([]byte, (n+BlockSize-1)/BlockSize*BlockSize)
	defer secure.Wipe(buf)

	binary.BigEndian.PutUint32(buf[BlockSize:], uint32(len(input))) //nolint:gosec // bounded by MaxSeedInput
	binary.BigEndian.PutUint32(buf[BlockSize+4:], SeedLen)
	copy(buf[BlockSize+8:], input)
	buf[BlockSize+8+len(input)] = 0x80

	dfKey := make([]byte, KeySize)
	for i := range dfKey {
		dfKey[i] = byte(i)
	}
	block, err := d.cipherFor(dfKey)
	if err != nil {
		return nil, err
	}

	temp := make([]byte, SeedLen)
	defer secure.Wipe(temp)
	chain := make([]byte, BlockSize)

	// BCC over the buffer, once per output block with the IV counter in
	// the first block.
	for off := 0; off < SeedLen; off += BlockSize {
		clear(chain)
		for p := 0; p < len(buf); p += BlockSize {
			for i := range chain {
				chain[i] ^= buf[p+i]
			}
			block.Encrypt(chain, chain)
		}
		copy(temp[off:], chain)
		buf[3]++
	}

	block, err = d.cipherFor(temp[:KeySize])
	if err != nil {
		return nil, err
	}

	out := make([]byte, SeedLen)
	x := temp[KeySize:]
	for off := 0; off < SeedLen; off += BlockSize {
		block.Encrypt(x, x)
		copy(out[off:], x)
	}
	return out, nil
}

func (d *ctrDRBG) destroy() {
	d.block = nil
	d.state.Destroy()
}

// increment treats v as a big-endian counter.
func increment(v []byte) {
	for i := len(v) - 1; i >= 0; i-- {
		v[i]++
		if v[i] != 0 {
			return
		}
	}
}
