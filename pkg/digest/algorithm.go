// Package digest implements a streaming, algorithm-agnostic message digest
// engine on top of pluggable hash.Hash backends.
//
// An Engine is started with an Algorithm, fed any number of chunks and then
// finished into a caller-provided buffer:
//
//	var e digest.Engine
//	if err := e.Start(digest.SHA256); err != nil {
//		return err
//	}
//	for _, chunk := range chunks {
//		if err := e.Update(binview.FromBytes(chunk)); err != nil {
//			return err
//		}
//	}
//	sum, err := e.Sum()
//
// The result is independent of how the input was split into chunks.
// MakeHash and MakeFileHash wrap the same sequence into a single call.
package digest

import (
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// Algorithm identifies a digest algorithm.
type Algorithm int

// Supported identifiers. MD4 and RIPEMD160 are only available in binaries
// built with the legacyhash tag; MD2 has no backend and is never available.
const (
	None Algorithm = iota
	MD2
	MD4
	MD5
	SHA1
	SHA224
	SHA256
	SHA384
	SHA512
	RIPEMD160
	SHA3_224
	SHA3_256
	SHA3_384
	SHA3_512
	Keccak256
	BLAKE2b256
	BLAKE2b512
	BLAKE3
)

// MaxSuggestionDistance bounds how different a misspelled name may be from
// the suggested algorithm.
const MaxSuggestionDistance = 2

//nolint:gochecknoglobals // Static name table
var algorithmNames = map[Algorithm]string{
	MD2:        "md2",
	MD4:        "md4",
	MD5:        "md5",
	SHA1:       "sha1",
	SHA224:     "sha224",
	SHA256:     "sha256",
	SHA384:     "sha384",
	SHA512:     "sha512",
	RIPEMD160:  "ripemd160",
	SHA3_224:   "sha3-224",
	SHA3_256:   "sha3-256",
	SHA3_384:   "sha3-384",
	SHA3_512:   "sha3-512",
	Keccak256:  "keccak256",
	BLAKE2b256: "blake2b-256",
	BLAKE2b512: "blake2b-512",
	BLAKE3:     "blake3",
}

// Known returns every named identifier in declaration order, including
// those without a backend in this binary.
func Known() []Algorithm {
	algs := make([]Algorithm, 0, len(algorithmNames))
	for alg := MD2; alg <= BLAKE3; alg++ {
		algs = append(algs, alg)
	}
	return algs
}

// String returns the canonical lowercase name of the algorithm.
func (a Algorithm) String() string {
	if a == None {
		return "none"
	}
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Size returns the digest length in bytes of a supported algorithm, or 0 for
// None, unknown identifiers and algorithms compiled out of this binary.
func (a Algorithm) Size() int {
	return Size(a)
}

// ParseAlgorithm maps a name such as "SHA-256", "sha3_512" or "blake2b512" to
// its identifier. Case, '-', '_' and spaces are ignored. Unknown names yield
// ErrUnsupportedAlgorithm carrying a suggestion when a close match exists.
// A known but compiled-out algorithm parses successfully; Start rejects it.
func ParseAlgorithm(name string) (Algorithm, error) {
	key := compactName(name)
	for alg, canonical := range algorithmNames {
		if compactName(canonical) == key {
			return alg, nil
		}
	}

	err := coreerr.WithDetails(coreerr.ErrUnsupportedAlgorithm, map[string]string{"algorithm": name})
	if s := SuggestAlgorithm(name); s != None {
		err = coreerr.WithSuggestion(err, fmt.Sprintf("did you mean %q?", s.String()))
	}
	return None, err
}

// SuggestAlgorithm returns the supported algorithm whose canonical name is
// closest to name, or None if nothing is within MaxSuggestionDistance.
func SuggestAlgorithm(name string) Algorithm {
	input := strings.ToLower(strings.TrimSpace(name))
	if input == "" {
		return None
	}

	best, bestDist := None, math.MaxInt
	for _, alg := range Supported() {
		dist := levenshtein.ComputeDistance(input, alg.String())
		if dist < bestDist {
			best, bestDist = alg, dist
		}
	}

	if bestDist <= MaxSuggestionDistance {
		return best
	}
	return None
}

func compactName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}
