package digest

import (
	"crypto/md5"  //nolint:gosec // G501: MD5 kept for compatibility digests, not for security
	"crypto/sha1" //nolint:gosec // G505: SHA-1 kept for compatibility digests
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

//nolint:gochecknoinits // Built-in backends register at package load
func init() {
	MustRegister(MD5, md5.New)
	MustRegister(SHA1, sha1.New)
	MustRegister(SHA224, sha256.New224)
	MustRegister(SHA256, sha256.New)
	MustRegister(SHA384, sha512.New384)
	MustRegister(SHA512, sha512.New)

	MustRegister(SHA3_224, func() hash.Hash { return sha3.New224() })
	MustRegister(SHA3_256, func() hash.Hash { return sha3.New256() })
	MustRegister(SHA3_384, func() hash.Hash { return sha3.New384() })
	MustRegister(SHA3_512, func() hash.Hash { return sha3.New512() })
	MustRegister(Keccak256, sha3.NewLegacyKeccak256)

	MustRegister(BLAKE2b256, mustKeyless(blake2b.New256))
	MustRegister(BLAKE2b512, mustKeyless(blake2b.New512))
	MustRegister(BLAKE3, func() hash.Hash { return blake3.New() })
}

// mustKeyless adapts an unkeyed BLAKE2 constructor. With a nil key the
// constructors cannot fail.
func mustKeyless(newFn func(key []byte) (hash.Hash, error)) Factory {
	return func() hash.Hash {
		h, err := newFn(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}
