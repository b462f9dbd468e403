package eris

import (
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Blake2b256 returns the Blake2b-256 hash of input. If key is non-nil, the
// hash is keyed (used to derive per-block content keys); otherwise it is the
// unkeyed hash used to compute a block's reference.
func Blake2b256(input []byte, key *[32]byte) [32]byte {
	var h hash.Hash
	var err error
	if key != nil {
		h, err = blake2b.New256(key[:])
	} else {
		h, err = blake2b.New256(nil)
	}
	if err != nil {
		panic(err)
	}
	h.Write(input)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
