package eris

import (
	"context"
	"fmt"
	"io"
)

// WriteBlockFunc persists a single produced block. Implementations may
// write to a local store, a network target, or both; a returned error
// aborts the encode operation.
type WriteBlockFunc func(ctx context.Context, ref Reference, key Key, block []byte) error

// Encode splits content read from r into fixed-size encrypted blocks,
// invoking write for each one, and returns the resulting read capability.
//
// blockSize must be BlockSizeSmall or BlockSizeLarge. secret is the
// 32-byte convergence secret; encoding the same content with the same
// secret always produces the same capability and the same block set.
func Encode(ctx context.Context, r io.Reader, secret [ConvergenceSecretSize]byte, blockSize int, write WriteBlockFunc) (ReadCapability, error) {
	if blockSize != BlockSizeSmall && blockSize != BlockSizeLarge {
		return ReadCapability{}, fmt.Errorf("eris: unsupported block size: %d", blockSize)
	}

	pairs, err := encodeLeaves(ctx, r, secret, blockSize, write)
	if err != nil {
		return ReadCapability{}, err
	}

	capacity := blockSize / referenceKeyLen
	level := 0
	for len(pairs) > 1 {
		pairs, err = encodeLevel(ctx, pairs, secret, blockSize, capacity, write)
		if err != nil {
			return ReadCapability{}, err
		}
		level++
	}

	if extraChecks && len(pairs) != 1 {
		panic("eris: encode produced no root pair")
	}

	return ReadCapability{
		BlockSize: blockSize,
		Level:     level,
		Root:      pairs[0],
	}, nil
}

// encodeLeaves reads r in blockSize chunks, padding and encrypting each
// one, and returns the resulting leaf RK-pairs in order.
func encodeLeaves(ctx context.Context, r io.Reader, secret [ConvergenceSecretSize]byte, blockSize int, write WriteBlockFunc) ([]ReferenceKeyPair, error) {
	s := newSplitter(r, blockSize)

	var pairs []ReferenceKeyPair
	for s.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pair, ciphertext, err := sealPlaintext(s.Block(), secret)
		if err != nil {
			return nil, err
		}
		if err := write(ctx, pair.Reference, pair.Key, ciphertext); err != nil {
			return nil, fmt.Errorf("eris: write leaf block: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("eris: read content: %w", err)
	}

	if extraChecks && len(pairs) == 0 {
		panic("eris: splitter yielded no blocks")
	}
	return pairs, nil
}

// encodeLevel groups pairs into inner nodes of the given capacity, writes
// each one, and returns the RK-pairs of the next level up.
func encodeLevel(ctx context.Context, pairs []ReferenceKeyPair, secret [ConvergenceSecretSize]byte, blockSize, capacity int, write WriteBlockFunc) ([]ReferenceKeyPair, error) {
	groups := groupPairs(pairs, capacity)

	next := make([]ReferenceKeyPair, 0, len(groups))
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		plaintext := marshalPairs(g, blockSize)
		pair, ciphertext, err := sealPlaintext(plaintext, secret)
		if err != nil {
			return nil, err
		}
		if err := write(ctx, pair.Reference, pair.Key, ciphertext); err != nil {
			return nil, fmt.Errorf("eris: write inner block: %w", err)
		}
		next = append(next, pair)
	}
	return next, nil
}

// sealPlaintext derives the per-block key for plaintext and encrypts it,
// returning the resulting RK-pair and the ciphertext to persist.
func sealPlaintext(plaintext []byte, secret [ConvergenceSecretSize]byte) (ReferenceKeyPair, []byte, error) {
	key := deriveKey(plaintext, &secret)
	ciphertext, ref, err := sealBlock(plaintext, key)
	if err != nil {
		return ReferenceKeyPair{}, nil, err
	}
	return ReferenceKeyPair{Reference: ref, Key: key}, ciphertext, nil
}

// groupPairs splits pairs into consecutive groups of at most capacity
// elements each, preserving order.
func groupPairs(pairs []ReferenceKeyPair, capacity int) [][]ReferenceKeyPair {
	var groups [][]ReferenceKeyPair
	for len(pairs) > 0 {
		n := capacity
		if n > len(pairs) {
			n = len(pairs)
		}
		groups = append(groups, pairs[:n])
		pairs = pairs[n:]
	}
	return groups
}

// marshalPairs serializes pairs as consecutive 64-byte (reference, key)
// tuples into a buffer of exactly blockSize bytes, zero-padding any unused
// pair slots. The all-zero pair that results from the padding terminates
// the list on decode.
func marshalPairs(pairs []ReferenceKeyPair, blockSize int) []byte {
	buf := make([]byte, blockSize)
	off := 0
	for _, p := range pairs {
		copy(buf[off:], p.Reference[:])
		copy(buf[off+ReferenceSize:], p.Key[:])
		off += referenceKeyLen
	}
	return buf
}
