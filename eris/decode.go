package eris

import (
	"context"
	"fmt"
)

// maxTreeDepth bounds recursive descent so a maliciously crafted
// capability cannot force unbounded work; it is far above any depth a
// real upload could need (a level-8 tree at 32 KiB blocks already
// addresses exabytes of content).
const maxTreeDepth = 64

// ResolveFunc fetches the block named by ref. It returns the block's raw
// ciphertext bytes, or an error if the block could not be found or read.
type ResolveFunc func(ctx context.Context, ref Reference) ([]byte, error)

// SinkFunc receives a contiguous run of reconstructed plaintext bytes, in
// order. A returned error aborts the decode operation.
type SinkFunc func(ctx context.Context, p []byte) error

// Decode reconstructs the content named by rc, fetching blocks through
// resolve and emitting plaintext through sink in order. It returns the
// total number of plaintext bytes emitted.
//
// Decode performs one pass over the tree and returns only on completion
// or terminal error; there is no partial or streaming result visible to
// the caller.
func Decode(ctx context.Context, rc ReadCapability, resolve ResolveFunc, sink SinkFunc) (int64, error) {
	if rc.BlockSize != BlockSizeSmall && rc.BlockSize != BlockSizeLarge {
		return 0, fmt.Errorf("eris: unsupported block size: %d", rc.BlockSize)
	}
	if rc.Level < 0 || rc.Level > maxTreeDepth {
		return 0, ErrTreeTooDeep
	}

	d := &decoder{resolve: resolve, sink: sink, blockSize: rc.BlockSize}
	n, err := d.walk(ctx, rc.Root, rc.Level)
	if err != nil {
		return 0, err
	}
	return n, nil
}

type decoder struct {
	resolve   ResolveFunc
	sink      SinkFunc
	blockSize int
}

// walk fetches and verifies the block named by pair, then either emits its
// (unpadded) plaintext directly, if level == 0, or recurses into each
// child RK-pair in order.
func (d *decoder) walk(ctx context.Context, pair ReferenceKeyPair, level int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	plaintext, err := d.fetchAndOpen(ctx, pair)
	if err != nil {
		return 0, err
	}

	if level == 0 {
		leaf, err := removePadding(plaintext, d.blockSize)
		if err != nil {
			return 0, err
		}
		if err := d.sink(ctx, leaf); err != nil {
			return 0, fmt.Errorf("eris: sink: %w", err)
		}
		return int64(len(leaf)), nil
	}

	children, err := decodeInnerNode(plaintext)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, child := range children {
		n, err := d.walk(ctx, child, level-1)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// fetchAndOpen resolves pair.Reference, verifies it against the returned
// ciphertext, and decrypts it with pair.Key.
func (d *decoder) fetchAndOpen(ctx context.Context, pair ReferenceKeyPair) ([]byte, error) {
	ciphertext, err := d.resolve(ctx, pair.Reference)
	if err != nil {
		return nil, fmt.Errorf("eris: resolve %s: %w", pair.Reference, err)
	}
	if len(ciphertext) != d.blockSize {
		return nil, ErrInvalidBlockSize
	}
	if hashReference(ciphertext) != pair.Reference {
		return nil, ErrInvalidBlock
	}
	return openBlock(ciphertext, pair.Key)
}

// decodeInnerNode reads consecutive 64-byte RK-pairs from plaintext until
// the first pair whose reference is all zeros, which terminates the list.
func decodeInnerNode(plaintext []byte) ([]ReferenceKeyPair, error) {
	if len(plaintext)%referenceKeyLen != 0 {
		return nil, ErrInvalidInnerNode
	}

	var pairs []ReferenceKeyPair
	for off := 0; off+referenceKeyLen <= len(plaintext); off += referenceKeyLen {
		var pair ReferenceKeyPair
		copy(pair.Reference[:], plaintext[off:off+ReferenceSize])
		copy(pair.Key[:], plaintext[off+ReferenceSize:off+referenceKeyLen])

		if pair.Reference.isZero() {
			return pairs, nil
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}
