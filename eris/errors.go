package eris

import "errors"

var (
	// ErrInvalidPadding is returned when a decoded block's padding does not
	// follow the ISO/IEC 7816-4 scheme.
	ErrInvalidPadding = errors.New("eris: invalid block padding")

	// ErrInvalidBlockSize is returned when a fetched block's length does
	// not equal the capability's block size.
	ErrInvalidBlockSize = errors.New("eris: invalid block size")

	// ErrInvalidBlock is returned when a fetched block's ciphertext hash
	// does not match the reference used to fetch it.
	ErrInvalidBlock = errors.New("eris: block does not match its reference")

	// ErrInvalidInnerNode is returned when an inner node's plaintext length
	// isn't a multiple of 64 bytes. Pairs after the first zero pair are not
	// inspected.
	ErrInvalidInnerNode = errors.New("eris: invalid inner node")

	// ErrTreeTooDeep is returned when decoding would recurse past a sane
	// depth bound, guarding against a maliciously crafted capability.
	ErrTreeTooDeep = errors.New("eris: tree level too deep")
)
