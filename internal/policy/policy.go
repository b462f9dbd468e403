// Package policy selects the ERIS block size for an upload, applied the
// same way regardless of how the payload arrived (inline JSON or a
// multipart file).
package policy

import "github.com/apsisnet/apsis/eris"

// BlockSizer chooses a block size for an upload of the given byte length.
type BlockSizer interface {
	BlockSize(contentLength int) int
}

// BlockSizerFunc adapts a function to a BlockSizer.
type BlockSizerFunc func(contentLength int) int

func (f BlockSizerFunc) BlockSize(contentLength int) int { return f(contentLength) }

// sizeThreshold is the byte length below which SizeThreshold picks the
// small block size.
const sizeThreshold = 1000

// SizeThreshold picks BlockSizeSmall for payloads under 1000 bytes and
// BlockSizeLarge otherwise, applied the same way to every content type.
var SizeThreshold BlockSizer = BlockSizerFunc(func(contentLength int) int {
	if contentLength < sizeThreshold {
		return eris.BlockSizeSmall
	}
	return eris.BlockSizeLarge
})

// Fixed returns a BlockSizer that always picks blockSize, regardless of
// content length. blockSize must be eris.BlockSizeSmall or
// eris.BlockSizeLarge; Fixed does not validate this itself, leaving the
// error surface to Encode.
func Fixed(blockSize int) BlockSizer {
	return BlockSizerFunc(func(int) int { return blockSize })
}
