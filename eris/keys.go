package eris

import (
	"golang.org/x/crypto/chacha20"
)

// zeroNonce is the constant ChaCha20 nonce used for every block, leaf or
// inner. There is no per-block nonce derivation; key uniqueness comes
// entirely from the convergence secret and the block's own plaintext.
var zeroNonce [chacha20.NonceSize]byte

// deriveKey computes the per-block content key for plaintext, keyed by the
// convergence secret. Used uniformly for leaf and inner nodes alike.
func deriveKey(plaintext []byte, secret *[ConvergenceSecretSize]byte) Key {
	return Key(Blake2b256(plaintext, secret))
}

// sealBlock encrypts plaintext under key and returns the ciphertext and the
// resulting reference (the unkeyed hash of the ciphertext). plaintext must
// already be exactly one block in length.
func sealBlock(plaintext []byte, key Key) (ciphertext []byte, ref Reference, err error) {
	c, err := chacha20.NewUnauthenticatedCipher(key[:], zeroNonce[:])
	if err != nil {
		return nil, ref, err
	}
	ciphertext = make([]byte, len(plaintext))
	c.XORKeyStream(ciphertext, plaintext)
	ref = hashReference(ciphertext)
	return ciphertext, ref, nil
}

// openBlock decrypts a ciphertext block into a newly allocated slice,
// returning the plaintext; ciphertext is left unchanged.
// Callers must verify the block's hash against its expected reference
// before calling openBlock.
func openBlock(ciphertext []byte, key Key) ([]byte, error) {
	c, err := chacha20.NewUnauthenticatedCipher(key[:], zeroNonce[:])
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(ciphertext))
	c.XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}
