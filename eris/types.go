package eris

import (
	"crypto/subtle"
	"encoding/base32"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// String implements the fmt.Stringer interface.
func (r Reference) String() string {
	return fmt.Sprintf("%x", r[:])
}

func (r Reference) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// PeerID returns the DHT lookup key for the block this reference names: the
// first PeerIDSize bytes of the reference.
func (r Reference) PeerID() PeerID {
	var id PeerID
	copy(id[:], r[:PeerIDSize])
	return id
}

// BareURN returns the bare reference URN for r, used for block-level
// fetches between peers.
func (r Reference) BareURN() string {
	return "urn:" + base32Enc.EncodeToString(r[:])
}

// ReferenceFromBareURN parses a bare reference URN as produced by BareURN.
func ReferenceFromBareURN(urn string) (Reference, error) {
	var r Reference
	const prefix = "urn:"
	if len(urn) < len(prefix) || urn[:len(prefix)] != prefix {
		return r, fmt.Errorf("eris: invalid bare reference URN prefix")
	}
	data, err := base32Enc.DecodeString(urn[len(prefix):])
	if err != nil {
		return r, fmt.Errorf("eris: invalid bare reference URN: %w", err)
	}
	if len(data) != ReferenceSize {
		return r, fmt.Errorf("eris: invalid bare reference length: %d", len(data))
	}
	copy(r[:], data)
	return r, nil
}

// String implements the fmt.Stringer interface.
func (k Key) String() string {
	return fmt.Sprintf("%x", k[:])
}

func (id PeerID) String() string {
	return fmt.Sprintf("%x", id[:])
}

// Equal returns true if the two ReferenceKeyPairs are equal.
func (rk ReferenceKeyPair) Equal(other ReferenceKeyPair) bool {
	return subtle.ConstantTimeCompare(rk.Reference[:], other.Reference[:]) == 1 &&
		subtle.ConstantTimeCompare(rk.Key[:], other.Key[:]) == 1
}

// Equal returns true if the two ReadCapabilities are equal.
func (rc ReadCapability) Equal(other ReadCapability) bool {
	return rc.BlockSize == other.BlockSize &&
		rc.Level == other.Level &&
		rc.Root.Equal(other.Root)
}

// AppendBinary appends the binary representation of the ReadCapability to
// the given byte slice and returns it, or any error that occurs.
func (rc ReadCapability) AppendBinary(data []byte) ([]byte, error) {
	switch rc.BlockSize {
	case BlockSizeSmall:
		data = append(data, 0x00)
	case BlockSizeLarge:
		data = append(data, 0x01)
	default:
		return nil, fmt.Errorf("eris: unsupported block size: %d", rc.BlockSize)
	}

	if rc.Level < 0 || rc.Level > 255 {
		return nil, fmt.Errorf("eris: tree level out of range: %d", rc.Level)
	}
	data = append(data, byte(rc.Level))

	data = append(data, rc.Root.Reference[:]...)
	data = append(data, rc.Root.Key[:]...)
	return data, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (rc ReadCapability) MarshalBinary() (data []byte, err error) {
	return rc.AppendBinary(nil)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (rc *ReadCapability) UnmarshalBinary(data []byte) error {
	if len(data) != referenceKeyLen+2 {
		return fmt.Errorf("eris: capability data wrong length: %d", len(data))
	}

	switch data[0] {
	case 0x00:
		rc.BlockSize = BlockSizeSmall
	case 0x01:
		rc.BlockSize = BlockSizeLarge
	default:
		return fmt.Errorf("eris: unsupported block size byte: 0x%02x", data[0])
	}

	rc.Level = int(data[1])

	copy(rc.Root.Reference[:], data[2:2+ReferenceSize])
	copy(rc.Root.Key[:], data[2+ReferenceSize:2+referenceKeyLen])
	return nil
}

// base32Enc implements the unpadded Base32 encoding (RFC 4648) used for both
// capability and bare reference URNs.
var base32Enc = base32.StdEncoding.WithPadding(base32.NoPadding)

// URN returns the urn:eris: URN for the ReadCapability.
func (rc ReadCapability) URN() (string, error) {
	data, err := rc.MarshalBinary()
	if err != nil {
		return "", err
	}
	return "urn:eris:" + base32Enc.EncodeToString(data), nil
}

// MustURN is like URN, but panics if an error occurs.
func (rc ReadCapability) MustURN() string {
	urn, err := rc.URN()
	if err != nil {
		panic(err)
	}
	return urn
}

// ParseReadCapabilityURN parses a capability URN as produced by URN.
func ParseReadCapabilityURN(urn string) (rc ReadCapability, err error) {
	const prefix = "urn:eris:"
	if len(urn) < len(prefix) || urn[:len(prefix)] != prefix {
		return rc, fmt.Errorf("eris: invalid capability URN prefix")
	}
	data, err := base32Enc.DecodeString(urn[len(prefix):])
	if err != nil {
		return rc, fmt.Errorf("eris: invalid capability URN: %w", err)
	}
	return rc, rc.UnmarshalBinary(data)
}

// hashReference computes the unkeyed Blake2b-256 hash of a ciphertext
// block, i.e. its reference.
func hashReference(ciphertext []byte) Reference {
	return Reference(blake2b.Sum256(ciphertext))
}
