// Package eris implements apsis's content-addressed block encoding: the
// transformation between a byte stream and a Merkle tree of fixed-size,
// encrypted, hash-addressed blocks, and back.
//
// Content is split into blocks of a fixed size (1 KiB or 32 KiB), the
// final one padded, each encrypted with a per-block convergent key, and named by the
// unkeyed Blake2b-256 hash of its ciphertext. Blocks referencing other
// blocks are themselves just blocks, so the whole tree bottoms out in a
// single read capability: a (block size, tree level, root reference,
// root key) tuple that can be serialized as a `urn:eris:` URN.
//
// This package does not implement any storage or transport layer. Encode
// and Decode are driven entirely through caller-supplied closures: a
// sink that persists produced blocks, and a resolver that fetches blocks
// by reference, so callers are free to back them with a local store, a
// network fetch, or both. See the internal/store, internal/resolver and
// internal/api packages for how apsisd wires those closures to a real
// key-value store, DHT and HTTP surface.
package eris
