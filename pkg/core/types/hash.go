package types

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the length of all hashes in bytes.
const HashSize = 32

// Hash represents a 32-byte hash (block references in headers, verdict keys).
type Hash [HashSize]byte

// Hex returns the lowercase hex-encoded string.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements fmt.Stringer.
func (h Hash) String() string {
	return h.Hex()
}

// ComputeBlake2b256 computes BLAKE2b-256 over the concatenation of parts.
func ComputeBlake2b256(parts ...[]byte) Hash {
	d, _ := blake2b.New256(nil) // Only fails for oversized keys.
	for _, p := range parts {
		d.Write(p)
	}
	var h Hash
	d.Sum(h[:0])
	return h
}
