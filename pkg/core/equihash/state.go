package equihash

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// PersonalizationSize is the length of the BLAKE2b personalization parameter.
const PersonalizationSize = 16

// personalizationPrefix domain-separates Equihash hashing from generic BLAKE2b use.
const personalizationPrefix = "ZcashPoW"

// Offsets into the marshaled x/crypto BLAKE2b state:
// "b2b" magic followed by the eight chain words, big-endian.
const (
	marshalMagicLen = 3
	chainWordOffset = marshalMagicLen
)

// Personalization returns the 16-byte personalization tag for (n, k):
// "ZcashPoW" followed by n and k as little-endian uint32 values.
func Personalization(n, k uint32) [PersonalizationSize]byte {
	var tag [PersonalizationSize]byte
	copy(tag[:8], personalizationPrefix)
	binary.LittleEndian.PutUint32(tag[8:12], n)
	binary.LittleEndian.PutUint32(tag[12:16], k)
	return tag
}

// HashState is a personalized BLAKE2b context that has absorbed a block header.
//
// The context is stored as an immutable marshaled snapshot.
// Every digest computation restores its own independent context,
// so a HashState may be shared freely between goroutines.
type HashState struct {
	params   Params
	snapshot []byte
}

// NewHashState primes a personalized BLAKE2b context for p with the header bytes.
func NewHashState(p Params, header []byte) (*HashState, error) {
	if len(header) != HeaderSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHeaderLength, len(header))
	}
	return primeHashState(p, header)
}

// primeHashState absorbs input of any length. Only headers reach it
// outside of tests.
func primeHashState(p Params, input []byte) (*HashState, error) {
	d, err := newPersonalizedDigest(int(p.HashOutput), Personalization(p.N, p.K))
	if err != nil {
		return nil, err
	}
	if _, err := d.Write(input); err != nil {
		return nil, err
	}

	snap, err := d.(encoding.BinaryMarshaler).MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("snapshot hash state: %w", err)
	}

	return &HashState{params: p, snapshot: snap}, nil
}

// Params returns the parameters the state was primed for.
func (s *HashState) Params() Params {
	return s.params
}

// Snapshot returns a fresh, independent context positioned right after the header.
// Writes to the returned hash never affect s.
func (s *HashState) Snapshot() (hash.Hash, error) {
	return restoreDigest(int(s.params.HashOutput), s.snapshot)
}

// newPersonalizedDigest returns an unkeyed BLAKE2b context of the given size
// whose parameter block carries person.
//
// x/crypto/blake2b has no personalization option. The personalization field
// of the parameter block is XORed into chain words 6 and 7 of the initial
// value, so it is applied to the marshaled state of a fresh context.
func newPersonalizedDigest(size int, person [PersonalizationSize]byte) (hash.Hash, error) {
	d, err := blake2b.New(size, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: blake2b output size %d: %v", ErrInvalidParameters, size, err)
	}

	state, err := d.(encoding.BinaryMarshaler).MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal blake2b state: %w", err)
	}

	for w := 0; w < 2; w++ {
		off := chainWordOffset + (6+w)*8
		h := binary.BigEndian.Uint64(state[off:])
		h ^= binary.LittleEndian.Uint64(person[w*8:])
		binary.BigEndian.PutUint64(state[off:], h)
	}

	return restoreDigest(size, state)
}

func restoreDigest(size int, state []byte) (hash.Hash, error) {
	d, err := blake2b.New(size, nil)
	if err != nil {
		return nil, err
	}
	if err := d.(encoding.BinaryUnmarshaler).UnmarshalBinary(state); err != nil {
		return nil, fmt.Errorf("restore blake2b state: %w", err)
	}
	return d, nil
}
