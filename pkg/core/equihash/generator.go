package equihash

import (
	"encoding/binary"
	"fmt"
)

// Digest returns the n-bit pseudorandom digest for index.
//
// One BLAKE2b output covers IndicesPerHashOutput consecutive indices:
// the digest is slice index%IndicesPerHashOutput of the output for
// block index/IndicesPerHashOutput.
func (s *HashState) Digest(index uint32) ([]byte, error) {
	if uint64(index) >= s.params.indexLimit() {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	out, err := s.blockHash(index / s.params.IndicesPerHashOutput)
	if err != nil {
		return nil, err
	}
	return s.sliceDigest(out, index), nil
}

// blockHash absorbs the block number as a little-endian uint32 into a
// restored context and returns the full HashOutput bytes.
func (s *HashState) blockHash(block uint32) ([]byte, error) {
	d, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	var le [4]byte
	binary.LittleEndian.PutUint32(le[:], block)
	if _, err := d.Write(le[:]); err != nil {
		return nil, err
	}
	return d.Sum(nil), nil
}

func (s *HashState) sliceDigest(out []byte, index uint32) []byte {
	width := s.params.N / 8
	start := (index % s.params.IndicesPerHashOutput) * width
	return out[start : start+width : start+width]
}

// CollisionWindows splits an n-bit digest into its k+1 collision windows
// of CollisionBitLength bits each, read big-endian. Window i is the one
// siblings at tree level i must agree on.
func (p Params) CollisionWindows(digest []byte) []uint32 {
	return expandBits(digest, p.CollisionBitLength, int(p.K+1))
}

// leafHasher memoizes block outputs for one validation, so indices that
// share a BLAKE2b block are hashed once.
type leafHasher struct {
	state  *HashState
	blocks map[uint32][]byte
}

func newLeafHasher(state *HashState) *leafHasher {
	return &leafHasher{
		state:  state,
		blocks: make(map[uint32][]byte),
	}
}

func (h *leafHasher) words(index uint32) ([]uint32, error) {
	p := h.state.params
	if uint64(index) >= p.indexLimit() {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	block := index / p.IndicesPerHashOutput
	out, ok := h.blocks[block]
	if !ok {
		var err error
		out, err = h.state.blockHash(block)
		if err != nil {
			return nil, err
		}
		h.blocks[block] = out
	}
	return p.CollisionWindows(h.state.sliceDigest(out, index)), nil
}
