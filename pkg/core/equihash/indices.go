package equihash

import "fmt"

// UnpackIndices decodes a packed solution into its 2^k indices.
// Each index occupies IndexBitLength bits, most significant bit first.
func UnpackIndices(p Params, solution []byte) ([]uint32, error) {
	if uint32(len(solution)) != p.SolutionWidth {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSolutionLength, len(solution), p.SolutionWidth)
	}
	return expandBits(solution, p.IndexBitLength, int(p.IndicesPerSolution)), nil
}

// PackIndices is the inverse of UnpackIndices.
func PackIndices(p Params, indices []uint32) ([]byte, error) {
	if uint32(len(indices)) != p.IndicesPerSolution {
		return nil, fmt.Errorf("%w: got %d indices, want %d", ErrInvalidSolutionLength, len(indices), p.IndicesPerSolution)
	}
	limit := p.indexLimit()
	for _, idx := range indices {
		if uint64(idx) >= limit {
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
		}
	}
	return compressBits(indices, p.IndexBitLength), nil
}

// expandBits reads count big-endian words of bitLen bits from in.
// bitLen must be between 1 and 32. Trailing bits that do not fill a
// whole word are ignored.
func expandBits(in []byte, bitLen uint32, count int) []uint32 {
	out := make([]uint32, 0, count)
	mask := uint64(1)<<bitLen - 1

	var acc uint64
	var accBits uint32
	for _, b := range in {
		acc = acc<<8 | uint64(b)
		accBits += 8
		if accBits >= bitLen {
			accBits -= bitLen
			out = append(out, uint32((acc>>accBits)&mask))
			if len(out) == count {
				break
			}
		}
	}
	return out
}

// compressBits packs words of bitLen bits each, most significant bit first,
// zero-padding the final byte.
func compressBits(words []uint32, bitLen uint32) []byte {
	out := make([]byte, 0, (uint64(len(words))*uint64(bitLen)+7)/8)
	mask := uint64(1)<<bitLen - 1

	var acc uint64
	var accBits uint32
	for _, w := range words {
		acc = acc<<bitLen | (uint64(w) & mask)
		accBits += bitLen
		for accBits >= 8 {
			accBits -= 8
			out = append(out, byte(acc>>accBits))
		}
	}
	if accBits > 0 {
		out = append(out, byte(acc<<(8-accBits)))
	}
	return out
}
