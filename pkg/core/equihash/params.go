package equihash

import "fmt"

const (
	// HeaderSize is the exact number of header bytes absorbed into the hash state.
	HeaderSize = 140

	// DefaultN and DefaultK are used when a caller supplies only a header and solution.
	DefaultN = 200
	DefaultK = 9

	// hashOutputBits is the BLAKE2b maximum output, shared by several indices.
	hashOutputBits = 512
)

// ParamSet tags one of the supported (n, k) pairs.
type ParamSet uint8

// Supported parameter sets, named EhN_K after their (n, k) pair.
const (
	Eh96_3 ParamSet = iota
	Eh200_9
	Eh144_5
	Eh192_7
	Eh96_5
	Eh48_5

	numParamSets
)

var paramSetPairs = [numParamSets][2]uint32{
	Eh96_3:  {96, 3},
	Eh200_9: {200, 9},
	Eh144_5: {144, 5},
	Eh192_7: {192, 7},
	Eh96_5:  {96, 5},
	Eh48_5:  {48, 5},
}

// paramTable holds the derived constants for every ParamSet.
// It is filled once at init and never modified.
var paramTable [numParamSets]Params

func init() {
	for i, pair := range paramSetPairs {
		p, err := newParams(pair[0], pair[1])
		if err != nil {
			panic(fmt.Sprintf("equihash: bad built-in parameter set (%d,%d): %v", pair[0], pair[1], err))
		}
		p.Set = ParamSet(i)
		paramTable[i] = p
	}
}

// Params holds an (n, k) pair together with the constants derived from it.
type Params struct {
	Set ParamSet

	N uint32
	K uint32

	// CollisionBitLength is n/(k+1), the width of one collision window.
	CollisionBitLength uint32

	// CollisionByteLength is CollisionBitLength rounded up to whole bytes.
	CollisionByteLength uint32

	// IndicesPerSolution is 2^k.
	IndicesPerSolution uint32

	// IndexBitLength is CollisionBitLength+1; indices lie in [0, 2^IndexBitLength).
	IndexBitLength uint32

	// IndicesPerHashOutput is how many n-bit digests one BLAKE2b call supplies.
	IndicesPerHashOutput uint32

	// HashOutput is the BLAKE2b digest length in bytes.
	HashOutput uint32

	// HashLength is the width in bytes of a digest expanded to one
	// collision window per byte-aligned slot.
	HashLength uint32

	// SolutionWidth is the packed solution length in bytes.
	SolutionWidth uint32
}

// String implements fmt.Stringer.
func (p Params) String() string {
	return fmt.Sprintf("Equihash(%d,%d)", p.N, p.K)
}

// Params returns the derived constants for s.
// It panics if s is not one of the declared ParamSet values.
func (s ParamSet) Params() Params {
	return paramTable[s]
}

// String implements fmt.Stringer.
func (s ParamSet) String() string {
	if s >= numParamSets {
		return fmt.Sprintf("ParamSet(%d)", uint8(s))
	}
	return paramTable[s].String()
}

// LookupParams returns the constants for a supported (n, k) pair.
func LookupParams(n, k uint32) (Params, error) {
	for i, pair := range paramSetPairs {
		if pair[0] == n && pair[1] == k {
			return paramTable[i], nil
		}
	}
	return Params{}, fmt.Errorf("%w: n=%d k=%d", ErrUnsupportedParameters, n, k)
}

// SupportedParams returns every supported parameter set in table order.
func SupportedParams() []Params {
	out := make([]Params, len(paramTable))
	copy(out, paramTable[:])
	return out
}

// newParams derives the constants for an arbitrary (n, k).
// Only the whitelisted pairs are reachable through LookupParams,
// but the checks hold for any pair.
func newParams(n, k uint32) (Params, error) {
	if k == 0 || k >= 32 {
		return Params{}, fmt.Errorf("%w: k=%d", ErrInvalidParameters, k)
	}
	if n == 0 || n%8 != 0 || n > hashOutputBits {
		return Params{}, fmt.Errorf("%w: n=%d must be a positive multiple of 8 not above %d", ErrInvalidParameters, n, hashOutputBits)
	}
	if n%(k+1) != 0 {
		return Params{}, fmt.Errorf("%w: n=%d is not divisible by k+1=%d", ErrInvalidParameters, n, k+1)
	}

	cbl := n / (k + 1)
	if cbl+1 > 32 {
		return Params{}, fmt.Errorf("%w: index width %d exceeds 32 bits", ErrInvalidParameters, cbl+1)
	}

	indices := uint32(1) << k
	if (uint64(indices)*uint64(cbl+1))%8 != 0 {
		return Params{}, fmt.Errorf("%w: packed solution is not a whole number of bytes", ErrInvalidParameters)
	}

	perHash := hashOutputBits / n
	cbyte := (cbl + 7) / 8

	return Params{
		N:                    n,
		K:                    k,
		CollisionBitLength:   cbl,
		CollisionByteLength:  cbyte,
		IndicesPerSolution:   indices,
		IndexBitLength:       cbl + 1,
		IndicesPerHashOutput: perHash,
		HashOutput:           perHash * n / 8,
		HashLength:           (k + 1) * cbyte,
		SolutionWidth:        uint32(uint64(indices) * uint64(cbl+1) / 8),
	}, nil
}

// indexLimit is the exclusive upper bound of the index domain.
func (p Params) indexLimit() uint64 {
	return uint64(1) << p.IndexBitLength
}
