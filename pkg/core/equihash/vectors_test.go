package equihash

import (
	"encoding/hex"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Zcash validator test vector for Equihash(96,5): the input is the
// sentence below followed by a 256-bit little-endian nonce of 1.
var zcashVector96_5 = struct {
	input   string
	nonce   uint8
	indices []uint32
	packed  string
}{
	input: "Equihash is an asymmetric PoW based on the Generalised Birthday problem.",
	nonce: 1,
	indices: []uint32{
		2261, 15185, 36112, 104243, 23779, 118390, 118332, 130041,
		32642, 69878, 76925, 80080, 45858, 116805, 92842, 111026,
		15972, 115059, 85191, 90330, 68190, 122819, 81830, 91132,
		23460, 49807, 52426, 80391, 69567, 114474, 104973, 122568,
	},
	packed: "046a8ed451a2197332e71f39db9c79fbf93fc1443da58fb38d0599172116d555" +
		"b1b21f32705ce998f60da852f77f0e7f4d63fc2dd230a3d99953a0787dfefcab341bdec8",
}

func zcashVectorState(t *testing.T) *HashState {
	t.Helper()
	p, err := LookupParams(96, 5)
	require.NoError(t, err)

	var nonce [32]byte
	nonce[0] = zcashVector96_5.nonce
	input := append([]byte(zcashVector96_5.input), nonce[:]...)

	s, err := primeHashState(p, input)
	require.NoError(t, err)
	return s
}

func TestZcashVector_96_5(t *testing.T) {
	s := zcashVectorState(t)
	v := zcashVector96_5

	require.NoError(t, Validate(s, v.indices))
	require.True(t, IsValidSolution(s, v.indices))

	packed, err := PackIndices(s.Params(), v.indices)
	require.NoError(t, err)
	require.Equal(t, v.packed, hex.EncodeToString(packed))

	unpacked, err := UnpackIndices(s.Params(), packed)
	require.NoError(t, err)
	require.Equal(t, v.indices, unpacked)
}

func TestZcashVector_96_5_Mutations(t *testing.T) {
	s := zcashVectorState(t)
	indices := zcashVector96_5.indices

	swapped := append(append([]uint32(nil), indices[16:]...), indices[:16]...)
	require.ErrorIs(t, Validate(s, swapped), ErrIndicesOutOfOrder)

	changed := append([]uint32(nil), indices...)
	changed[5]++
	require.Error(t, Validate(s, changed))

	// Without the nonce the same indices are meaningless.
	bare, err := primeHashState(s.Params(), []byte(zcashVector96_5.input))
	require.NoError(t, err)
	require.False(t, IsValidSolution(bare, indices))
}

// testdata/eh200_9.hex holds a 140-byte header and its 1344-byte
// Equihash(200,9) solution, one hex line each. The pair was solved and
// checked with a separate BLAKE2b/Wagner implementation.
func TestVector_200_9(t *testing.T) {
	raw, err := os.ReadFile("testdata/eh200_9.hex")
	require.NoError(t, err)

	lines := strings.Fields(string(raw))
	require.Len(t, lines, 2)

	header, err := hex.DecodeString(lines[0])
	require.NoError(t, err)
	solution, err := hex.DecodeString(lines[1])
	require.NoError(t, err)
	require.Len(t, header, HeaderSize)
	require.Len(t, solution, 1344)

	ok, err := VerifyDefault(header, solution)
	require.NoError(t, err)
	require.True(t, ok)

	v, err := NewVerifier(200, 9)
	require.NoError(t, err)
	require.NoError(t, v.Check(header, solution))

	header[len(header)-1] ^= 0x01
	ok, err = VerifyDefault(header, solution)
	require.NoError(t, err)
	require.False(t, ok)
}
