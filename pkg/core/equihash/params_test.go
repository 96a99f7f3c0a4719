package equihash

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupParams_Table(t *testing.T) {
	tests := []struct {
		n, k          uint32
		cbl           uint32
		perHash       uint32
		hashOutput    uint32
		solutionWidth uint32
	}{
		{96, 3, 24, 5, 60, 25},
		{200, 9, 20, 2, 50, 1344},
		{144, 5, 24, 3, 54, 100},
		{192, 7, 24, 2, 48, 400},
		{96, 5, 16, 5, 60, 68},
		{48, 5, 8, 10, 60, 36},
	}

	for _, tt := range tests {
		p, err := LookupParams(tt.n, tt.k)
		require.NoError(t, err)
		t.Run(p.String(), func(t *testing.T) {
			require.Equal(t, tt.n, p.N)
			require.Equal(t, tt.k, p.K)
			require.Equal(t, tt.cbl, p.CollisionBitLength)
			require.Equal(t, tt.cbl+1, p.IndexBitLength)
			require.Equal(t, uint32(1)<<tt.k, p.IndicesPerSolution)
			require.Equal(t, tt.perHash, p.IndicesPerHashOutput)
			require.Equal(t, tt.hashOutput, p.HashOutput)
			require.Equal(t, tt.solutionWidth, p.SolutionWidth)
			require.Equal(t, (tt.k+1)*((tt.cbl+7)/8), p.HashLength)

			// The tag round-trips through the table.
			require.Equal(t, p, p.Set.Params())
		})
	}
}

func TestLookupParams_Unsupported(t *testing.T) {
	for _, pair := range [][2]uint32{{100, 4}, {200, 8}, {0, 0}, {48, 0}, {210, 9}} {
		_, err := LookupParams(pair[0], pair[1])
		require.ErrorIs(t, err, ErrUnsupportedParameters, "n=%d k=%d", pair[0], pair[1])
	}
}

func TestSupportedParams_Order(t *testing.T) {
	got := SupportedParams()
	require.Len(t, got, 6)

	want := []ParamSet{Eh96_3, Eh200_9, Eh144_5, Eh192_7, Eh96_5, Eh48_5}
	for i, s := range want {
		require.Equal(t, s, got[i].Set)
	}

	// Mutating the returned slice must not touch the table.
	got[0].N = 1
	require.Equal(t, uint32(96), Eh96_3.Params().N)
}

func TestNewParams_Invalid(t *testing.T) {
	tests := []struct {
		name string
		n, k uint32
	}{
		{"k zero", 48, 0},
		{"n not byte aligned", 44, 3},
		{"n not divisible by k+1", 200, 6},
		{"n above hash output", 520, 7},
		{"index too wide", 256, 3},
		{"fractional solution bytes", 40, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newParams(tt.n, tt.k)
			require.True(t, errors.Is(err, ErrInvalidParameters), "got %v", err)
		})
	}
}

func TestParamSetString(t *testing.T) {
	require.Equal(t, "Equihash(200,9)", Eh200_9.String())
	require.Equal(t, "ParamSet(200)", ParamSet(200).String())
}
