package equihash

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// syntheticTree validates a k=2 tree whose leaf windows come from a table
// instead of BLAKE2b, so every rejection path can be reached on purpose.
func syntheticTree(leaves map[uint32][]uint32) *treeValidator {
	return &treeValidator{
		params: Params{K: 2},
		leaf: func(index uint32) ([]uint32, error) {
			w, ok := leaves[index]
			if !ok {
				return nil, ErrIndexOutOfRange
			}
			return w, nil
		},
	}
}

// validLeaves forms a valid k=2 solution for indices 1, 2, 3, 4:
// (1,2) and (3,4) collide on window 0 to [0 4 3], and those collide on
// window 1 to all zeros.
func validLeaves() map[uint32][]uint32 {
	return map[uint32][]uint32{
		1: {5, 7, 1},
		2: {5, 3, 2},
		3: {9, 1, 4},
		4: {9, 5, 7},
	}
}

func TestTreeValidator(t *testing.T) {
	tests := []struct {
		name    string
		leaves  func() map[uint32][]uint32
		indices []uint32
		want    error
	}{
		{
			name:    "valid",
			leaves:  validLeaves,
			indices: []uint32{1, 2, 3, 4},
		},
		{
			name: "collision mismatch at level 0",
			leaves: func() map[uint32][]uint32 {
				l := validLeaves()
				l[2] = []uint32{6, 3, 2}
				return l
			},
			indices: []uint32{1, 2, 3, 4},
			want:    ErrCollisionMismatch,
		},
		{
			name: "collision mismatch at level 1",
			leaves: func() map[uint32][]uint32 {
				l := validLeaves()
				l[4] = []uint32{9, 6, 7}
				return l
			},
			indices: []uint32{1, 2, 3, 4},
			want:    ErrCollisionMismatch,
		},
		{
			name:    "leaves swapped",
			leaves:  validLeaves,
			indices: []uint32{2, 1, 3, 4},
			want:    ErrIndicesOutOfOrder,
		},
		{
			name:    "halves swapped",
			leaves:  validLeaves,
			indices: []uint32{3, 4, 1, 2},
			want:    ErrIndicesOutOfOrder,
		},
		{
			name:    "adjacent duplicate",
			leaves:  validLeaves,
			indices: []uint32{1, 1, 3, 4},
			want:    ErrIndicesOutOfOrder,
		},
		{
			name: "duplicate across subtrees",
			leaves: func() map[uint32][]uint32 {
				// (1,3) -> [0 4 3] and (2,3) -> [0 4 x]: ordered at
				// every level, colliding, but 3 appears twice.
				return map[uint32][]uint32{
					1: {5, 7, 1},
					2: {5, 7, 9},
					3: {5, 3, 2},
				}
			},
			indices: []uint32{1, 3, 2, 3},
			want:    ErrDuplicateIndices,
		},
		{
			name: "root does not cancel",
			leaves: func() map[uint32][]uint32 {
				l := validLeaves()
				l[4] = []uint32{9, 5, 6}
				return l
			},
			indices: []uint32{1, 2, 3, 4},
			want:    ErrNonZeroXOR,
		},
		{
			name:    "leaf failure propagates",
			leaves:  validLeaves,
			indices: []uint32{1, 2, 3, 99},
			want:    ErrIndexOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := syntheticTree(tt.leaves()).validate(tt.indices)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestMergeDisjoint(t *testing.T) {
	got, ok := mergeDisjoint([]uint32{1, 4, 9}, []uint32{2, 3, 10})
	require.True(t, ok)
	require.Equal(t, []uint32{1, 2, 3, 4, 9, 10}, got)

	_, ok = mergeDisjoint([]uint32{1, 4, 9}, []uint32{2, 9})
	require.False(t, ok)
}

func TestValidate_WrongIndexCount(t *testing.T) {
	s, err := NewHashState(Eh48_5.Params(), testHeader(0))
	require.NoError(t, err)

	err = Validate(s, make([]uint32, 16))
	require.ErrorIs(t, err, ErrInvalidSolutionLength)
	require.False(t, IsValidSolution(s, make([]uint32, 33)))
}

func TestValidate_AllZeroIndices(t *testing.T) {
	// The trivial all-same solution collides everywhere and XORs to zero;
	// only the ordering rule rejects it.
	s, err := NewHashState(Eh48_5.Params(), testHeader(0))
	require.NoError(t, err)

	err = Validate(s, make([]uint32, 32))
	require.ErrorIs(t, err, ErrIndicesOutOfOrder)
}
