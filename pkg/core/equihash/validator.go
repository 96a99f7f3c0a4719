package equihash

import "fmt"

// node is one subtree of a solution: a contiguous run of 2^level indices.
type node struct {
	// words is the XOR of the leaf digests below this node,
	// one CollisionBitLength-bit word per collision window.
	words []uint32

	// sorted holds the covered indices in ascending order.
	sorted []uint32
}

func (n *node) min() uint32 {
	return n.sorted[0]
}

// IsValidSolution reports whether indices form a valid solution for state.
func IsValidSolution(state *HashState, indices []uint32) bool {
	return Validate(state, indices) == nil
}

// Validate checks indices against state and returns the first rule the
// solution breaks, or nil.
//
// The solution is a perfect binary tree over the index sequence. Every
// pair of sibling subtrees at level i must collide on window i of their
// XORed digests, the left subtree's smallest index must be below the
// right subtree's smallest index, and the two subtrees must not share an
// index. The root's XORed digest must be zero.
func Validate(state *HashState, indices []uint32) error {
	p := state.params
	if uint32(len(indices)) != p.IndicesPerSolution {
		return fmt.Errorf("%w: got %d indices, want %d", ErrInvalidSolutionLength, len(indices), p.IndicesPerSolution)
	}

	leaves := newLeafHasher(state)
	v := treeValidator{
		params: p,
		leaf:   leaves.words,
	}
	return v.validate(indices)
}

type treeValidator struct {
	params Params

	// leaf returns the collision windows of one index's digest.
	leaf func(index uint32) ([]uint32, error)
}

func (v *treeValidator) validate(indices []uint32) error {
	root, err := v.subtree(indices, v.params.K)
	if err != nil {
		return err
	}

	for i, w := range root.words {
		if w != 0 {
			return fmt.Errorf("%w: window %d", ErrNonZeroXOR, i)
		}
	}
	return nil
}

// subtree validates indices as a subtree of the given level
// (len(indices) == 2^level) and returns its combined node.
func (v *treeValidator) subtree(indices []uint32, level uint32) (*node, error) {
	if level == 0 {
		words, err := v.leaf(indices[0])
		if err != nil {
			return nil, err
		}
		return &node{words: words, sorted: indices[:1:1]}, nil
	}

	half := len(indices) / 2
	left, err := v.subtree(indices[:half], level-1)
	if err != nil {
		return nil, err
	}
	right, err := v.subtree(indices[half:], level-1)
	if err != nil {
		return nil, err
	}
	return v.merge(left, right, level-1)
}

// merge joins two siblings whose own level is childLevel.
func (v *treeValidator) merge(left, right *node, childLevel uint32) (*node, error) {
	if left.words[childLevel] != right.words[childLevel] {
		return nil, fmt.Errorf("%w: level %d", ErrCollisionMismatch, childLevel)
	}

	if left.min() >= right.min() {
		return nil, fmt.Errorf("%w: level %d: %d >= %d", ErrIndicesOutOfOrder, childLevel, left.min(), right.min())
	}

	sorted, ok := mergeDisjoint(left.sorted, right.sorted)
	if !ok {
		return nil, fmt.Errorf("%w: level %d", ErrDuplicateIndices, childLevel)
	}

	words := make([]uint32, len(left.words))
	for i := range words {
		words[i] = left.words[i] ^ right.words[i]
	}

	return &node{words: words, sorted: sorted}, nil
}

// mergeDisjoint merges two ascending slices, reporting false if they
// share an element.
func mergeDisjoint(a, b []uint32) ([]uint32, bool) {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			return nil, false
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out, true
}
