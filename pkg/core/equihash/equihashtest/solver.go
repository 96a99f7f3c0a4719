// Package equihashtest contains test fixtures for Equihash verification:
// a reference solver for small parameter sets and helpers that produce
// header/solution pairs known to verify.
//
// Nothing outside of tests should import this package.
package equihashtest

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/DeckerSU/equihashverify/pkg/core/equihash"
)

// MaxIndexBitLength bounds the parameter sets Solve accepts.
// Equihash(48,5) uses 9 bits and Equihash(96,5) uses 17;
// the remaining supported sets need memory far beyond a unit test.
const MaxIndexBitLength = 17

// row is a partial solution: the XOR of its leaves' collision windows
// and its indices in canonical tree order.
type row struct {
	words   []uint32
	indices []uint32
}

// Solve runs Wagner's algorithm over the full index domain of state and
// returns every solution that passes equihash.Validate.
// Solutions are in canonical order: at every tree level the left
// subtree holds the smaller first index.
func Solve(state *equihash.HashState) ([][]uint32, error) {
	p := state.Params()
	if p.IndexBitLength > MaxIndexBitLength {
		return nil, fmt.Errorf("%s: index domain of %d bits is too large for the reference solver", p, p.IndexBitLength)
	}

	domain := uint32(1) << p.IndexBitLength
	rows := make([]row, 0, domain)
	for i := uint32(0); i < domain; i++ {
		d, err := state.Digest(i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row{
			words:   p.CollisionWindows(d),
			indices: []uint32{i},
		})
	}

	// Keep the working set bounded in case of degenerate buckets.
	maxRows := 8 * int(domain)

	for level := uint32(0); level+1 < p.K; level++ {
		rows = collide(rows, level, false, maxRows)
	}
	candidates := collide(rows, p.K-1, true, maxRows)

	var sols [][]uint32
	for _, c := range candidates {
		if equihash.Validate(state, c.indices) != nil {
			continue
		}
		if slices.ContainsFunc(sols, func(s []uint32) bool { return slices.Equal(s, c.indices) }) {
			continue
		}
		sols = append(sols, c.indices)
	}
	return sols, nil
}

// collide pairs up rows that agree on window level (and, for the final
// round, on the last window too) and returns the joined rows.
func collide(rows []row, level uint32, final bool, maxRows int) []row {
	key := func(r row) (uint32, uint32) {
		if final {
			return r.words[level], r.words[level+1]
		}
		return r.words[level], 0
	}

	sort.Slice(rows, func(a, b int) bool {
		a0, a1 := key(rows[a])
		b0, b1 := key(rows[b])
		if a0 != b0 {
			return a0 < b0
		}
		return a1 < b1
	})

	var out []row
	for start := 0; start < len(rows); {
		s0, s1 := key(rows[start])
		end := start + 1
		for end < len(rows) {
			e0, e1 := key(rows[end])
			if e0 != s0 || e1 != s1 {
				break
			}
			end++
		}

		for a := start; a < end; a++ {
			for b := a + 1; b < end; b++ {
				joined, ok := join(rows[a], rows[b])
				if !ok {
					continue
				}
				out = append(out, joined)
				if len(out) >= maxRows {
					return out
				}
			}
		}
		start = end
	}
	return out
}

// join XORs two rows and concatenates their indices, smaller first index
// first. It reports false if the rows share an index.
func join(a, b row) (row, bool) {
	for _, x := range a.indices {
		if slices.Contains(b.indices, x) {
			return row{}, false
		}
	}

	words := make([]uint32, len(a.words))
	for i := range words {
		words[i] = a.words[i] ^ b.words[i]
	}

	first, second := a.indices, b.indices
	if second[0] < first[0] {
		first, second = second, first
	}
	indices := make([]uint32, 0, len(first)+len(second))
	indices = append(indices, first...)
	indices = append(indices, second...)

	return row{words: words, indices: indices}, true
}

// Fixture is a header and a solution that verifies for it.
type Fixture struct {
	Params   equihash.Params
	Header   []byte
	Solution []byte
	Indices  []uint32
}

// ErrNoSolution is returned by FindSolution when no nonce in range has a solution.
var ErrNoSolution = errors.New("no equihash solution found within nonce range")

// FindSolution searches nonces 0..maxNonces-1 of BaseHeader for the
// first header with a solution under p.
func FindSolution(p equihash.Params, maxNonces int) (*Fixture, error) {
	h := BaseHeader()
	for nonce := 0; nonce < maxNonces; nonce++ {
		h.SetNonce(uint64(nonce))
		hdr := h.Serialize()

		state, err := equihash.NewHashState(p, hdr)
		if err != nil {
			return nil, err
		}
		sols, err := Solve(state)
		if err != nil {
			return nil, err
		}
		if len(sols) == 0 {
			continue
		}

		packed, err := equihash.PackIndices(p, sols[0])
		if err != nil {
			return nil, err
		}
		return &Fixture{
			Params:   p,
			Header:   hdr,
			Solution: packed,
			Indices:  sols[0],
		}, nil
	}
	return nil, fmt.Errorf("%s: %w", p, ErrNoSolution)
}

// Clone returns a deep copy of f, so a test may corrupt it freely.
func (f *Fixture) Clone() *Fixture {
	return &Fixture{
		Params:   f.Params,
		Header:   bytes.Clone(f.Header),
		Solution: bytes.Clone(f.Solution),
		Indices:  slices.Clone(f.Indices),
	}
}
