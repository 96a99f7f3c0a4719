package equihashtest

import (
	"sync"
	"testing"

	"github.com/DeckerSU/equihashverify/pkg/core/equihash"
	"github.com/DeckerSU/equihashverify/pkg/core/types"
)

// DefaultMaxNonces is how many nonces MustFixture tries.
// Equihash(48,5) averages close to two solutions per nonce.
const DefaultMaxNonces = 256

// BaseHeader returns the header every fixture starts from.
// Only the nonce varies between attempts.
func BaseHeader() *types.Header {
	return &types.Header{
		Version:       4,
		PrevBlockHash: types.Hash{0x01},
		MerkleRoot:    types.Hash{0x02},
		Time:          1_700_000_000,
		Bits:          0x200f0f0f,
	}
}

var (
	fixtureMu    sync.Mutex
	fixtureCache = map[equihash.ParamSet]*Fixture{}
)

// MustFixture returns a verified fixture for s, solving at most once per
// process. The returned value is a copy the caller may modify.
func MustFixture(tb testing.TB, s equihash.ParamSet) *Fixture {
	tb.Helper()

	fixtureMu.Lock()
	defer fixtureMu.Unlock()

	if f, ok := fixtureCache[s]; ok {
		return f.Clone()
	}

	f, err := FindSolution(s.Params(), DefaultMaxNonces)
	if err != nil {
		tb.Fatalf("equihashtest: %v", err)
	}
	fixtureCache[s] = f
	return f.Clone()
}
