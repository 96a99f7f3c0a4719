package consensus

import (
	"context"
	"runtime"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"
)

// Candidate is one header/solution pair submitted for verification.
type Candidate struct {
	Header   []byte
	Solution []byte
}

// BatchVerifier runs a PoWVerifier over many candidates on a bounded
// number of goroutines.
type BatchVerifier struct {
	verifier PoWVerifier
	workers  int
}

// NewBatchVerifier returns a BatchVerifier. workers <= 0 means GOMAXPROCS.
func NewBatchVerifier(v PoWVerifier, workers int) *BatchVerifier {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &BatchVerifier{verifier: v, workers: workers}
}

// Workers returns the concurrency limit.
func (b *BatchVerifier) Workers() int { return b.workers }

// VerifyBatch verifies every candidate. Bit i of the result is set iff
// candidates[i] is valid. The first verifier error, or ctx.Err() if ctx is
// cancelled first, aborts the batch.
func (b *BatchVerifier) VerifyBatch(ctx context.Context, candidates []Candidate) (*bitset.BitSet, error) {
	results := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := b.verifier.Verify(candidates[i].Header, candidates[i].Solution)
			if err != nil {
				return err
			}
			results[i] = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may stop on a cancelled parent before any goroutine sees it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set := bitset.New(uint(len(candidates)))
	for i, ok := range results {
		if ok {
			set.Set(uint(i))
		}
	}
	return set, nil
}
