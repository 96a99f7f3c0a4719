package consensus

import "github.com/DeckerSU/equihashverify/pkg/core/equihash"

// PoWVerifier checks proof-of-work solutions for block headers.
// Implementations include EquihashVerifier (direct) and CachingVerifier
// (memoized through a verdict store).
type PoWVerifier interface {
	// Verify reports whether solution is a valid proof of work for header.
	// A malformed header or solution is reported as false, not as an error;
	// the error is reserved for failures of the verifier itself.
	Verify(header, solution []byte) (bool, error)

	// Params returns the Equihash parameters this verifier enforces.
	Params() equihash.Params

	// Close releases any resources held by the verifier.
	Close() error
}
