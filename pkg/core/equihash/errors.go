package equihash

import "errors"

// Errors from parameter lookup and Verifier.Check, possibly wrapped;
// test with errors.Is.
var (
	ErrUnsupportedParameters = errors.New("unsupported equihash parameters")
	ErrInvalidParameters     = errors.New("invalid equihash parameters")
	ErrInvalidHeaderLength   = errors.New("header must be exactly 140 bytes")
	ErrInvalidSolutionLength = errors.New("solution length does not match parameters")
	ErrIndexOutOfRange       = errors.New("solution index exceeds index domain")
	ErrCollisionMismatch     = errors.New("sibling digests do not collide on the level window")
	ErrIndicesOutOfOrder     = errors.New("left subtree index is not below right subtree index")
	ErrDuplicateIndices      = errors.New("solution contains duplicate indices")
	ErrNonZeroXOR            = errors.New("root digest does not xor to zero")
)
