package equihash

// Verify reports whether solution is a valid Equihash(n, k) solution for header.
//
// An unsupported (n, k) pair is returned as an error. A header or solution
// of the wrong shape is not an error: it is simply not a valid solution.
func Verify(header, solution []byte, n, k uint32) (bool, error) {
	v, err := NewVerifier(n, k)
	if err != nil {
		return false, err
	}
	return v.Verify(header, solution), nil
}

// VerifyDefault is Verify with the default Equihash(200, 9) parameters.
func VerifyDefault(header, solution []byte) (bool, error) {
	return Verify(header, solution, DefaultN, DefaultK)
}

// Verifier verifies solutions for one fixed parameter set.
// The zero value is not usable; a Verifier is safe for concurrent use.
type Verifier struct {
	params Params
}

// NewVerifier returns a Verifier for a supported (n, k) pair.
func NewVerifier(n, k uint32) (*Verifier, error) {
	p, err := LookupParams(n, k)
	if err != nil {
		return nil, err
	}
	return &Verifier{params: p}, nil
}

// NewVerifierForSet returns a Verifier for s.
func NewVerifierForSet(s ParamSet) *Verifier {
	return &Verifier{params: s.Params()}
}

// Params returns the verifier's parameter set.
func (v *Verifier) Params() Params {
	return v.params
}

// Verify reports whether solution is valid for header.
func (v *Verifier) Verify(header, solution []byte) bool {
	return v.Check(header, solution) == nil
}

// Check returns nil if solution is valid for header, or the reason it is not.
// The reason is diagnostic only; callers deciding validity should use Verify.
func (v *Verifier) Check(header, solution []byte) error {
	// 1. Header shape.
	if len(header) != HeaderSize {
		return ErrInvalidHeaderLength
	}

	// 2. Solution shape, then decode.
	indices, err := UnpackIndices(v.params, solution)
	if err != nil {
		return err
	}

	// 3. Prime the hash state with the header.
	state, err := NewHashState(v.params, header)
	if err != nil {
		return err
	}

	// 4. Walk the solution tree.
	return Validate(state, indices)
}
