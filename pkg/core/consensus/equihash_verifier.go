package consensus

import (
	"github.com/DeckerSU/equihashverify/pkg/core/equihash"
	"github.com/sirupsen/logrus"
)

// EquihashVerifier implements PoWVerifier by running the Equihash
// solution check directly.
type EquihashVerifier struct {
	v   *equihash.Verifier
	log logrus.FieldLogger
}

var _ PoWVerifier = (*EquihashVerifier)(nil)

// NewEquihashVerifier returns an EquihashVerifier for parameter set s.
func NewEquihashVerifier(s equihash.ParamSet, log logrus.FieldLogger) *EquihashVerifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	v := equihash.NewVerifierForSet(s)
	p := v.Params()
	return &EquihashVerifier{
		v:   v,
		log: log.WithFields(logrus.Fields{"n": p.N, "k": p.K}),
	}
}

// Verify implements PoWVerifier. It never returns an error.
func (e *EquihashVerifier) Verify(header, solution []byte) (bool, error) {
	if err := e.v.Check(header, solution); err != nil {
		e.log.WithError(err).Debug("Rejected solution")
		return false, nil
	}
	return true, nil
}

// Params implements PoWVerifier.
func (e *EquihashVerifier) Params() equihash.Params {
	return e.v.Params()
}

// Close is a no-op for EquihashVerifier.
func (e *EquihashVerifier) Close() error { return nil }
