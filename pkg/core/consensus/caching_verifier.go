package consensus

import (
	"github.com/DeckerSU/equihashverify/pkg/core/equihash"
	"github.com/DeckerSU/equihashverify/pkg/core/verdict"
	"github.com/sirupsen/logrus"
)

// CachingVerifier wraps a PoWVerifier with a verdict store.
// The store only saves work: a store failure is logged and the
// solution is verified directly, so it never changes a verdict.
type CachingVerifier struct {
	inner PoWVerifier
	store verdict.Store
	log   logrus.FieldLogger
}

var _ PoWVerifier = (*CachingVerifier)(nil)

// NewCachingVerifier returns a CachingVerifier over inner.
// The store is shared, not owned: Close does not close it.
func NewCachingVerifier(inner PoWVerifier, store verdict.Store, log logrus.FieldLogger) *CachingVerifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := inner.Params()
	return &CachingVerifier{
		inner: inner,
		store: store,
		log:   log.WithFields(logrus.Fields{"n": p.N, "k": p.K}),
	}
}

// Verify implements PoWVerifier.
func (c *CachingVerifier) Verify(header, solution []byte) (bool, error) {
	p := c.inner.Params()
	key := verdict.Key(p.N, p.K, header, solution)

	valid, found, err := c.store.Get(key)
	switch {
	case err != nil:
		c.log.WithError(err).WithField("key", key).Warn("Verdict lookup failed")
	case found:
		return valid, nil
	}

	valid, err = c.inner.Verify(header, solution)
	if err != nil {
		return false, err
	}

	if err := c.store.Put(key, valid); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Verdict store failed")
	}
	return valid, nil
}

// Params implements PoWVerifier.
func (c *CachingVerifier) Params() equihash.Params {
	return c.inner.Params()
}

// Close closes the wrapped verifier.
func (c *CachingVerifier) Close() error {
	return c.inner.Close()
}
