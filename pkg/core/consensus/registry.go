package consensus

import (
	"errors"
	"sync"

	"github.com/DeckerSU/equihashverify/pkg/config"
	"github.com/DeckerSU/equihashverify/pkg/core/equihash"
	"github.com/DeckerSU/equihashverify/pkg/core/verdict"
	"github.com/sirupsen/logrus"
)

var ErrRegistryClosed = errors.New("verifier registry is closed")

// Registry hands out one PoWVerifier per supported parameter set,
// creating each on first use. All verifiers share the registry's
// verdict store, if any.
type Registry struct {
	mu        sync.Mutex
	verifiers map[equihash.ParamSet]PoWVerifier
	defaults  equihash.ParamSet
	store     verdict.Store
	log       logrus.FieldLogger
	closed    bool
}

// NewRegistry builds a Registry from cfg. When the cache is enabled it
// opens the badger verdict store at cfg.Cache.Path.
func NewRegistry(cfg *config.Config, log logrus.FieldLogger) (*Registry, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	p, err := cfg.Params()
	if err != nil {
		return nil, err
	}

	var store verdict.Store
	if cfg.Cache.Enabled {
		s, err := verdict.NewBadgerStore(cfg.Cache.Path, log)
		if err != nil {
			return nil, err
		}
		store = s
	}

	return NewRegistryWithStore(p.Set, store, log), nil
}

// NewRegistryWithStore returns a Registry whose default set is def.
// store may be nil, in which case verdicts are not cached.
// The registry takes ownership of store.
func NewRegistryWithStore(def equihash.ParamSet, store verdict.Store, log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithFields(logrus.Fields{
		"default": def.Params().String(),
		"cached":  store != nil,
	}).Info("Verifier registry ready")

	return &Registry{
		verifiers: make(map[equihash.ParamSet]PoWVerifier),
		defaults:  def,
		store:     store,
		log:       log,
	}
}

// Get returns the verifier for Equihash(n, k). It fails with an error
// wrapping equihash.ErrUnsupportedParameters for unknown pairs.
func (r *Registry) Get(n, k uint32) (PoWVerifier, error) {
	p, err := equihash.LookupParams(n, k)
	if err != nil {
		return nil, err
	}
	return r.forSet(p.Set)
}

// Default returns the verifier for the configured default parameters.
func (r *Registry) Default() (PoWVerifier, error) {
	return r.forSet(r.defaults)
}

// DefaultParams returns the configured default parameters.
func (r *Registry) DefaultParams() equihash.Params {
	return r.defaults.Params()
}

func (r *Registry) forSet(s equihash.ParamSet) (PoWVerifier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	if v, ok := r.verifiers[s]; ok {
		return v, nil
	}

	var v PoWVerifier = NewEquihashVerifier(s, r.log)
	if r.store != nil {
		v = NewCachingVerifier(v, r.store, r.log)
	}
	r.verifiers[s] = v

	r.log.WithField("params", s.Params().String()).Debug("Verifier created")
	return v, nil
}

// Close closes every verifier handed out and then the verdict store.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var firstErr error
	for _, v := range r.verifiers {
		if err := v.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
