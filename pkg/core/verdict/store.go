package verdict

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/DeckerSU/equihashverify/pkg/core/types"
	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

var (
	ErrStoreClosed = errors.New("verdict store is closed")
)

// Store persists the outcome of previous verifications.
type Store interface {
	// Get returns the stored verdict for key. found is false if the key is unknown.
	Get(key types.Hash) (valid bool, found bool, err error)

	// Put records the verdict for key, overwriting any previous value.
	Put(key types.Hash, valid bool) error

	Close() error
}

// Key derives the verdict key for one verification input.
// Every field is length-delimited or fixed-width, so distinct inputs
// cannot produce the same encoding.
func Key(n, k uint32, header, solution []byte) types.Hash {
	var prefix [12]byte
	binary.LittleEndian.PutUint32(prefix[0:4], n)
	binary.LittleEndian.PutUint32(prefix[4:8], k)
	binary.LittleEndian.PutUint32(prefix[8:12], uint32(len(header)))
	return types.ComputeBlake2b256(prefix[:], header, solution)
}

// BadgerStore implements Store using BadgerDB.
type BadgerStore struct {
	db  *badger.DB
	log logrus.FieldLogger
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore creates or opens a BadgerDB store at the given path.
// If path is empty, it opens an in-memory store.
func NewBadgerStore(path string, log logrus.FieldLogger) (*BadgerStore, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	// Badger is chatty at info level.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open verdict store: %w", err)
	}

	log.WithFields(logrus.Fields{
		"path":     path,
		"inMemory": path == "",
	}).Info("Verdict store opened")

	return &BadgerStore{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Keys:
// Verdict: "verdict:<hex key>" -> 0x00 (invalid) | 0x01 (valid)

func verdictKey(key types.Hash) []byte {
	return []byte("verdict:" + key.Hex())
}

// Get implements Store.
func (s *BadgerStore) Get(key types.Hash) (bool, bool, error) {
	if s.db.IsClosed() {
		return false, false, ErrStoreClosed
	}

	var valid, found bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(verdictKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			if len(val) != 1 {
				return fmt.Errorf("corrupt verdict for %s: %d bytes", key, len(val))
			}
			found = true
			valid = val[0] == 1
			return nil
		})
	})
	if err != nil {
		return false, false, err
	}
	return valid, found, nil
}

// Put implements Store.
func (s *BadgerStore) Put(key types.Hash, valid bool) error {
	if s.db.IsClosed() {
		return ErrStoreClosed
	}

	val := []byte{0}
	if valid {
		val[0] = 1
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(verdictKey(key), val)
	})
}
