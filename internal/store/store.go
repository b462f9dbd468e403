// Package store provides the persistent block store: a thin wrapper over
// an embedded key-value engine keyed by raw 32-byte references.
package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/sirupsen/logrus"

	"github.com/apsisnet/apsis/eris"
)

// ErrNotFound is returned by ReadBlock when no block exists for the given
// reference.
var ErrNotFound = errors.New("store: block not found")

// Store persists ERIS blocks keyed by their reference.
type Store struct {
	db  *pebble.DB
	log *logrus.Entry
}

// Open opens (creating if necessary) a Pebble instance rooted at dir.
func Open(dir string, log *logrus.Entry) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dir, err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{db: db, log: log.WithField("component", "store")}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// WriteBlock persists block under ref, satisfying eris.WriteBlockFunc's
// underlying storage contract. Writing an existing reference with
// identical bytes is a cheap no-op; the key is content-addressed, so a
// differing value under an existing reference would indicate a hash
// collision and is left to the caller to treat as unreachable.
func (s *Store) WriteBlock(ref eris.Reference, block []byte) (int, error) {
	existing, closer, err := s.db.Get(ref[:])
	if err == nil {
		defer closer.Close()
		if bytes.Equal(existing, block) {
			return len(block), nil
		}
	} else if !errors.Is(err, pebble.ErrNotFound) {
		return 0, fmt.Errorf("store: get %s: %w", ref, err)
	}

	if err := s.db.Set(ref[:], block, pebble.Sync); err != nil {
		return 0, fmt.Errorf("store: set %s: %w", ref, err)
	}
	return len(block), nil
}

// ReadBlock returns the stored bytes for ref, or ErrNotFound if absent.
func (s *Store) ReadBlock(ref eris.Reference) ([]byte, error) {
	v, closer, err := s.db.Get(ref[:])
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get %s: %w", ref, err)
	}
	defer closer.Close()

	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

// Has reports whether a block is present for ref without copying its
// value.
func (s *Store) Has(ref eris.Reference) (bool, error) {
	_, closer, err := s.db.Get(ref[:])
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	closer.Close()
	return true, nil
}
