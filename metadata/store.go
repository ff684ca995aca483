// Package metadata stores per-iteration optimizer snapshots. Values are
// encoded as canonical CBOR and keyed by iteration index.
package metadata

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store persists one encoded value per iteration.
type Store interface {
	// Insert encodes value and stores it at iteration, replacing any
	// previous value.
	Insert(iteration int, value any) error

	// Get decodes the value stored at iteration into out. It reports false
	// when nothing is stored there.
	Get(iteration int, out any) (bool, error)

	Close() error
}

// StoreError describes a failed store operation.
type StoreError struct {
	Op        string
	Iteration int
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("metadata: %s iteration %d: %v", e.Op, e.Iteration, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Load reads the value stored at iteration as an S. It returns nil when
// nothing is stored there.
func Load[S any](s Store, iteration int) (*S, error) {
	var v S
	ok, err := s.Get(iteration, &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}
