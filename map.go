// Package intmap provides a lock-free hash map from positive int32 keys
// to positive int32 values.
//
// All coordination is built from single-word compare-and-swap on
// individual cells and on a generation pointer; there are no mutexes.
// When a table fills up, whichever goroutines happen to be active grow
// it cooperatively, with no stop-the-world phase.
package intmap

import (
	"errors"
	"sync/atomic"
)

// Map is a concurrent mapping from positive int32 keys to positive
// int32 values. Any number of goroutines may call Get, Put and Remove
// concurrently without external locking.
//
// Concurrency model:
//   - Readers and writers coordinate purely through CAS on individual
//     key/value cells of the current generation.
//   - When a probe chain exceeds the bound, the table is too full; the
//     operation helps migrate every live cell into a generation of
//     double capacity, advances the handle and retries. The retry is
//     transparent and unbounded; contention is never surfaced to the
//     caller.
//   - The only blocking point is the migration barrier, a spin until
//     all cells of the old table have been claimed and moved.
//
// Superseded generations stay reachable from in-flight operations (via
// the old handle value or forward markers) and are reclaimed by the
// garbage collector once no goroutine can observe them.
//
// Map is not zero-value usable; construct it with New.
type Map struct {
	_   noCopy
	gen atomic.Pointer[generation]
}

var (
	// ErrInvalidKey is returned when a key is not a positive integer.
	ErrInvalidKey = errors.New("intmap: key must be positive")
	// ErrInvalidValue is returned when a value is outside the open
	// interval (0, tombstone sentinel).
	ErrInvalidValue = errors.New("intmap: value out of range")
)

// New creates a Map.
//
// Configuration options:
//   - WithCapacity(sizeHint): pre-allocate slot pairs to reduce early
//     growth rounds. Without it the map starts at the minimum capacity
//     of 2 slot pairs and doubles on demand.
//
// Example:
//
//	m := intmap.New(intmap.WithCapacity(1024))
//	prev, err := m.Put(5, 10)
func New(options ...func(*MapConfig)) *Map {
	var cfg MapConfig
	for _, o := range options {
		o(&cfg)
	}
	pairs := int32(minPairs)
	if cfg.capacity > minPairs {
		pairs = int32(nextPowOf2(cfg.capacity))
	}
	m := &Map{}
	m.gen.Store(newGeneration(pairs))
	return m
}

// Get returns the live value for key, or 0 if the key is absent.
// It fails with ErrInvalidKey if key is not positive.
//
// Get never blocks: it only re-reads CAS'd cell values and, when a cell
// has been forwarded by a migration, follows the chain into the newer
// generation.
func (m *Map) Get(key int32) (int32, error) {
	if key <= 0 {
		return 0, ErrInvalidKey
	}
	return m.gen.Load().load(key), nil
}

// Put installs value for key and returns the value that was present
// before (0 if none). It fails with ErrInvalidKey if key is not
// positive and with ErrInvalidValue if value is not in (0, MaxInt32).
//
// Put always succeeds eventually; growth and contention are handled by
// transparent retry.
func (m *Map) Put(key, value int32) (int32, error) {
	if key <= 0 {
		return 0, ErrInvalidKey
	}
	if value <= 0 || value >= tombstone {
		return 0, ErrInvalidValue
	}
	return m.update(key, value), nil
}

// Remove deletes key and returns the value that was present before
// (0 if none). It fails with ErrInvalidKey if key is not positive.
// Removing an absent key is a no-op that returns 0.
func (m *Map) Remove(key int32) (int32, error) {
	if key <= 0 {
		return 0, ErrInvalidKey
	}
	return m.update(key, tombstone), nil
}

// Capacity returns the number of slot pairs in the current generation.
// The capacity never shrinks. Intended for diagnostics and tests.
func (m *Map) Capacity() int {
	return int(m.gen.Load().pairs)
}

// update is the single caller-visible retry point: store against the
// current generation, and on "table too full" help the migration to
// completion, advance the handle and try again. Losers of the handle
// CAS simply observe the winner's generation; both are equivalent.
func (m *Map) update(key, value int32) int32 {
	for {
		g := m.gen.Load()
		if prev, ok := g.store(key, value); ok {
			return prev
		}
		next := g.migrate()
		m.gen.CompareAndSwap(g, next)
	}
}
