package intmap

import (
	"math"
	"math/bits"
	"sync/atomic"

	"github.com/llxisdsh/intmap/internal/opt"
)

const (
	// probeLimit bounds the linear probe chain. Exhausting it means
	// "table too full", never "key absent" for writers; readers use the
	// identical bound so bounded reads and writes stay consistent.
	probeLimit = 8

	// minPairs is the initial number of slot pairs.
	minPairs = 2

	// intPhi is the 32-bit golden ratio constant used to spread keys
	// across the index space.
	intPhi = 0x9E3779B1
)

// Value cells are tagged states packed into a single int32 so that one
// CAS covers every transition:
//
//	0                    empty, no value ever written
//	1 .. tombstone-1     live value
//	tombstone            key was removed
//	sign bit set         frozen, magnitude is the value being migrated
//	forwarded (MinInt32) cell fully moved, truth lives in next generation
//
// Transitions are monotone within a generation:
// empty → live ⇄ live → tombstone, then any state → frozen → forwarded.
// Forwarded is terminal.
const (
	tombstone int32 = math.MaxInt32
	frozenBit int32 = math.MinInt32
	forwarded int32 = math.MinInt32
)

// generation is one fixed-capacity open-addressed table. Pair i
// occupies cells[2i] (key) and cells[2i+1] (value); key 0 marks an
// unclaimed slot. Once superseded it stays readable through forward
// markers until the GC collects it.
type generation struct {
	cells []int32
	pairs int32  // slot pair count, power of two, never shrinks
	shift uint32 // 32 - log2(pairs); scales a hash to a pair index
	next  atomic.Pointer[generation]

	// Migration state. cursor counts down over pair indices, moved
	// counts finished pairs; padded apart so claiming and completing
	// do not false-share a cache line.
	_      [opt.CacheLineSize_]byte
	cursor atomic.Int32
	_      [opt.CacheLineSize_ - 4]byte
	moved  atomic.Int32
}

func newGeneration(pairs int32) *generation {
	g := &generation{
		cells: make([]int32, 2*pairs),
		pairs: pairs,
		shift: uint32(32 - bits.TrailingZeros32(uint32(pairs))),
	}
	g.cursor.Store(pairs)
	return g
}

// home returns the hash-derived starting pair index for key.
func (g *generation) home(key int32) int32 {
	return int32(uint32(key) * intPhi >> g.shift)
}

// load returns the live value for key in this generation, or 0 when
// the key is absent. Forward markers recurse into the next generation,
// which recomputes its own home index. A probe chain past the bound is
// treated the same as absent; writers force growth at the same bound,
// so no live key can sit beyond it.
func (g *generation) load(key int32) int32 {
	idx := g.home(key)
	mask := g.pairs - 1
	for range probeLimit {
		i := idx << 1
		k := atomic.LoadInt32(&g.cells[i])
		if k == key {
			v := atomic.LoadInt32(&g.cells[i+1])
			if v == forwarded {
				return g.next.Load().load(key)
			}
			if v < 0 {
				// Frozen mid-migration: the magnitude is still the
				// authoritative pre-migration value.
				v &^= frozenBit
			}
			if v == tombstone {
				return 0
			}
			return v
		}
		if k == 0 {
			return 0
		}
		idx = (idx + 1) & mask
	}
	return 0
}

// store installs value for key, returning the previous live value
// (0 if none). ok is false when the probe bound is exhausted or the
// target cell is frozen mid-migration; the caller must help the
// migration and retry against the next generation.
func (g *generation) store(key, value int32) (prev int32, ok bool) {
	idx := g.home(key)
	mask := g.pairs - 1
	for range probeLimit {
		i := idx << 1
		k := atomic.LoadInt32(&g.cells[i])
		if k == 0 {
			if atomic.CompareAndSwapInt32(&g.cells[i], 0, key) {
				k = key
			} else {
				// Lost the claim; the winner may have installed this
				// very key, so re-examine before probing on.
				k = atomic.LoadInt32(&g.cells[i])
			}
		}
		if k == key {
			return g.storeSlot(i+1, key, value)
		}
		idx = (idx + 1) & mask
	}
	return 0, false
}

// storeSlot publishes value into the value cell at vi, retrying lost
// CAS races with concurrent writers of the same key.
func (g *generation) storeSlot(vi, key, value int32) (int32, bool) {
	for {
		v := atomic.LoadInt32(&g.cells[vi])
		if v == forwarded {
			// The cell already moved; the next generation owns the key.
			return g.next.Load().store(key, value)
		}
		if v < 0 {
			// Frozen: a migrator claimed the cell, nothing can be
			// written here anymore.
			return 0, false
		}
		if atomic.CompareAndSwapInt32(&g.cells[vi], v, value) {
			if v == tombstone {
				v = 0
			}
			return v, true
		}
	}
}
