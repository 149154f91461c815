package intmap

import (
	"sync/atomic"
)

// migrate drives the cooperative growth protocol on g and returns the
// fully migrated next generation.
//
// Every participant, whether or not it personally moved any pairs:
//  1. ensures the next generation of double capacity exists (CAS on
//     the next pointer, installed at most once per round),
//  2. claims pair indices off the shared countdown cursor and moves
//     them one at a time,
//  3. spins until the completion counter covers the whole table.
//
// The barrier trades a bounded busy-wait for amortizing migration cost
// across contending goroutines; no participant proceeds before every
// live cell has moved.
func (g *generation) migrate() *generation {
	next := g.next.Load()
	if next == nil {
		fresh := newGeneration(g.pairs << 1)
		g.next.CompareAndSwap(nil, fresh)
		next = g.next.Load()
	}
	for {
		idx := g.cursor.Add(-1)
		if idx < 0 {
			break
		}
		g.migratePair(idx, next)
		g.moved.Add(1)
	}
	var spins int
	for g.moved.Load() < g.pairs {
		delay(&spins)
	}
	return next
}

// migratePair moves one slot pair into next, exactly once. Freezing
// the value cell first makes the copy idempotent under racing writers:
// the freeze CAS retries until it lands, and after that no writer can
// change the cell again.
func (g *generation) migratePair(idx int32, next *generation) {
	vi := idx<<1 + 1
	var v int32
	for {
		v = atomic.LoadInt32(&g.cells[vi])
		if atomic.CompareAndSwapInt32(&g.cells[vi], v, v|frozenBit) {
			break
		}
	}
	if v == 0 || v == tombstone {
		// Nothing live to carry. A frozen empty cell is already the
		// forward marker, and a frozen tombstone stays dead here.
		return
	}
	key := atomic.LoadInt32(&g.cells[vi-1])
	// Capacity doubling guarantees room in next; if a pathological
	// probe chain still fills it, help it grow and copy one level
	// deeper. The forward marker chain keeps reads correct either way.
	dst := next
	for {
		if _, ok := dst.store(key, v); ok {
			break
		}
		dst = dst.migrate()
	}
	atomic.StoreInt32(&g.cells[vi], forwarded)
}
