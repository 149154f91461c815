package intmap

// ============================================================================
// Configuration
// ============================================================================

// MapConfig defines configurable options for Map construction.
type MapConfig struct {
	// capacity provides an estimate of the expected number of entries.
	// It is used to pre-allocate the initial generation, reducing early
	// growth rounds while the map warms up.
	// If zero or negative, the minimum capacity of 2 slot pairs is used.
	// The actual capacity is rounded up to the next power of 2.
	capacity int
}

// WithCapacity configures a new Map instance with capacity enough to
// hold cap entries before the first growth round. The capacity is a
// lower bound, the underlying table never shrinks below it. If cap is
// zero or negative, the value is ignored.
func WithCapacity(cap int) func(*MapConfig) {
	return func(c *MapConfig) {
		c.capacity = cap
	}
}
