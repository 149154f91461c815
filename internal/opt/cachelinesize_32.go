//go:build intmap_cachelinesize_32

package opt

// CacheLineSize_ forced to 32 bytes via the intmap_cachelinesize_32 tag.
const CacheLineSize_ = 32
