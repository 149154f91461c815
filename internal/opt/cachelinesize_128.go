//go:build intmap_cachelinesize_128

package opt

// CacheLineSize_ forced to 128 bytes via the intmap_cachelinesize_128 tag.
const CacheLineSize_ = 128
