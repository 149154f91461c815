//go:build intmap_cachelinesize_256

package opt

// CacheLineSize_ forced to 256 bytes via the intmap_cachelinesize_256 tag.
const CacheLineSize_ = 256
