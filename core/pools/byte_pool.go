package pools

import "sync"

// BytePool is a tiered pool of fixed-length byte slices used as socket read chunks
type BytePool struct {
	pools []*sync.Pool
	sizes []int
}

// Read chunk size classes
var defaultSizes = []int{
	2048,  // one read of a typical request
	8192,  // requests with small bodies
	32768, // uploads
}

// NewBytePool creates a byte pool with the default size tiers
func NewBytePool() *BytePool {
	return NewBytePoolWithSizes(defaultSizes)
}

// NewBytePoolWithSizes creates a byte pool with custom size tiers, smallest first
func NewBytePoolWithSizes(sizes []int) *BytePool {
	bp := &BytePool{
		pools: make([]*sync.Pool, len(sizes)),
		sizes: sizes,
	}

	for i, size := range sizes {
		sz := size
		bp.pools[i] = &sync.Pool{
			New: func() any {
				buf := make([]byte, sz)
				return &buf
			},
		}
	}

	return bp
}

// Get returns a slice of length size. Sizes above the largest tier are
// allocated directly and never pooled.
func (bp *BytePool) Get(size int) []byte {
	for i, poolSize := range bp.sizes {
		if size <= poolSize {
			buf := *bp.pools[i].Get().(*[]byte)
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put returns a slice obtained from Get
func (bp *BytePool) Put(buf []byte) {
	capacity := cap(buf)
	for i, poolSize := range bp.sizes {
		if capacity == poolSize {
			buf = buf[:capacity]
			bp.pools[i].Put(&buf)
			return
		}
	}
}

var globalBytePool = NewBytePool()

// GetBytes gets a slice from the global pool
func GetBytes(size int) []byte {
	return globalBytePool.Get(size)
}

// PutBytes returns a slice to the global pool
func PutBytes(buf []byte) {
	globalBytePool.Put(buf)
}
