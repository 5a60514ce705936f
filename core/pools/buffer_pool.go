package pools

import (
	"sync"
	"sync/atomic"
)

// Response buffer size tiers
const (
	SmallBufferSize  = 2 * 1024  // status line and headers only
	MediumBufferSize = 8 * 1024  // echo and small files
	LargeBufferSize  = 32 * 1024 // larger files
)

// BufferPool manages growable serialization buffers in three capacity tiers
type BufferPool struct {
	small  sync.Pool
	medium sync.Pool
	large  sync.Pool

	smallHits  atomic.Uint64
	mediumHits atomic.Uint64
	largeHits  atomic.Uint64
	oversized  atomic.Uint64
}

// NewBufferPool creates a new buffer pool
func NewBufferPool() *BufferPool {
	return &BufferPool{
		small:  sync.Pool{New: newBuffer(SmallBufferSize)},
		medium: sync.Pool{New: newBuffer(MediumBufferSize)},
		large:  sync.Pool{New: newBuffer(LargeBufferSize)},
	}
}

func newBuffer(capacity int) func() any {
	return func() any {
		buf := make([]byte, 0, capacity)
		return &buf
	}
}

// Get acquires an empty buffer sized for estimatedSize
func (bp *BufferPool) Get(estimatedSize int) *[]byte {
	switch {
	case estimatedSize <= SmallBufferSize:
		bp.smallHits.Add(1)
		return bp.small.Get().(*[]byte)
	case estimatedSize <= MediumBufferSize:
		bp.mediumHits.Add(1)
		return bp.medium.Get().(*[]byte)
	case estimatedSize <= LargeBufferSize:
		bp.largeHits.Add(1)
		return bp.large.Get().(*[]byte)
	default:
		bp.oversized.Add(1)
		buf := make([]byte, 0, estimatedSize)
		return &buf
	}
}

// Put returns a buffer to the tier matching its capacity.
// Buffers that grew past LargeBufferSize are left to the GC.
func (bp *BufferPool) Put(buf *[]byte) {
	if buf == nil {
		return
	}

	*buf = (*buf)[:0]

	c := cap(*buf)
	switch {
	case c < SmallBufferSize:
		// too small for any tier
	case c < MediumBufferSize:
		bp.small.Put(buf)
	case c < LargeBufferSize:
		bp.medium.Put(buf)
	case c == LargeBufferSize:
		bp.large.Put(buf)
	}
}

// Stats returns buffer pool statistics
func (bp *BufferPool) Stats() BufferStats {
	return BufferStats{
		SmallHits:  bp.smallHits.Load(),
		MediumHits: bp.mediumHits.Load(),
		LargeHits:  bp.largeHits.Load(),
		Oversized:  bp.oversized.Load(),
	}
}

// BufferStats counts Get calls per tier
type BufferStats struct {
	SmallHits  uint64
	MediumHits uint64
	LargeHits  uint64
	Oversized  uint64
}

var globalBufferPool = NewBufferPool()

// AcquireBuffer gets a buffer from the global pool
func AcquireBuffer(estimatedSize int) *[]byte {
	return globalBufferPool.Get(estimatedSize)
}

// ReleaseBuffer returns a buffer to the global pool
func ReleaseBuffer(buf *[]byte) {
	globalBufferPool.Put(buf)
}

// GetBufferStats returns statistics for the global buffer pool
func GetBufferStats() BufferStats {
	return globalBufferPool.Stats()
}
