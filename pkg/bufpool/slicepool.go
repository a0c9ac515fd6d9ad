// Package bufpool provides sync.Pool-backed buffer pools for efficient
// memory reuse. This file implements tiered byte slice pooling similar to
// high-performance frameworks like gnet and fasthttp.
package bufpool

import (
	"math/bits"
	"sync"
)

// Pool sizes: powers of 2 from 64 bytes to 64KB (11 pools)
// Index 0 = 64 bytes (2^6)
// Index 10 = 64KB (2^16)
const (
	minBitSize = 6  // 2^6 = 64 bytes minimum
	maxBitSize = 16 // 2^16 = 64KB maximum
	poolSteps  = maxBitSize - minBitSize + 1

	// chunkSize is the read chunk handed out by GetChunk (8KB).
	chunkSize = 8 * 1024
)

// slicePools contains tiered pools for byte slices of different sizes
var slicePools [poolSteps]sync.Pool

func init() {
	for i := 0; i < poolSteps; i++ {
		size := 1 << (minBitSize + i)
		slicePools[i].New = func(s int) func() interface{} {
			return func() interface{} {
				buf := make([]byte, s)
				return &buf
			}
		}(size)
	}
}

// poolIndex returns the pool index for a given size
func poolIndex(size int) int {
	if size <= 1<<minBitSize {
		return 0
	}
	// Round up to next power of 2
	idx := bits.Len(uint(size - 1))
	if idx < minBitSize {
		return 0
	}
	idx -= minBitSize
	if idx >= poolSteps {
		return -1 // Too large for pool
	}
	return idx
}

// GetSlice retrieves a byte slice of at least the given size from the pool.
// The slice length is set to size, capacity may be larger (power of 2).
// Callers MUST call PutSlice when done to return the slice to the pool.
//
// Example:
//
//	buf := bufpool.GetSlice(1024)
//	defer bufpool.PutSlice(buf)
//	n, err := reader.Read(buf)
func GetSlice(size int) []byte {
	if size <= 0 {
		return nil
	}

	idx := poolIndex(size)
	if idx < 0 {
		// Too large for pool, allocate directly
		return make([]byte, size)
	}

	ptr := slicePools[idx].Get().(*[]byte)
	buf := *ptr
	return buf[:size]
}

// PutSlice returns a byte slice to the pool.
// The slice must have been obtained via GetSlice.
// Nil slices are safely ignored.
// Slices beyond the 64KB pool ceiling are not returned to prevent
// memory bloat.
func PutSlice(buf []byte) {
	if buf == nil {
		return
	}

	c := cap(buf)
	if c > 1<<maxBitSize || c < 1<<minBitSize {
		// Too large or too small for pool
		return
	}

	idx := poolIndex(c)
	if idx < 0 {
		return
	}

	// Reset to full capacity before returning
	buf = buf[:c]
	slicePools[idx].Put(&buf)
}

// GetChunk returns an 8KB slice sized for streaming body reads.
// Convenience wrapper over GetSlice; return it with PutSlice.
func GetChunk() []byte {
	return GetSlice(chunkSize)
}
