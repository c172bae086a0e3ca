// Package pool provides bucketed sync.Pool instances for scratch buffers:
// byte buffers for reassembling chunked profile payloads and float32 rows
// for windowed metric computation.
package pool

import "sync"

// Byte buffer size classes. Embedded ICC profiles are typically a few
// kilobytes, occasionally up to a megabyte for LUT-based profiles.
const (
	Size4K  = 4096
	Size64K = 65536
	Size1M  = 1048576
)

var sizes = [3]int{Size4K, Size64K, Size1M}

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size4K:
		return 0
	case size <= Size64K:
		return 1
	default:
		return 2
	}
}

var pools [3]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice of length size from the pool. The caller must
// call Put when done and must not retain the slice afterwards.
func Get(size int) []byte {
	bp := pools[bucketIndex(size)].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		return make([]byte, size)
	}
	return b[:size]
}

// Put returns a byte slice obtained from Get. Slices smaller than the
// smallest size class are dropped.
func Put(b []byte) {
	c := cap(b)
	if c < Size4K {
		return
	}
	b = b[:c]
	pools[bucketIndex(c)].Put(&b)
}

var float32Pool sync.Pool

// GetFloat32 returns a zeroed float32 slice of the requested length.
func GetFloat32(length int) []float32 {
	if v := float32Pool.Get(); v != nil {
		s := *(v.(*[]float32))
		if cap(s) >= length {
			s = s[:length]
			clear(s)
			return s
		}
	}
	return make([]float32, length)
}

// PutFloat32 returns a slice obtained from GetFloat32.
func PutFloat32(s []float32) {
	if cap(s) == 0 {
		return
	}
	float32Pool.Put(&s)
}
