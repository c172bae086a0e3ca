package pool

import (
	"sync"
	"testing"
)

func TestGetPut_ExactSize(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"0B", 0},
		{"100B", 100},
		{"4K", 4096},
		{"64K", 65536},
		{"1M", 1048576},
		{"3000B", 3000},
		{"2M", 2 * 1048576},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Get(tt.size)
			if len(b) != tt.size {
				t.Errorf("Get(%d): len = %d, want %d", tt.size, len(b), tt.size)
			}
			Put(b)
		})
	}
}

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{1, 0},
		{4096, 0},
		{4097, 1},
		{65536, 1},
		{65537, 2},
		{4 * Size1M, 2},
	}
	for _, tt := range tests {
		if got := bucketIndex(tt.size); got != tt.want {
			t.Errorf("bucketIndex(%d) = %d, want %d", tt.size, got, tt.want)
		}
		b := Get(tt.size)
		if cap(b) < sizes[tt.want] && cap(b) < tt.size {
			t.Errorf("Get(%d): cap = %d, too small", tt.size, cap(b))
		}
		Put(b)
	}
}

func TestPut_SmallSlice(t *testing.T) {
	Put(make([]byte, 100))
	Put(make([]byte, 0, 10))
	Put(nil)

	b := Get(256)
	if len(b) != 256 {
		t.Errorf("Get(256) after small Put: len = %d, want 256", len(b))
	}
	Put(b)
}

func TestGetFloat32_Zeroed(t *testing.T) {
	s := GetFloat32(64)
	for i := range s {
		s[i] = float32(i) + 1
	}
	PutFloat32(s)

	for _, length := range []int{0, 1, 32, 64, 1000} {
		s := GetFloat32(length)
		if len(s) != length {
			t.Errorf("GetFloat32(%d): len = %d", length, len(s))
		}
		for i, v := range s {
			if v != 0 {
				t.Fatalf("GetFloat32(%d)[%d] = %v, want 0", length, i, v)
			}
		}
		PutFloat32(s)
	}
}

func TestConcurrency(t *testing.T) {
	const goroutines = 16
	const iterations = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				for _, size := range []int{128, 5000, 70000} {
					b := Get(size)
					if len(b) != size {
						t.Errorf("concurrent Get(%d): len = %d", size, len(b))
						return
					}
					for j := range b {
						b[j] = byte(j)
					}
					Put(b)
				}
				f := GetFloat32(300)
				f[299] = 1
				PutFloat32(f)
			}
		}()
	}
	wg.Wait()
}
