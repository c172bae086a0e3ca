package threadpool

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_VisitsEveryTask(t *testing.T) {
	for _, p := range []*Pool{nil, New(1), New(3), New(0)} {
		seen := make([]int32, 100)
		err := p.Run(len(seen), func(i int) error {
			atomic.AddInt32(&seen[i], 1)
			return nil
		})
		require.NoError(t, err)
		for i, c := range seen {
			assert.Equal(t, int32(1), c, "task %d with %d workers", i, p.Workers())
		}
	}
}

func TestRun_LimitsConcurrency(t *testing.T) {
	p := New(2)
	var running, peak int32
	var mu sync.Mutex
	err := p.Run(20, func(int) error {
		n := atomic.AddInt32(&running, 1)
		mu.Lock()
		peak = max(peak, n)
		mu.Unlock()
		for i := 0; i < 1000; i++ {
			_ = i * i
		}
		atomic.AddInt32(&running, -1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, int32(2))
}

func TestRun_ReturnsError(t *testing.T) {
	errBoom := errors.New("boom")
	for _, p := range []*Pool{nil, New(4)} {
		err := p.Run(50, func(i int) error {
			if i == 7 {
				return errBoom
			}
			return nil
		})
		assert.ErrorIs(t, err, errBoom)
	}
}

func TestRunRange_CoversRange(t *testing.T) {
	for _, workers := range []int{1, 3, 8, 64} {
		p := New(workers)
		var covered [37]int32
		err := p.RunRange(len(covered), func(start, end int) error {
			assert.Less(t, start, end)
			for i := start; i < end; i++ {
				atomic.AddInt32(&covered[i], 1)
			}
			return nil
		})
		require.NoError(t, err)
		for i, c := range covered {
			assert.Equal(t, int32(1), c, "index %d with %d workers", i, workers)
		}
	}
	var nilPool *Pool
	assert.NoError(t, nilPool.RunRange(0, func(int, int) error { return errors.New("unreachable") }))
}
