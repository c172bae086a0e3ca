// Package threadpool provides a caller-owned parallel-for service.
//
// A Pool holds no goroutines between calls; each Run fans tasks out on an
// errgroup bounded by the pool's worker count and blocks until they finish.
// A nil *Pool is valid and runs every task serially on the calling
// goroutine.
package threadpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the parallelism of Run and RunRange calls. It is safe for
// concurrent use; calls sharing a pool do not share an ordering.
type Pool struct {
	workers int
}

// New returns a pool running at most workers tasks at once. A
// non-positive count selects GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Workers returns the maximum number of concurrently running tasks. A nil
// pool reports 1.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Run calls fn(i) for every i in [0, n) and returns the first error. Tasks
// already started run to completion; tasks not yet started after a failure
// are skipped.
func (p *Pool) Run(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if p.Workers() == 1 || n == 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

// RunRange splits [0, n) into at most Workers() contiguous bands and calls
// fn(start, end) once per band.
func (p *Pool) RunRange(n int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	bands := min(p.Workers(), n)
	per := (n + bands - 1) / bands
	return p.Run(bands, func(i int) error {
		start := i * per
		end := min(start+per, n)
		if start >= end {
			return nil
		}
		return fn(start, end)
	})
}
