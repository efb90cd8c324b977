// Package render runs a bounded pool of workers over the rows a terminal
// grid has marked dirty, so a frame with many changed rows rasterizes
// concurrently instead of one row at a time on the caller's goroutine.
package render

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Renderer rasterizes a single grid row into whatever destination a caller
// configured it with (an SHM buffer, an in-memory image, a test sink).
// Implementations are called concurrently from different goroutines for
// different rows and must be safe for that, though never for the same row
// twice at once.
type Renderer interface {
	RenderRow(ctx context.Context, row int) error
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(ctx context.Context, row int) error

func (f RendererFunc) RenderRow(ctx context.Context, row int) error { return f(ctx, row) }

// Pool bounds how many rows rasterize concurrently. A terminal typically
// has far more rows than a machine has cores worth dedicating to
// rasterization, so the pool caps concurrency rather than spawning one
// goroutine per row.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a render pool that runs at most maxConcurrency rows at
// once. maxConcurrency <= 0 is treated as 1.
func NewPool(maxConcurrency int64) *Pool {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Pool{sem: semaphore.NewWeighted(maxConcurrency)}
}

// RenderRows rasterizes every row in rows using r, blocking until all
// complete or ctx is canceled. Returns the first error encountered, if
// any; other in-flight rows still finish before RenderRows returns; this
// is to avoid leaving a renderer referencing a row it's mid-write on.
func (p *Pool) RenderRows(ctx context.Context, rows []int, r Renderer) error {
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for _, row := range rows {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			errOnce.Do(func() { firstErr = err })
			break
		}

		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			defer p.sem.Release(1)

			if err := r.RenderRow(ctx, row); err != nil {
				errOnce.Do(func() { firstErr = err })
			}
		}(row)
	}

	wg.Wait()
	return firstErr
}
