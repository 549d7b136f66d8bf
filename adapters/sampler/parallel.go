package sampler

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachChunk splits [0, n) into at most `workers` contiguous chunks and
// runs fn concurrently over them. Callers must only write slots inside their
// own chunk. Draws that consume the RNG stream never run here; keeping them
// sequential is what makes runs reproducible for any worker count.
func forEachChunk(ctx context.Context, n, workers int, fn func(start, end int) error) error {
	if workers <= 1 || n < 2 {
		return fn(0, n)
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	g, _ := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		s, e := start, end
		g.Go(func() error { return fn(s, e) })
	}
	return g.Wait()
}
