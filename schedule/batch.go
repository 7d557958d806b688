package schedule

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/meenmo/moschedule/schedule/config"
)

// runBatch calls fn for every index in [0, n). Contiguous chunks of the
// batch run on separate goroutines; the first error cancels the remaining
// chunks and is returned.
func runBatch(ctx context.Context, n int, fn func(i int) error) error {
	c := config.GetConfig()
	workers := c.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	minChunk := max(c.MinChunk, 1)

	if workers == 1 || n <= minChunk {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	chunk := max(minChunk, (n+workers-1)/workers)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
