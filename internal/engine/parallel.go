package engine

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// chunkRows is the unit of parallel work. Chunk boundaries depend only on the
// view length, so per-chunk partial results merge the same way on any machine.
const chunkRows = 1 << 14

func numChunks(n int) int {
	return (n + chunkRows - 1) / chunkRows
}

// forEachChunk runs fn over [lo, hi) row ranges on a bounded worker pool.
// Small inputs run inline.
func forEachChunk(n int, fn func(chunk, lo, hi int)) {
	chunks := numChunks(n)
	if chunks == 0 {
		return
	}
	if chunks == 1 {
		fn(0, 0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for k := 0; k < chunks; k++ {
		g.Go(func() error {
			lo := k * chunkRows
			fn(k, lo, min(lo+chunkRows, n))
			return nil
		})
	}
	_ = g.Wait()
}
