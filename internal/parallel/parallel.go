// Package parallel splits index ranges across goroutines and joins them.
package parallel

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices covered by r.
func (r Range) Len() int { return r.End - r.Start }

// Workers normalizes a requested worker count.
// Non-positive values default to runtime.GOMAXPROCS(0).
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Triangular splits [0, n) into at most workers contiguous ranges so that
// each range holds roughly the same number of lower-triangle pairs, where row
// i owns i pairs (j < i). Rows near the end are heavier, so ranges shrink as
// the index grows.
func Triangular(n, workers int) []Range {
	if n <= 0 {
		return nil
	}
	workers = min(Workers(workers), n)

	out := make([]Range, 0, workers)
	start := 0
	for j := 1; j <= workers; j++ {
		end := n
		if j < workers {
			end = int(math.Round(float64(n) * math.Sqrt(float64(j)/float64(workers))))
		}
		if end <= start {
			continue
		}
		out = append(out, Range{Start: start, End: end})
		start = end
	}
	if start < n {
		out = append(out, Range{Start: start, End: n})
	}
	return out
}

// Run executes fn once per range on its own goroutine and waits for all of
// them. The first error cancels the context handed to the remaining calls and
// is returned after every goroutine has stopped.
func Run(ctx context.Context, ranges []Range, fn func(ctx context.Context, r Range) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range ranges {
		g.Go(func() error {
			return fn(gctx, r)
		})
	}
	return g.Wait()
}
