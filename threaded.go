package knngraph

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/knngraph/internal/parallel"
)

// ThreadedBrute computes the same graph as Brute using a pool of goroutines.
//
// The outer node range is split into one contiguous chunk per worker, sized
// so every chunk owns roughly the same number of pairs. Workers write into
// shared neighbor lists; each list serializes its own writers.
//
// The progress sink is invoked from worker goroutines, one call at a time,
// with non-decreasing evaluation counts. The order of node identities across
// workers is unspecified.
type ThreadedBrute[T any] struct {
	base[T]
}

// NewThreadedBrute creates a concurrent brute-force builder. Options.Workers
// sets the number of goroutines.
func NewThreadedBrute[T any](optFns ...func(o *Options[T])) *ThreadedBrute[T] {
	opts := DefaultOptions[T]()
	for _, fn := range optFns {
		fn(&opts)
	}
	b := &ThreadedBrute[T]{}
	b.init("threaded_brute", opts)
	return b
}

// SetWorkers sets the number of goroutines; non-positive means
// runtime.GOMAXPROCS(0).
func (b *ThreadedBrute[T]) SetWorkers(n int) { b.opts.Workers = n }

// Workers returns the effective number of goroutines.
func (b *ThreadedBrute[T]) Workers() int { return parallel.Workers(b.opts.Workers) }

// ComputeGraph implements Builder.
func (b *ThreadedBrute[T]) ComputeGraph(items []T) (*Graph[T], error) {
	return b.ComputeNodeGraph(NodesOf(items))
}

// ComputeNodeGraph implements Builder. It returns once every worker has
// stopped. If a similarity evaluation fails, the remaining workers stop at
// their next node and the first failure is returned unchanged.
func (b *ThreadedBrute[T]) ComputeNodeGraph(nodes []Node[T]) (*Graph[T], error) {
	if err := b.validate(nodes); err != nil {
		return nil, err
	}

	start := time.Now()
	b.evaluations.Store(0)

	g, err := b.build(nodes)
	b.observe(len(nodes), b.evaluations.Load(), start, err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (b *ThreadedBrute[T]) build(nodes []Node[T]) (*Graph[T], error) {
	g := newGraph(nodes, b.opts.K)
	sim := b.opts.Similarity
	progress := b.opts.Progress

	var (
		count      atomic.Int64
		progressMu sync.Mutex
	)

	ranges := parallel.Triangular(len(nodes), b.opts.Workers)
	err := parallel.Run(context.Background(), ranges, func(ctx context.Context, r parallel.Range) error {
		for i := r.Start; i < r.End; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			n1 := nodes[i]
			for j := 0; j < i; j++ {
				n2 := nodes[j]
				s, err := sim.Similarity(n1.Value, n2.Value)
				if err != nil {
					return err
				}
				count.Add(1)

				g.lists[i].Add(Neighbor[T]{Node: n2, Similarity: s})
				g.lists[j].Add(Neighbor[T]{Node: n1, Similarity: s})
			}

			progressMu.Lock()
			seen := count.Load()
			b.evaluations.Store(seen)
			if progress != nil {
				progress(n1.ID, seen)
			}
			progressMu.Unlock()
		}
		return nil
	})
	if err != nil {
		b.evaluations.Store(count.Load())
		return nil, err
	}

	g.evaluations = count.Load()
	b.evaluations.Store(g.evaluations)
	return g, nil
}
