package knngraph

import "time"

// Brute computes the exact k-NN graph by evaluating every unordered pair of
// nodes once and offering the score to both endpoints.
//
// A build performs n(n-1)/2 evaluations. The progress sink, if any, is called
// after each node with its identity and the running evaluation count.
type Brute[T any] struct {
	base[T]
}

// NewBrute creates an exact brute-force builder.
func NewBrute[T any](optFns ...func(o *Options[T])) *Brute[T] {
	opts := DefaultOptions[T]()
	for _, fn := range optFns {
		fn(&opts)
	}
	b := &Brute[T]{}
	b.init("brute", opts)
	return b
}

// ComputeGraph implements Builder.
func (b *Brute[T]) ComputeGraph(items []T) (*Graph[T], error) {
	return b.ComputeNodeGraph(NodesOf(items))
}

// ComputeNodeGraph implements Builder. A similarity error aborts the build
// and is returned unchanged.
func (b *Brute[T]) ComputeNodeGraph(nodes []Node[T]) (*Graph[T], error) {
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

func (b *Brute[T]) build(nodes []Node[T]) (*Graph[T], error) {
	g := newGraph(nodes, b.opts.K)
	sim := b.opts.Similarity
	progress := b.opts.Progress

	var count int64
	for i, n1 := range nodes {
		for j := 0; j < i; j++ {
			n2 := nodes[j]
			s, err := sim.Similarity(n1.Value, n2.Value)
			if err != nil {
				b.evaluations.Store(count)
				return nil, err
			}
			count++

			g.lists[i].Add(Neighbor[T]{Node: n2, Similarity: s})
			g.lists[j].Add(Neighbor[T]{Node: n1, Similarity: s})
		}

		b.evaluations.Store(count)
		if progress != nil {
			progress(n1.ID, count)
		}
	}

	g.evaluations = count
	return g, nil
}
