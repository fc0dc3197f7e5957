package knngraph

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultNPartitions is the default bucket count per stage.
	DefaultNPartitions = 4

	// DefaultOversampling is the default number of partitioning stages.
	DefaultOversampling = 2
)

// Assignment is a stage x bucket grid of nodes. A node appears in at most one
// bucket per stage. Missing or empty buckets are allowed.
type Assignment[T any] [][][]Node[T]

// Partitioner splits nodes into buckets for each of stages independent
// passes. Buckets are indexed in [0, partitions).
type Partitioner[T any] interface {
	Partition(nodes []Node[T], stages, partitions int) (Assignment[T], error)
}

// PartitionerFunc adapts a function to the Partitioner interface.
type PartitionerFunc[T any] func(nodes []Node[T], stages, partitions int) (Assignment[T], error)

// Partition implements Partitioner.
func (f PartitionerFunc[T]) Partition(nodes []Node[T], stages, partitions int) (Assignment[T], error) {
	return f(nodes, stages, partitions)
}

// PartitioningOptions configures a PartitioningBuilder.
type PartitioningOptions[T any] struct {
	Options[T]

	// NPartitions is the bucket count per stage. Default: DefaultNPartitions.
	NPartitions int

	// Oversampling is the number of independent partitioning stages.
	// More stages raise recall at proportional cost.
	// Default: DefaultOversampling.
	Oversampling int

	// Concurrency is the number of cells solved at once. Default: 1.
	Concurrency int

	// MaxInFlightNodes bounds the total size of cells solved at once when
	// Concurrency > 1. 0 means unbounded.
	MaxInFlightNodes int

	// InternalBuilder solves each cell. It must tolerate concurrent
	// ComputeNodeGraph calls when Concurrency > 1. Default: Brute.
	InternalBuilder Builder[T]
}

// PartitioningBuilder approximates the k-NN graph by only comparing nodes
// that share a bucket in at least one stage.
//
// With brute force inside the buckets a build performs about
// n^2/2 * stages/partitions evaluations, a speedup of roughly
// partitions/stages over Brute. More stages raise recall; more partitions
// lower it.
type PartitioningBuilder[T any] struct {
	base[T]
	partitioner  Partitioner[T]
	nPartitions  int
	oversampling int
	concurrency  int
	maxInFlight  int
	internal     Builder[T]
}

// NewPartitioningBuilder creates a partitioning builder around p.
func NewPartitioningBuilder[T any](p Partitioner[T], optFns ...func(o *PartitioningOptions[T])) *PartitioningBuilder[T] {
	opts := PartitioningOptions[T]{
		Options:      DefaultOptions[T](),
		NPartitions:  DefaultNPartitions,
		Oversampling: DefaultOversampling,
		Concurrency:  1,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.InternalBuilder == nil {
		opts.InternalBuilder = NewBrute[T]()
	}

	b := &PartitioningBuilder[T]{
		partitioner:  p,
		nPartitions:  opts.NPartitions,
		oversampling: opts.Oversampling,
		concurrency:  opts.Concurrency,
		maxInFlight:  opts.MaxInFlightNodes,
		internal:     opts.InternalBuilder,
	}
	b.init("partitioning", opts.Options)
	return b
}

// SetNPartitions sets the bucket count per stage.
func (b *PartitioningBuilder[T]) SetNPartitions(n int) { b.nPartitions = n }

// NPartitions returns the bucket count per stage.
func (b *PartitioningBuilder[T]) NPartitions() int { return b.nPartitions }

// SetOversampling sets the number of partitioning stages.
func (b *PartitioningBuilder[T]) SetOversampling(n int) { b.oversampling = n }

// Oversampling returns the number of partitioning stages.
func (b *PartitioningBuilder[T]) Oversampling() int { return b.oversampling }

// SetInternalBuilder sets the builder used inside each cell; nil restores
// the Brute default.
func (b *PartitioningBuilder[T]) SetInternalBuilder(ib Builder[T]) {
	if ib == nil {
		ib = NewBrute[T]()
	}
	b.internal = ib
}

// InternalBuilder returns the builder used inside each cell.
func (b *PartitioningBuilder[T]) InternalBuilder() Builder[T] { return b.internal }

// SetPartitioner replaces the partitioning strategy.
func (b *PartitioningBuilder[T]) SetPartitioner(p Partitioner[T]) { b.partitioner = p }

// SetConcurrency sets the number of cells solved at once.
func (b *PartitioningBuilder[T]) SetConcurrency(n int) { b.concurrency = n }

// ComputeGraph implements Builder.
func (b *PartitioningBuilder[T]) ComputeGraph(items []T) (*Graph[T], error) {
	return b.ComputeNodeGraph(NodesOf(items))
}

// ComputeNodeGraph implements Builder.
func (b *PartitioningBuilder[T]) ComputeNodeGraph(nodes []Node[T]) (*Graph[T], error) {
	if err := b.validate(nodes); err != nil {
		return nil, err
	}
	if b.nPartitions <= 0 {
		return nil, invalidConfig("partitions", ErrInvalidPartitions)
	}
	if b.oversampling <= 0 {
		return nil, invalidConfig("oversampling", ErrInvalidStages)
	}
	if b.partitioner == nil {
		return nil, invalidConfig("partitioner", ErrNoPartitioner)
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

type cell[T any] struct {
	stage  int
	bucket int
	nodes  []Node[T]
}

func (b *PartitioningBuilder[T]) build(nodes []Node[T]) (*Graph[T], error) {
	assignment, err := b.partitioner.Partition(nodes, b.oversampling, b.nPartitions)
	if err != nil {
		return nil, err
	}

	g := newGraph(nodes, b.opts.K)

	cells, err := b.cells(g, assignment)
	if err != nil {
		return nil, err
	}

	b.internal.SetK(b.opts.K)
	b.internal.SetSimilarity(b.opts.Similarity)

	var (
		total      atomic.Int64
		progressMu sync.Mutex
	)

	solve := func(c cell[T]) error {
		cellStart := time.Now()
		sub, err := b.internal.ComputeNodeGraph(c.nodes)
		if err != nil {
			return err
		}
		for n, l := range sub.All() {
			g.Neighbors(n.ID).AddAll(l)
		}

		evals := sub.Evaluations()
		b.opts.Metrics.RecordCell(c.stage, len(c.nodes), evals, time.Since(cellStart))
		b.logger().LogCell(c.stage, c.bucket, len(c.nodes), evals)

		progressMu.Lock()
		seen := total.Add(evals)
		b.evaluations.Store(seen)
		if b.opts.Progress != nil {
			b.opts.Progress(c.nodes[len(c.nodes)-1].ID, seen)
		}
		progressMu.Unlock()
		return nil
	}

	if b.concurrency <= 1 {
		for _, c := range cells {
			if err := solve(c); err != nil {
				return nil, err
			}
		}
	} else if err := b.solveConcurrently(cells, solve); err != nil {
		return nil, err
	}

	g.evaluations = total.Load()
	return g, nil
}

func (b *PartitioningBuilder[T]) solveConcurrently(cells []cell[T], solve func(cell[T]) error) error {
	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(b.concurrency)

	var sem *semaphore.Weighted
	if b.maxInFlight > 0 {
		sem = semaphore.NewWeighted(int64(b.maxInFlight))
	}

	for _, c := range cells {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if sem != nil {
				w := int64(min(len(c.nodes), b.maxInFlight))
				if err := sem.Acquire(ctx, w); err != nil {
					return err
				}
				defer sem.Release(w)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			return solve(c)
		})
	}
	return eg.Wait()
}

// cells validates the assignment against the graph and returns the buckets
// that hold at least one pair.
func (b *PartitioningBuilder[T]) cells(g *Graph[T], assignment Assignment[T]) ([]cell[T], error) {
	if len(assignment) > b.oversampling {
		return nil, &ErrInvalidPartition{
			Stage:       len(assignment) - 1,
			NPartitions: b.nPartitions,
			cause:       ErrStageOutOfRange,
		}
	}

	covered := roaring.New()
	var cells []cell[T]
	for s, buckets := range assignment {
		if len(buckets) > b.nPartitions {
			return nil, &ErrInvalidPartition{
				Stage:       s,
				Bucket:      len(buckets) - 1,
				NPartitions: b.nPartitions,
				cause:       ErrBucketOutOfRange,
			}
		}

		stage := roaring.New()
		for p, members := range buckets {
			for _, n := range members {
				if _, ok := g.index[n.ID]; !ok {
					return nil, &ErrInvalidPartition{
						Stage: s, Bucket: p, NPartitions: b.nPartitions, Node: n.ID,
						cause: ErrUnknownNode,
					}
				}
				if !stage.CheckedAdd(uint32(n.ID)) {
					return nil, &ErrInvalidPartition{
						Stage: s, Bucket: p, NPartitions: b.nPartitions, Node: n.ID,
						cause: ErrDuplicateNode,
					}
				}
			}
			if len(members) > 1 {
				cells = append(cells, cell[T]{stage: s, bucket: p, nodes: members})
			}
		}
		covered.Or(stage)
	}

	b.opts.Logger.Debug("partition assignment",
		"stages", len(assignment),
		"cells", len(cells),
		"covered", covered.GetCardinality(),
		"nodes", g.Size(),
	)
	return cells, nil
}
