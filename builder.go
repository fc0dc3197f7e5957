package knngraph

import (
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// DefaultK is the neighbor count used when none is configured.
const DefaultK = 10

// Builder is implemented by every k-NN graph construction strategy.
//
// Setters must not be called while a build is running.
type Builder[T any] interface {
	// SetK sets the number of neighbors kept per node.
	SetK(k int)

	// SetSimilarity sets the pairwise scoring function.
	SetSimilarity(sim Similarity[T])

	// SetCallback registers a progress sink; nil removes it.
	SetCallback(fn ProgressFunc)

	// ComputeGraph builds a graph over items, assigning identities
	// 0..len(items)-1 in input order.
	ComputeGraph(items []T) (*Graph[T], error)

	// ComputeNodeGraph builds a graph over nodes that already carry
	// identities. Identities must be pairwise distinct.
	ComputeNodeGraph(nodes []Node[T]) (*Graph[T], error)

	// Evaluations returns the similarity evaluation count of the most
	// recent build.
	Evaluations() int64
}

// Options configures a builder.
type Options[T any] struct {
	// K is the number of neighbors kept per node. Default: DefaultK.
	K int

	// Similarity scores pairs of values. Required.
	Similarity Similarity[T]

	// Progress is an optional progress sink.
	Progress ProgressFunc

	// Logger receives build logs. Default: NoopLogger().
	Logger *Logger

	// Metrics receives build metrics. Default: NoopMetricsCollector.
	Metrics MetricsCollector

	// Workers is the goroutine count of concurrent builders.
	// Default: runtime.GOMAXPROCS(0).
	Workers int
}

// DefaultOptions returns the default builder options.
func DefaultOptions[T any]() Options[T] {
	return Options[T]{
		K:       DefaultK,
		Logger:  NoopLogger(),
		Metrics: NoopMetricsCollector{},
	}
}

// base holds the configuration and bookkeeping shared by all builders.
type base[T any] struct {
	name        string
	opts        Options[T]
	evaluations atomic.Int64
}

func (b *base[T]) init(name string, opts Options[T]) {
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsCollector{}
	}
	b.name = name
	b.opts = opts
}

// SetK implements Builder.
func (b *base[T]) SetK(k int) { b.opts.K = k }

// K returns the configured neighbor count.
func (b *base[T]) K() int { return b.opts.K }

// SetSimilarity implements Builder.
func (b *base[T]) SetSimilarity(sim Similarity[T]) { b.opts.Similarity = sim }

// Similarity returns the configured similarity.
func (b *base[T]) Similarity() Similarity[T] { return b.opts.Similarity }

// SetCallback implements Builder.
func (b *base[T]) SetCallback(fn ProgressFunc) { b.opts.Progress = fn }

// SetLogger replaces the logger; nil installs NoopLogger.
func (b *base[T]) SetLogger(l *Logger) {
	if l == nil {
		l = NoopLogger()
	}
	b.opts.Logger = l
}

// SetMetrics replaces the metrics collector; nil installs a no-op collector.
func (b *base[T]) SetMetrics(m MetricsCollector) {
	if m == nil {
		m = NoopMetricsCollector{}
	}
	b.opts.Metrics = m
}

// Evaluations implements Builder.
func (b *base[T]) Evaluations() int64 { return b.evaluations.Load() }

// Name returns the strategy name used in logs and metrics.
func (b *base[T]) Name() string { return b.name }

func (b *base[T]) logger() *Logger {
	return b.opts.Logger.WithBuilder(b.name).WithK(b.opts.K)
}

// validate rejects unusable configurations before any work starts.
func (b *base[T]) validate(nodes []Node[T]) error {
	if b.opts.K <= 0 {
		return invalidConfig("k", ErrInvalidK)
	}
	if b.opts.Similarity == nil {
		return invalidConfig("similarity", ErrNoSimilarity)
	}
	if len(nodes) == 0 {
		return invalidConfig("items", ErrNoItems)
	}
	return checkDistinct(nodes)
}

func checkDistinct[T any](nodes []Node[T]) error {
	seen := roaring.New()
	for _, n := range nodes {
		if !seen.CheckedAdd(uint32(n.ID)) {
			return invalidConfig("items", ErrDuplicateNode)
		}
	}
	return nil
}

// observe reports a finished build to the logger and metrics collector.
func (b *base[T]) observe(nodes int, evaluations int64, start time.Time, err error) {
	elapsed := time.Since(start)
	b.logger().LogBuild(nodes, evaluations, elapsed, err)
	b.opts.Metrics.RecordBuild(b.name, nodes, evaluations, elapsed, err)
}
