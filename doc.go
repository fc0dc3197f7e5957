// Package knngraph builds k-nearest-neighbor similarity graphs over arbitrary
// item types for recommendation, near-duplicate detection and clustering
// pipelines.
//
// A graph maps every input item to the k items most similar to it, according
// to a caller supplied Similarity. Several builders share one interface:
//
//   - Brute evaluates every pair exactly once (n(n-1)/2 evaluations).
//   - ThreadedBrute produces the same graph using a pool of goroutines.
//   - PartitioningBuilder buckets items over several stages and only compares
//     items that share a bucket, trading recall for speed.
//   - NewStringCTPH is a PartitioningBuilder for strings that buckets by
//     fuzzy-hash signature.
//
// # Quick Start
//
//	sim := knngraph.Infallible(func(a, b int) float64 {
//	    return 1 / (1 + math.Abs(float64(a-b)))
//	})
//
//	b := knngraph.NewThreadedBrute(func(o *knngraph.Options[int]) {
//	    o.K = 10
//	    o.Similarity = sim
//	})
//	g, err := b.ComputeGraph(items)
//	if err != nil {
//	    return err
//	}
//	for node, neighbors := range g.All() {
//	    fmt.Println(node.Value, neighbors)
//	}
//
// # Neighbor ordering
//
// Higher similarity ranks better. Candidates with equal similarity are
// ordered by NodeID, lower first, so every builder produces the same
// neighbor sets regardless of evaluation order.
//
// # Approximate builds
//
// A PartitioningBuilder with P partitions and S stages performs roughly
// n^2/2 * S/P evaluations. Use Recall against a Brute graph on a sample to
// tune both parameters.
//
// # Observability
//
// Builders accept a Logger (log/slog), a MetricsCollector and a ProgressFunc.
// ThrottleProgress and LogProgress rate-limit progress reporting.
package knngraph
