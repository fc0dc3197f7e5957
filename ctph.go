package knngraph

import "github.com/hupe1980/knngraph/internal/ctph"

// Signer maps a value to a fixed-length vector of bucket identifiers, one per
// stage, each in [0, partitions). Similar values should be likely to share an
// identifier in at least one stage.
type Signer[T any] interface {
	Sign(v T, stages, partitions int) ([]int, error)
}

// SignerFunc adapts a function to the Signer interface.
type SignerFunc[T any] func(v T, stages, partitions int) ([]int, error)

// Sign implements Signer.
func (f SignerFunc[T]) Sign(v T, stages, partitions int) ([]int, error) {
	return f(v, stages, partitions)
}

// SignaturePartitioner places every node, for each stage s, into the bucket
// named by the s-th entry of its signature. Bucket lists are allocated on
// first use.
type SignaturePartitioner[T any] struct {
	Signer Signer[T]
}

// Partition implements Partitioner. A signature of the wrong length or with
// an entry outside [0, partitions) fails with ErrInvalidPartition; a missing
// Signer fails with ErrInvalidConfiguration.
func (p *SignaturePartitioner[T]) Partition(nodes []Node[T], stages, partitions int) (Assignment[T], error) {
	if p.Signer == nil {
		return nil, invalidConfig("signer", ErrNoSigner)
	}

	grid := make(Assignment[T], stages)
	for s := range grid {
		grid[s] = make([][]Node[T], partitions)
	}

	for _, n := range nodes {
		sig, err := p.Signer.Sign(n.Value, stages, partitions)
		if err != nil {
			return nil, err
		}
		if len(sig) != stages {
			return nil, &ErrInvalidPartition{
				Stage: len(sig), NPartitions: partitions, Node: n.ID,
				cause: ErrStageOutOfRange,
			}
		}
		for s, bucket := range sig {
			if bucket < 0 || bucket >= partitions {
				return nil, &ErrInvalidPartition{
					Stage: s, Bucket: bucket, NPartitions: partitions, Node: n.ID,
					cause: ErrBucketOutOfRange,
				}
			}
			grid[s][bucket] = append(grid[s][bucket], n)
		}
	}
	return grid, nil
}

// NewCTPHPartitioner returns a string partitioner driven by
// context-triggered piecewise hashing signatures.
func NewCTPHPartitioner() *SignaturePartitioner[string] {
	return &SignaturePartitioner[string]{Signer: ctph.New()}
}

// NewStringCTPH creates a partitioning builder for strings that buckets them
// by fuzzy-hash signature, so textually similar strings tend to be compared.
//
//	b := knngraph.NewStringCTPH(func(o *knngraph.PartitioningOptions[string]) {
//	    o.K = 10
//	    o.Similarity = knngraph.Infallible(jaroWinkler)
//	    o.NPartitions = 8
//	    o.Oversampling = 4
//	})
//	g, err := b.ComputeGraph(lines)
func NewStringCTPH(optFns ...func(o *PartitioningOptions[string])) *PartitioningBuilder[string] {
	b := NewPartitioningBuilder[string](NewCTPHPartitioner(), optFns...)
	b.name = "string_ctph"
	return b
}
