package knngraph

import (
	"errors"
	"testing"

	"github.com/hupe1980/knngraph/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCTPHPartitioner_EveryStringInEveryStage(t *testing.T) {
	const stages, partitions = 5, 7
	rng := testutil.NewRNG(4711)
	items := rng.Strings(200, 40)
	items = append(items, items[:20]...) // duplicate values, distinct identities

	nodes := NodesOf(items)
	grid, err := NewCTPHPartitioner().Partition(nodes, stages, partitions)
	require.NoError(t, err)
	require.Len(t, grid, stages)

	appearances := make(map[NodeID]int)
	bucketOf := make([]map[string]int, stages)
	for s, buckets := range grid {
		require.Len(t, buckets, partitions)
		bucketOf[s] = make(map[string]int)
		for p, members := range buckets {
			for _, n := range members {
				appearances[n.ID]++

				if prev, ok := bucketOf[s][n.Value]; ok {
					assert.Equal(t, prev, p, "identical strings split in stage %d", s)
				}
				bucketOf[s][n.Value] = p
			}
		}
	}

	require.Len(t, appearances, len(nodes))
	for _, count := range appearances {
		assert.Equal(t, stages, count)
	}
}

func TestCTPHPartitioner_Deterministic(t *testing.T) {
	nodes := NodesOf([]string{"alpha beta gamma", "delta epsilon", "alpha beta gamma"})

	a, err := NewCTPHPartitioner().Partition(nodes, 3, 4)
	require.NoError(t, err)
	b, err := NewCTPHPartitioner().Partition(nodes, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSignaturePartitioner_Malformed(t *testing.T) {
	nodes := NodesOf([]string{"a", "b"})

	outOfRange := &SignaturePartitioner[string]{Signer: SignerFunc[string](func(v string, stages, partitions int) ([]int, error) {
		sig := make([]int, stages)
		if v == "b" {
			sig[1] = partitions
		}
		return sig, nil
	})}
	_, err := outOfRange.Partition(nodes, 2, 3)
	var pErr *ErrInvalidPartition
	require.ErrorAs(t, err, &pErr)
	assert.ErrorIs(t, err, ErrBucketOutOfRange)
	assert.Equal(t, 1, pErr.Stage)
	assert.Equal(t, 3, pErr.Bucket)
	assert.Equal(t, NodeID(1), pErr.Node)

	negative := &SignaturePartitioner[string]{Signer: SignerFunc[string](func(string, int, int) ([]int, error) {
		return []int{-1, 0}, nil
	})}
	_, err = negative.Partition(nodes, 2, 3)
	assert.ErrorIs(t, err, ErrBucketOutOfRange)

	short := &SignaturePartitioner[string]{Signer: SignerFunc[string](func(string, int, int) ([]int, error) {
		return []int{0}, nil
	})}
	_, err = short.Partition(nodes, 2, 3)
	assert.ErrorIs(t, err, ErrStageOutOfRange)

	boom := errors.New("boom")
	failing := &SignaturePartitioner[string]{Signer: SignerFunc[string](func(string, int, int) ([]int, error) {
		return nil, boom
	})}
	_, err = failing.Partition(nodes, 2, 3)
	assert.Same(t, boom, err)
}

func TestSignaturePartitioner_NilSigner(t *testing.T) {
	var cfgErr *ErrInvalidConfiguration

	_, err := (&SignaturePartitioner[string]{}).Partition(NodesOf([]string{"a", "b"}), 2, 3)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "signer", cfgErr.Field)
	assert.ErrorIs(t, err, ErrNoSigner)

	b := NewPartitioningBuilder[string](&SignaturePartitioner[string]{}, func(o *PartitioningOptions[string]) {
		o.K = 2
		o.Similarity = Infallible(testutil.BigramJaccard)
	})
	g, err := b.ComputeGraph([]string{"a", "b"})
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrNoSigner)
}

func TestStringCTPH_SinglePartitionEqualsBrute(t *testing.T) {
	rng := testutil.NewRNG(7)
	items := rng.Strings(120, 30)
	sim := Infallible(testutil.BigramJaccard)

	exact, err := NewBrute(func(o *Options[string]) {
		o.K = 4
		o.Similarity = sim
	}).ComputeGraph(items)
	require.NoError(t, err)

	b := NewStringCTPH()
	b.SetK(4)
	b.SetSimilarity(sim)
	b.SetNPartitions(1)
	b.SetOversampling(1)
	approx, err := b.ComputeGraph(items)
	require.NoError(t, err)

	for n, l := range exact.All() {
		assert.Equal(t, l.IDs(), approx.NeighborsOf(n).IDs())
	}
	assert.Equal(t, "string_ctph", b.Name())
}

func TestStringCTPH_FindsNearDuplicates(t *testing.T) {
	const clusters, size = 60, 4
	rng := testutil.NewRNG(4711)
	items := rng.NearDuplicates(clusters, size, 60)
	sim := Infallible(testutil.BigramJaccard)

	exact, err := NewBrute(func(o *Options[string]) {
		o.K = size - 1
		o.Similarity = sim
	}).ComputeGraph(items)
	require.NoError(t, err)

	// The exact neighbors of every string are the other cluster members.
	for n, l := range exact.All() {
		cluster := int(n.ID) / size
		for id := range l.All() {
			assert.Equal(t, cluster, int(id.Node.ID)/size)
		}
	}

	b := NewStringCTPH(func(o *PartitioningOptions[string]) {
		o.K = size - 1
		o.Similarity = sim
		o.NPartitions = 4
		o.Oversampling = 8
		o.Concurrency = 4
	})
	approx, err := b.ComputeGraph(items)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, Recall(exact, approx), 0.9)
}

func TestStringCTPH_FewerEvaluationsThanBrute(t *testing.T) {
	rng := testutil.NewRNG(99)
	items := rng.Strings(400, 50)

	b := NewStringCTPH(func(o *PartitioningOptions[string]) {
		o.K = 5
		o.Similarity = Infallible(testutil.BigramJaccard)
		o.NPartitions = 8
		o.Oversampling = 2
	})
	g, err := b.ComputeGraph(items)
	require.NoError(t, err)

	brute := int64(len(items) * (len(items) - 1) / 2)
	assert.Greater(t, g.Evaluations(), int64(0))
	assert.Less(t, g.Evaluations(), brute)
}
