package knngraph

import (
	"sync"
	"testing"

	"github.com/hupe1980/knngraph/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nb(id NodeID, sim float64) Neighbor[int] {
	return Neighbor[int]{Node: Node[int]{ID: id, Value: int(id)}, Similarity: sim}
}

func TestNeighborList_KeepsTopK(t *testing.T) {
	l := NewNeighborList[int](3)

	for i, s := range []float64{0.1, 0.9, 0.4, 0.7, 0.2, 0.8} {
		l.Add(nb(NodeID(i), s))
	}

	require.Equal(t, 3, l.Len())
	assert.Equal(t, 3, l.K())
	assert.Equal(t, []NodeID{1, 5, 3}, l.IDs())

	worst, ok := l.Worst()
	require.True(t, ok)
	assert.Equal(t, NodeID(3), worst.Node.ID)
}

func TestNeighborList_FewerThanK(t *testing.T) {
	l := NewNeighborList[int](5)
	assert.True(t, l.Add(nb(1, 0.1)))
	assert.True(t, l.Add(nb(2, 0.0)))
	assert.Equal(t, 2, l.Len())

	_, ok := NewNeighborList[int](2).Worst()
	assert.False(t, ok)
}

func TestNeighborList_TieBreak(t *testing.T) {
	l := NewNeighborList[int](2)
	require.True(t, l.Add(nb(5, 0.5)))
	require.True(t, l.Add(nb(6, 0.9)))

	// Exact tie with the worst entry.
	assert.False(t, l.Add(nb(5, 0.5)))
	// Same score, higher identity ranks below the worst.
	assert.False(t, l.Add(nb(7, 0.5)))
	// Same score, lower identity ranks above the worst.
	assert.True(t, l.Add(nb(3, 0.5)))

	assert.Equal(t, []NodeID{6, 3}, l.IDs())
}

func TestNeighborList_DuplicateKeepsBestScore(t *testing.T) {
	l := NewNeighborList[int](3)
	require.True(t, l.Add(nb(1, 0.2)))
	require.True(t, l.Add(nb(2, 0.5)))

	assert.False(t, l.Add(nb(1, 0.1)))
	assert.True(t, l.Add(nb(1, 0.8)))

	sorted := l.Sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, NodeID(1), sorted[0].Node.ID)
	assert.Equal(t, 0.8, sorted[0].Similarity)
	assert.True(t, l.Contains(2))
	assert.False(t, l.Contains(3))
}

func candidates(rng *testutil.RNG, n int) []Neighbor[int] {
	out := make([]Neighbor[int], n)
	for i := range out {
		// Coarse scores force plenty of ties.
		out[i] = nb(NodeID(i), float64(rng.Intn(20))/20)
	}
	return out
}

func TestNeighborList_AddOrderIndependent(t *testing.T) {
	rng := testutil.NewRNG(4711)
	cands := candidates(rng, 200)

	reference := NewNeighborList[int](10)
	for _, c := range cands {
		reference.Add(c)
	}

	for round := 0; round < 20; round++ {
		shuffled := append([]Neighbor[int](nil), cands...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		l := NewNeighborList[int](10)
		for _, c := range shuffled {
			l.Add(c)
		}
		assert.Equal(t, reference.IDs(), l.IDs())
	}
}

func TestNeighborList_AddAllAssociative(t *testing.T) {
	rng := testutil.NewRNG(42)
	cands := candidates(rng, 300)

	direct := NewNeighborList[int](8)
	for _, c := range cands {
		direct.Add(c)
	}

	part := func(cs []Neighbor[int]) *NeighborList[int] {
		l := NewNeighborList[int](8)
		for _, c := range cs {
			l.Add(c)
		}
		return l
	}
	a, b, c := part(cands[:100]), part(cands[100:200]), part(cands[200:])

	// (A + B) + C
	left := NewNeighborList[int](8)
	left.AddAll(a)
	left.AddAll(b)
	left.AddAll(c)

	// A + (B + C)
	bc := NewNeighborList[int](8)
	bc.AddAll(b)
	bc.AddAll(c)
	right := NewNeighborList[int](8)
	right.AddAll(a)
	right.AddAll(bc)

	// C, A, B with overlapping partials.
	mixed := NewNeighborList[int](8)
	mixed.AddAll(c)
	mixed.AddAll(a)
	mixed.AddAll(left)
	mixed.AddAll(b)

	assert.Equal(t, direct.IDs(), left.IDs())
	assert.Equal(t, direct.IDs(), right.IDs())
	assert.Equal(t, direct.IDs(), mixed.IDs())
}

func TestNeighborList_AddAllSelfAndNil(t *testing.T) {
	l := NewNeighborList[int](2)
	l.Add(nb(1, 0.5))
	assert.Equal(t, 0, l.AddAll(l))
	assert.Equal(t, 0, l.AddAll(nil))
	assert.Equal(t, 1, l.Len())
}

func TestNeighborList_CountCommons(t *testing.T) {
	a := NewNeighborList[int](4)
	b := NewNeighborList[int](4)
	for _, id := range []NodeID{1, 2, 3, 4} {
		a.Add(nb(id, float64(id)))
	}
	for _, id := range []NodeID{3, 4, 5} {
		b.Add(nb(id, 1))
	}

	assert.Equal(t, 2, a.CountCommons(b))
	assert.Equal(t, 2, b.CountCommons(a))
	assert.Equal(t, 4, a.CountCommons(a))
	assert.Equal(t, 0, a.CountCommons(nil))
}

func TestNeighborList_String(t *testing.T) {
	l := NewNeighborList[int](3)
	l.Add(nb(2, 0.25))
	l.Add(nb(1, 0.5))

	assert.Equal(t, "[1:0.5 2:0.25]", l.String())

	var seen []NodeID
	for n := range l.All() {
		seen = append(seen, n.Node.ID)
		break
	}
	assert.Equal(t, []NodeID{1}, seen)
}

func TestNeighborList_ConcurrentAdd(t *testing.T) {
	const (
		k          = 16
		goroutines = 16
		perWorker  = 500
	)
	l := NewNeighborList[int](k)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for w := 0; w < goroutines; w++ {
		go func(offset int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := NodeID(offset*perWorker + i)
				l.Add(nb(id, float64(id%97)))
			}
		}(w)
	}
	wg.Wait()

	reference := NewNeighborList[int](k)
	for id := NodeID(0); id < goroutines*perWorker; id++ {
		reference.Add(nb(id, float64(id%97)))
	}

	require.Equal(t, k, l.Len())
	assert.Equal(t, reference.IDs(), l.IDs())
}

func TestNeighborList_ConcurrentAddAll(t *testing.T) {
	const parts = 8
	global := NewNeighborList[int](10)

	partials := make([]*NeighborList[int], parts)
	for p := range partials {
		partials[p] = NewNeighborList[int](10)
		for i := 0; i < 100; i++ {
			id := NodeID(p*100 + i)
			partials[p].Add(nb(id, float64(id)))
		}
	}

	var wg sync.WaitGroup
	for _, p := range partials {
		wg.Add(1)
		go func() {
			defer wg.Done()
			global.AddAll(p)
		}()
	}
	wg.Wait()

	assert.Equal(t, []NodeID{799, 798, 797, 796, 795, 794, 793, 792, 791, 790}, global.IDs())
}
