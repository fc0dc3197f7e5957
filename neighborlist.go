package knngraph

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/knngraph/internal/queue"
)

// NeighborList holds the k best neighbors offered to one node.
//
// At any time the list contains the k highest ranked distinct candidates
// seen so far (fewer if fewer were offered). Ranking follows
// Neighbor.Better. A candidate whose node is already present only updates
// the stored score when it improves it.
//
// All methods are safe for concurrent use. Each list carries its own mutex,
// so concurrent writers to different lists never contend.
type NeighborList[T any] struct {
	mu   sync.Mutex
	heap *queue.Bounded[Neighbor[T]]
}

// NewNeighborList creates an empty list with capacity k.
func NewNeighborList[T any](k int) *NeighborList[T] {
	return &NeighborList[T]{
		heap: queue.NewBounded(k, func(a, b Neighbor[T]) bool {
			return b.Better(a)
		}),
	}
}

// K returns the capacity of the list.
func (l *NeighborList[T]) K() int { return l.heap.Cap() }

// Len returns the number of neighbors currently held.
func (l *NeighborList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Len()
}

// Add offers a candidate and reports whether the list changed.
func (l *NeighborList[T]) Add(n Neighbor[T]) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.add(n)
}

func (l *NeighborList[T]) add(n Neighbor[T]) bool {
	if l.heap.Full() {
		// Anything already stored ranks at least as high as the worst entry,
		// so a candidate that cannot beat the worst cannot improve a
		// duplicate either.
		if worst, _ := l.heap.Top(); !n.Better(worst) {
			return false
		}
	}

	if i := l.heap.Find(func(e Neighbor[T]) bool { return e.Node.ID == n.Node.ID }); i >= 0 {
		if n.Similarity > l.heap.At(i).Similarity {
			l.heap.Replace(i, n)
			return true
		}
		return false
	}

	return l.heap.Push(n)
}

// AddAll merges every neighbor of other into l as if offered one by one and
// returns the number of accepted candidates. other is read under its own lock
// before l is locked, so the two locks are never held together.
func (l *NeighborList[T]) AddAll(other *NeighborList[T]) int {
	if other == nil || other == l {
		return 0
	}
	candidates := other.snapshot()

	l.mu.Lock()
	defer l.mu.Unlock()

	accepted := 0
	for _, n := range candidates {
		if l.add(n) {
			accepted++
		}
	}
	return accepted
}

// CountCommons returns how many node identities l and other share.
func (l *NeighborList[T]) CountCommons(other *NeighborList[T]) int {
	if other == nil {
		return 0
	}
	a := l.bitmap()
	if other == l {
		return int(a.GetCardinality())
	}
	return int(a.AndCardinality(other.bitmap()))
}

// Contains reports whether the node with the given identity is held.
func (l *NeighborList[T]) Contains(id NodeID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Find(func(e Neighbor[T]) bool { return e.Node.ID == id }) >= 0
}

// Worst returns the lowest ranked neighbor held.
func (l *NeighborList[T]) Worst() (Neighbor[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Top()
}

// Sorted returns the neighbors best first.
func (l *NeighborList[T]) Sorted() []Neighbor[T] {
	out := l.snapshot()
	slices.SortFunc(out, func(a, b Neighbor[T]) int {
		switch {
		case a.Better(b):
			return -1
		case b.Better(a):
			return 1
		default:
			return 0
		}
	})
	return out
}

// IDs returns the identities of the held neighbors, best first.
func (l *NeighborList[T]) IDs() []NodeID {
	sorted := l.Sorted()
	ids := make([]NodeID, len(sorted))
	for i, n := range sorted {
		ids[i] = n.Node.ID
	}
	return ids
}

// All iterates over the neighbors best first.
func (l *NeighborList[T]) All() iter.Seq[Neighbor[T]] {
	return func(yield func(Neighbor[T]) bool) {
		for _, n := range l.Sorted() {
			if !yield(n) {
				return
			}
		}
	}
}

// String formats the list as id:similarity pairs, best first.
func (l *NeighborList[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, n := range l.Sorted() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d:%g", n.Node.ID, n.Similarity)
	}
	sb.WriteByte(']')
	return sb.String()
}

func (l *NeighborList[T]) snapshot() []Neighbor[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Items()
}

func (l *NeighborList[T]) bitmap() *roaring.Bitmap {
	l.mu.Lock()
	defer l.mu.Unlock()
	bm := roaring.New()
	for i := 0; i < l.heap.Len(); i++ {
		bm.Add(uint32(l.heap.At(i).Node.ID))
	}
	return bm
}
