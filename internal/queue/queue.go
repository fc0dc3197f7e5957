// Package queue provides the bounded binary heap backing neighbor lists.
package queue

// Bounded is a fixed-capacity binary heap that retains the best items pushed
// into it. The root is always the worst retained item so that eviction is
// O(log n).
//
// Bounded is not safe for concurrent use; callers serialize access.
type Bounded[E any] struct {
	capacity int
	worse    func(a, b E) bool // reports whether a ranks strictly below b
	items    []E
}

// maxPrealloc bounds the storage reserved up front. Larger heaps grow on
// demand.
const maxPrealloc = 64

// NewBounded creates a bounded heap holding at most capacity items.
// worse must define a strict weak ordering where worse(a, b) means a is the
// less desirable item.
func NewBounded[E any](capacity int, worse func(a, b E) bool) *Bounded[E] {
	return &Bounded[E]{
		capacity: capacity,
		worse:    worse,
		items:    make([]E, 0, max(0, min(capacity, maxPrealloc))),
	}
}

// Cap returns the maximum number of retained items.
func (q *Bounded[E]) Cap() int { return q.capacity }

// Len returns the number of retained items.
func (q *Bounded[E]) Len() int { return len(q.items) }

// Full reports whether the heap holds Cap items.
func (q *Bounded[E]) Full() bool { return len(q.items) >= q.capacity }

// Top returns the worst retained item.
func (q *Bounded[E]) Top() (E, bool) {
	if len(q.items) == 0 {
		var zero E
		return zero, false
	}
	return q.items[0], true
}

// Push offers an item. Below capacity the item is always kept. At capacity
// it replaces the current worst only if it ranks strictly better; an item
// that ties with the worst is rejected.
func (q *Bounded[E]) Push(item E) bool {
	if q.capacity <= 0 {
		return false
	}
	if len(q.items) < q.capacity {
		q.items = append(q.items, item)
		q.siftUp(len(q.items) - 1)
		return true
	}
	if !q.worse(q.items[0], item) {
		return false
	}
	q.items[0] = item
	q.siftDown(0)
	return true
}

// Find returns the index of the first item matching pred, or -1.
func (q *Bounded[E]) Find(pred func(E) bool) int {
	for i := range q.items {
		if pred(q.items[i]) {
			return i
		}
	}
	return -1
}

// At returns the item stored at heap position i.
func (q *Bounded[E]) At(i int) E { return q.items[i] }

// Replace overwrites the item at heap position i and restores the heap
// invariant.
func (q *Bounded[E]) Replace(i int, item E) {
	old := q.items[i]
	q.items[i] = item
	if q.worse(item, old) {
		q.siftUp(i)
	} else {
		q.siftDown(i)
	}
}

// Items returns a copy of the retained items in heap order.
func (q *Bounded[E]) Items() []E {
	out := make([]E, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Bounded[E]) less(i, j int) bool {
	return q.worse(q.items[i], q.items[j])
}

func (q *Bounded[E]) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *Bounded[E]) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && q.less(r, l) {
			best = r
		}
		if !q.less(best, i) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
