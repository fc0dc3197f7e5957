package knngraph

import "iter"

// Graph maps every node of a build to its NeighborList.
//
// A Graph is sized once at creation and never grows or shrinks; only the
// neighbor lists change while a builder runs.
type Graph[T any] struct {
	k           int
	nodes       []Node[T]
	lists       []*NeighborList[T]
	index       map[NodeID]int
	evaluations int64
}

func newGraph[T any](nodes []Node[T], k int) *Graph[T] {
	g := &Graph[T]{
		k:     k,
		nodes: nodes,
		lists: make([]*NeighborList[T], len(nodes)),
		index: make(map[NodeID]int, len(nodes)),
	}
	for i, n := range nodes {
		g.lists[i] = NewNeighborList[T](k)
		g.index[n.ID] = i
	}
	return g
}

// K returns the neighbor list capacity used for this graph.
func (g *Graph[T]) K() int { return g.k }

// Size returns the number of nodes.
func (g *Graph[T]) Size() int { return len(g.nodes) }

// Nodes returns the nodes in build order.
func (g *Graph[T]) Nodes() []Node[T] { return g.nodes }

// Node returns the node with the given identity.
func (g *Graph[T]) Node(id NodeID) (Node[T], bool) {
	i, ok := g.index[id]
	if !ok {
		return Node[T]{}, false
	}
	return g.nodes[i], true
}

// Neighbors returns the neighbor list of the node with the given identity,
// or nil if the node is not part of the graph.
func (g *Graph[T]) Neighbors(id NodeID) *NeighborList[T] {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.lists[i]
}

// NeighborsOf is Neighbors keyed by node.
func (g *Graph[T]) NeighborsOf(n Node[T]) *NeighborList[T] {
	return g.Neighbors(n.ID)
}

// All iterates over (node, neighbor list) pairs in build order.
func (g *Graph[T]) All() iter.Seq2[Node[T], *NeighborList[T]] {
	return func(yield func(Node[T], *NeighborList[T]) bool) {
		for i, n := range g.nodes {
			if !yield(n, g.lists[i]) {
				return
			}
		}
	}
}

// Evaluations returns the number of similarity evaluations that produced
// this graph.
func (g *Graph[T]) Evaluations() int64 { return g.evaluations }

// EdgeCount returns the total number of neighbor entries across all lists.
func (g *Graph[T]) EdgeCount() int {
	total := 0
	for _, l := range g.lists {
		total += l.Len()
	}
	return total
}
