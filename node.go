package knngraph

// NodeID is the stable identity of an item within one graph build.
type NodeID uint32

// Node pairs a caller value with its identity. Identity, not value, drives
// equality; duplicate values are allowed.
type Node[T any] struct {
	ID    NodeID
	Value T
}

// Neighbor is a candidate edge target together with its similarity score.
type Neighbor[T any] struct {
	Node       Node[T]
	Similarity float64
}

// Better reports whether n ranks strictly above other: higher similarity
// wins, and on equal similarity the lower NodeID wins.
func (n Neighbor[T]) Better(other Neighbor[T]) bool {
	if n.Similarity != other.Similarity {
		return n.Similarity > other.Similarity
	}
	return n.Node.ID < other.Node.ID
}

// Similarity scores a pair of values. Implementations must be symmetric,
// side-effect free and safe for concurrent use when used with concurrent
// builders.
type Similarity[T any] interface {
	Similarity(a, b T) (float64, error)
}

// SimilarityFunc adapts a plain function to the Similarity interface.
type SimilarityFunc[T any] func(a, b T) (float64, error)

// Similarity implements Similarity.
func (f SimilarityFunc[T]) Similarity(a, b T) (float64, error) { return f(a, b) }

// Infallible adapts a scoring function that cannot fail.
func Infallible[T any](fn func(a, b T) float64) Similarity[T] {
	return SimilarityFunc[T](func(a, b T) (float64, error) {
		return fn(a, b), nil
	})
}

// NodesOf assigns identities 0..len(items)-1 in input order.
func NodesOf[T any](items []T) []Node[T] {
	nodes := make([]Node[T], len(items))
	for i, v := range items {
		nodes[i] = Node[T]{ID: NodeID(i), Value: v}
	}
	return nodes
}
