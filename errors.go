package knngraph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNoItems is returned when a build is started without items.
	ErrNoItems = errors.New("no items")

	// ErrNoSimilarity is returned when no similarity is configured.
	ErrNoSimilarity = errors.New("similarity not configured")

	// ErrDuplicateNode is returned when two input nodes share an identity.
	ErrDuplicateNode = errors.New("duplicate node identity")

	// ErrInvalidPartitions is returned when the bucket count per stage is not
	// positive.
	ErrInvalidPartitions = errors.New("partitions must be positive")

	// ErrInvalidStages is returned when the stage count is not positive.
	ErrInvalidStages = errors.New("stages must be positive")

	// ErrNoPartitioner is returned when a partitioning builder has no
	// partitioning strategy.
	ErrNoPartitioner = errors.New("partitioner not configured")

	// ErrNoSigner is returned when a signature partitioner has no signer.
	ErrNoSigner = errors.New("signer not configured")

	// ErrBucketOutOfRange is the cause of an ErrInvalidPartition whose bucket
	// index falls outside [0, partitions).
	ErrBucketOutOfRange = errors.New("bucket out of range")

	// ErrStageOutOfRange is the cause of an ErrInvalidPartition whose
	// assignment has more stages than configured.
	ErrStageOutOfRange = errors.New("stage out of range")

	// ErrUnknownNode is the cause of an ErrInvalidPartition that places a
	// node which was not part of the input.
	ErrUnknownNode = errors.New("unknown node")
)

// ErrInvalidConfiguration is returned synchronously, before any similarity is
// evaluated, when a builder is misconfigured or given unusable input.
//
// The underlying sentinel can be matched with errors.Is.
type ErrInvalidConfiguration struct {
	Field string
	cause error
}

func (e *ErrInvalidConfiguration) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.cause)
}

func (e *ErrInvalidConfiguration) Unwrap() error { return e.cause }

func invalidConfig(field string, cause error) error {
	return &ErrInvalidConfiguration{Field: field, cause: cause}
}

// ErrInvalidPartition indicates a malformed partition assignment. It is a
// programming error in the partitioning strategy, distinct from an empty
// bucket which is always allowed.
type ErrInvalidPartition struct {
	Stage       int
	Bucket      int
	NPartitions int
	Node        NodeID
	cause       error
}

func (e *ErrInvalidPartition) Error() string {
	return fmt.Sprintf("invalid partition (stage %d, bucket %d of %d, node %d): %v",
		e.Stage, e.Bucket, e.NPartitions, e.Node, e.cause)
}

func (e *ErrInvalidPartition) Unwrap() error { return e.cause }
