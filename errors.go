package graphgo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNumPartitions is returned when a partition count is not positive.
	ErrInvalidNumPartitions = errors.New("number of partitions must be positive")

	// ErrNoStrategy is returned when repartitioning is requested without a strategy.
	ErrNoStrategy = errors.New("partition strategy must not be nil")
)

// ErrPartitionMismatch indicates two graphs or collections that were
// expected to be co-partitioned but are not.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrPartitionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrPartitionMismatch) Error() string {
	return fmt.Sprintf("partition count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrPartitionMismatch) Unwrap() error { return e.cause }
