// Package partition implements the edge partitioning strategies that decide
// which partition each edge of a graph is assigned to.
//
// All strategies are deterministic functions of (srcID, dstID, numPartitions)
// except the greedy and degree-keyed variants, which additionally depend on
// aggregate statistics collected in a prior pass over the edge set. Such
// strategies implement StatsStrategy; callers must invoke Prepare once with
// the full edge set before asking for assignments.
package partition

import "github.com/hupe1980/graphgo/core"

// Endpoints is the (src, dst) pair of a directed edge, stripped of its
// attribute. Statistics passes operate on these.
type Endpoints struct {
	Src core.VertexID
	Dst core.VertexID
}

// Strategy assigns each edge to a partition.
//
// PartitionFor must return a value in [0, numPartitions). numPartitions is
// validated by the caller and is always >= 1 here.
type Strategy interface {
	// Name returns a stable, human-readable strategy name for logs.
	Name() string

	// PartitionFor returns the partition for the edge (src, dst).
	PartitionFor(src, dst core.VertexID, numPartitions int) core.PartitionID
}

// StatsStrategy is a Strategy that needs a statistics pass over the whole
// edge set before it can assign partitions.
type StatsStrategy interface {
	Strategy

	// Prepare runs the statistics pass. It must be called exactly once,
	// before any PartitionFor call, with every edge that will later be
	// assigned.
	Prepare(edges []Endpoints, numPartitions int) error
}

// nonNegMod returns id mod n in [0, n). VertexIDs may be negative.
func nonNegMod(id core.VertexID, n int) int {
	m := int(id % core.VertexID(n))
	if m < 0 {
		m += n
	}
	return m
}
