package partition

import (
	"math"

	"github.com/hupe1980/graphgo/core"
)

// MixingPrime is a large odd constant multiplied into vertex ids before the
// partition modulus. It decorrelates the low-order bits of sequential ids
// from the modulus.
const MixingPrime uint64 = 1125899906842597

// DefaultDegreeThreshold splits vertices into high- and low-degree classes
// for the hybrid strategies. The comparison is strict: a vertex whose degree
// equals the threshold is low-degree.
const DefaultDegreeThreshold = 70

// HybridCut partitions each edge by one endpoint, keyed on the destination's
// in-degree. Edges into high-fan-in destinations are spread by source;
// everything else is co-located by destination.
type HybridCut struct {
	// Threshold is the in-degree above which a destination counts as
	// high-degree.
	Threshold int

	inDeg map[core.VertexID]int
}

// NewHybridCut returns a HybridCut with the given degree threshold.
// A threshold <= 0 selects DefaultDegreeThreshold.
func NewHybridCut(threshold int) *HybridCut {
	if threshold <= 0 {
		threshold = DefaultDegreeThreshold
	}
	return &HybridCut{Threshold: threshold}
}

// Name implements Strategy.
func (h *HybridCut) Name() string { return "hybrid-cut" }

// Prepare implements StatsStrategy: a single pass counting in-degrees.
func (h *HybridCut) Prepare(edges []Endpoints, _ int) error {
	h.inDeg = make(map[core.VertexID]int)
	for _, e := range edges {
		h.inDeg[e.Dst]++
	}
	return nil
}

// PartitionFor implements Strategy. A destination with no recorded degree
// counts as degree 0 and is therefore low-degree.
func (h *HybridCut) PartitionFor(src, dst core.VertexID, numPartitions int) core.PartitionID {
	if h.inDeg[dst] > h.Threshold {
		return mixedMod(src, numPartitions)
	}
	return mixedMod(dst, numPartitions)
}

// HybridCutPlus extends HybridCut with both endpoints' total degree. Edges
// between two same-class endpoints (high/high or low/low) land on a
// sqrt(n) x sqrt(n) logical grid, bounding each vertex's replication to
// O(sqrt(n)) partitions; mixed-class edges are keyed on the low-degree
// endpoint.
type HybridCutPlus struct {
	// Threshold is the total degree above which an endpoint counts as
	// high-degree.
	Threshold int

	deg map[core.VertexID]int
}

// NewHybridCutPlus returns a HybridCutPlus with the given degree threshold.
// A threshold <= 0 selects DefaultDegreeThreshold.
func NewHybridCutPlus(threshold int) *HybridCutPlus {
	if threshold <= 0 {
		threshold = DefaultDegreeThreshold
	}
	return &HybridCutPlus{Threshold: threshold}
}

// Name implements Strategy.
func (h *HybridCutPlus) Name() string { return "hybrid-cut-plus" }

// Prepare implements StatsStrategy: a single pass counting total degrees.
func (h *HybridCutPlus) Prepare(edges []Endpoints, _ int) error {
	h.deg = make(map[core.VertexID]int)
	for _, e := range edges {
		h.deg[e.Src]++
		h.deg[e.Dst]++
	}
	return nil
}

// PartitionFor implements Strategy. Endpoints with no recorded degree count
// as degree 0.
func (h *HybridCutPlus) PartitionFor(src, dst core.VertexID, numPartitions int) core.PartitionID {
	srcHigh := h.deg[src] > h.Threshold
	dstHigh := h.deg[dst] > h.Threshold
	switch {
	case srcHigh && dstHigh:
		return grid2D(src, dst, numPartitions)
	case srcHigh && !dstHigh:
		return mixedMod(dst, numPartitions)
	case !srcHigh && dstHigh:
		return mixedMod(src, numPartitions)
	default:
		return grid2D(src, dst, numPartitions)
	}
}

// mixedMod is the 1-D assignment: (id * MixingPrime) mod n.
func mixedMod(id core.VertexID, numPartitions int) core.PartitionID {
	return core.PartitionID((uint64(id) * MixingPrime) % uint64(numPartitions))
}

// grid2D maps an edge to a cell of a ceil(sqrt(n)) x ceil(sqrt(n)) logical
// grid, column keyed by source, row by destination. The final modulus folds
// grid cells beyond n back into range when n is not a perfect square.
func grid2D(src, dst core.VertexID, numPartitions int) core.PartitionID {
	ceilSqrt := uint64(math.Ceil(math.Sqrt(float64(numPartitions))))
	col := (uint64(src) * MixingPrime) % ceilSqrt
	row := (uint64(dst) * MixingPrime) % ceilSqrt
	return core.PartitionID((col*ceilSqrt + row) % uint64(numPartitions))
}
