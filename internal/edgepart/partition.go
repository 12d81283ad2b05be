// Package edgepart implements the per-partition columnar edge store: the
// edges assigned to one partition, clustered by source id, together with a
// locally replicated vertex-attribute table and the fidelity flag recording
// which endpoint attributes that table currently materializes.
//
// The replicated table is a cache. Correctness of any triplet-level
// computation depends on the table matching the fidelity requested at read
// time, never on completeness beyond that.
package edgepart

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/core"
	"github.com/hupe1980/graphgo/internal/vertexpart"
)

// Partition is the columnar edge store of one partition.
//
// Edges are sorted by (src, dst), which yields a clustered index over each
// source's outgoing run and keeps parallel edges adjacent for grouping.
type Partition[ED, VD any] struct {
	srcIDs []core.VertexID
	dstIDs []core.VertexID
	attrs  []ED

	// index maps a source id to the first offset of its run.
	index map[core.VertexID]int32

	// Local replicated vertex table: every vertex referenced by this
	// partition's edges gets a slot, whether or not an attribute has been
	// shipped for it yet.
	refs     []core.VertexID
	local    map[core.VertexID]int32
	vattrs   []VD
	fidelity core.Fidelity

	// active marks the vertex ids considered active for the current
	// iteration. nil means no restriction is attached.
	active *roaring64.Bitmap
}

// Size returns the number of edges.
func (p *Partition[ED, VD]) Size() int { return len(p.srcIDs) }

// IndexSize returns the number of distinct source ids, i.e. the size of the
// clustered index.
func (p *Partition[ED, VD]) IndexSize() int { return len(p.index) }

// Fidelity returns which endpoint attributes are currently materialized.
func (p *Partition[ED, VD]) Fidelity() core.Fidelity { return p.fidelity }

// Active returns the attached active set, or nil.
func (p *Partition[ED, VD]) Active() *roaring64.Bitmap { return p.active }

// WithActive returns a partition with the active set replaced. Replicated
// attributes are untouched.
func (p *Partition[ED, VD]) WithActive(active *roaring64.Bitmap) *Partition[ED, VD] {
	q := *p
	q.active = active
	return &q
}

// ForEach calls f for every edge in clustered order.
func (p *Partition[ED, VD]) ForEach(f func(src, dst core.VertexID, attr ED)) {
	for i := range p.srcIDs {
		f(p.srcIDs[i], p.dstIDs[i], p.attrs[i])
	}
}

// ForEachTriplet calls f for every edge with the currently replicated
// endpoint attributes attached. Attributes beyond the partition's fidelity
// are zero values; callers must upgrade first.
func (p *Partition[ED, VD]) ForEachTriplet(f func(src, dst core.VertexID, srcAttr, dstAttr VD, attr ED)) {
	for i := range p.srcIDs {
		f(p.srcIDs[i], p.dstIDs[i], p.vattrs[p.local[p.srcIDs[i]]], p.vattrs[p.local[p.dstIDs[i]]], p.attrs[i])
	}
}

// ReferencedIDs returns the ids of every vertex referenced by this
// partition's edges, in local slot order.
func (p *Partition[ED, VD]) ReferencedIDs() []core.VertexID {
	out := make([]core.VertexID, len(p.refs))
	copy(out, p.refs)
	return out
}

// RoutingBitmaps returns the sets of vertex ids referenced as source and as
// destination. The routing table is built from these.
func (p *Partition[ED, VD]) RoutingBitmaps() (src, dst *roaring64.Bitmap) {
	src = roaring64.NewBitmap()
	dst = roaring64.NewBitmap()
	for i := range p.srcIDs {
		src.Add(uint64(p.srcIDs[i]))
		dst.Add(uint64(p.dstIDs[i]))
	}
	return src, dst
}

// VertexAttr returns the replicated attribute for id, if the vertex is
// referenced by this partition.
func (p *Partition[ED, VD]) VertexAttr(id core.VertexID) (VD, bool) {
	slot, ok := p.local[id]
	if !ok {
		var zero VD
		return zero, false
	}
	return p.vattrs[slot], true
}

// UpdateVertices returns a partition whose replicated table has the given
// attributes applied and whose fidelity is raised by add. Entries for ids
// this partition does not reference are ignored. The table is
// copy-on-write; edges and index are shared.
func (p *Partition[ED, VD]) UpdateVertices(entries []vertexpart.Entry[VD], add core.Fidelity) *Partition[ED, VD] {
	q := *p
	q.vattrs = make([]VD, len(p.vattrs))
	copy(q.vattrs, p.vattrs)
	for _, e := range entries {
		if slot, ok := q.local[e.ID]; ok {
			q.vattrs[slot] = e.Attr
		}
	}
	q.fidelity = p.fidelity.With(add)
	return &q
}
