package edgepart

import (
	"github.com/hupe1980/graphgo/core"
)

// adoptTable copies replicated vertex attributes from p into q for every id
// q references, along with fidelity and active set. Used by transforms that
// rebuild the edge layout but keep the replication state.
func adoptTable[ED2, ED, VD any](q *Partition[ED2, VD], p *Partition[ED, VD], fidelity core.Fidelity) {
	for slot, id := range q.refs {
		if ps, ok := p.local[id]; ok {
			q.vattrs[slot] = p.vattrs[ps]
		}
	}
	q.fidelity = fidelity
	q.active = p.active
}

// MapEdges applies f to every edge attribute, preserving structure and
// replication state.
func MapEdges[ED, VD, ED2 any](p *Partition[ED, VD], f func(src, dst core.VertexID, attr ED) ED2) *Partition[ED2, VD] {
	q := &Partition[ED2, VD]{
		srcIDs:   p.srcIDs,
		dstIDs:   p.dstIDs,
		attrs:    make([]ED2, len(p.attrs)),
		index:    p.index,
		refs:     p.refs,
		local:    p.local,
		vattrs:   p.vattrs,
		fidelity: p.fidelity,
		active:   p.active,
	}
	for i := range p.attrs {
		q.attrs[i] = f(p.srcIDs[i], p.dstIDs[i], p.attrs[i])
	}
	return q
}

// WithVertexType rebinds the replicated vertex attribute type, keeping the
// edge layout and local index but discarding all replicated attributes.
// The result reports no fidelity until the next replication pass fills it.
func WithVertexType[ED, VD, VD2 any](p *Partition[ED, VD]) *Partition[ED, VD2] {
	return &Partition[ED, VD2]{
		srcIDs: p.srcIDs,
		dstIDs: p.dstIDs,
		attrs:  p.attrs,
		index:  p.index,
		refs:   p.refs,
		local:  p.local,
		vattrs: make([]VD2, len(p.refs)),
		active: p.active,
	}
}

// MapTriplets applies f to every edge with its replicated endpoint
// attributes attached. The caller must have upgraded the partition to the
// fidelity f requires.
func MapTriplets[ED, VD, ED2 any](p *Partition[ED, VD], f func(src, dst core.VertexID, srcAttr, dstAttr VD, attr ED) ED2) *Partition[ED2, VD] {
	return MapEdges(p, func(src, dst core.VertexID, attr ED) ED2 {
		return f(src, dst, p.vattrs[p.local[src]], p.vattrs[p.local[dst]], attr)
	})
}

// Filter returns a partition keeping only edges whose triplet satisfies
// pred. The caller must have upgraded to full fidelity first: a vertex
// predicate folded into pred may read either endpoint.
func (p *Partition[ED, VD]) Filter(pred func(src, dst core.VertexID, srcAttr, dstAttr VD, attr ED) bool) *Partition[ED, VD] {
	b := NewBuilder[ED, VD](len(p.srcIDs))
	p.ForEachTriplet(func(src, dst core.VertexID, srcAttr, dstAttr VD, attr ED) {
		if pred(src, dst, srcAttr, dstAttr, attr) {
			b.Add(src, dst, attr)
		}
	})
	q := b.Build()
	adoptTable(q, p, p.fidelity)
	return q
}

// GroupEdges merges parallel edges (same ordered src/dst pair) with merge.
// Grouping is partition-local: parallel edges split across partitions are
// not merged, so callers wanting full merging must first partition by an
// endpoint-pair key. Relies on the clustered (src, dst) order keeping
// parallel edges adjacent.
func (p *Partition[ED, VD]) GroupEdges(merge func(ED, ED) ED) *Partition[ED, VD] {
	b := NewBuilder[ED, VD](len(p.srcIDs))
	for i := 0; i < len(p.srcIDs); {
		src, dst := p.srcIDs[i], p.dstIDs[i]
		acc := p.attrs[i]
		j := i + 1
		for j < len(p.srcIDs) && p.srcIDs[j] == src && p.dstIDs[j] == dst {
			acc = merge(acc, p.attrs[j])
			j++
		}
		b.Add(src, dst, acc)
		i = j
	}
	q := b.Build()
	adoptTable(q, p, p.fidelity)
	return q
}

// Reverse returns a partition with every edge's source and destination
// swapped. Replicated attributes are carried over with the fidelity flags
// exchanged: a table that held source attributes now holds destination
// attributes.
func (p *Partition[ED, VD]) Reverse() *Partition[ED, VD] {
	b := NewBuilder[ED, VD](len(p.srcIDs))
	for i := range p.srcIDs {
		b.Add(p.dstIDs[i], p.srcIDs[i], p.attrs[i])
	}
	q := b.Build()
	adoptTable(q, p, p.fidelity.Swap())
	return q
}

// InnerJoin keeps the edges of p whose (src, dst) pair also occurs in
// other, combining attributes with f. Parallel edges in p each match the
// first attribute of other's run. Both partitions must hold the same edge
// ordering domain (same partitioning), which the clustered sort guarantees.
func InnerJoin[ED, VD, ED2, VD2, ED3 any](p *Partition[ED, VD], other *Partition[ED2, VD2], f func(src, dst core.VertexID, a ED, b ED2) ED3) *Partition[ED3, VD] {
	b := NewBuilder[ED3, VD](len(p.srcIDs))
	j := 0
	for i := 0; i < len(p.srcIDs); i++ {
		src, dst := p.srcIDs[i], p.dstIDs[i]
		for j < len(other.srcIDs) && lessPair(other.srcIDs[j], other.dstIDs[j], src, dst) {
			j++
		}
		if j < len(other.srcIDs) && other.srcIDs[j] == src && other.dstIDs[j] == dst {
			b.Add(src, dst, f(src, dst, p.attrs[i], other.attrs[j]))
		}
	}
	q := b.Build()
	adoptTable(q, p, p.fidelity)
	return q
}

func lessPair(s1, d1, s2, d2 core.VertexID) bool {
	if s1 != s2 {
		return s1 < s2
	}
	return d1 < d2
}
