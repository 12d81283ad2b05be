// Package vertexpart implements the per-partition vertex table: a mapping
// from vertex id to attribute for one shard of the id space, with an O(1)
// id index, a defined-mask, and an optional active-vertex marker set.
//
// Partitions are immutable: every transform returns a new partition.
// Transforms that preserve the id set share the id array and index with
// their input, which is what makes cheap diffing and index-based
// aggregation possible.
package vertexpart

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/core"
)

// Entry is one (id, attribute) pair used to build partitions and to carry
// aggregation results.
type Entry[VD any] struct {
	ID   core.VertexID
	Attr VD
}

// Partition holds the vertex attributes of one shard.
type Partition[VD any] struct {
	ids    []core.VertexID         // slot -> id
	index  map[core.VertexID]int32 // id -> slot
	values []VD                    // slot -> attribute
	mask   *roaring64.Bitmap       // slots with a defined attribute
	active *roaring64.Bitmap       // active vertex ids, nil if none attached
}

// Build constructs a partition from entries. Duplicate ids are combined
// with merge; a nil merge keeps the last value seen.
func Build[VD any](entries []Entry[VD], merge func(VD, VD) VD) *Partition[VD] {
	p := &Partition[VD]{
		index: make(map[core.VertexID]int32, len(entries)),
		mask:  roaring64.NewBitmap(),
	}
	for _, e := range entries {
		if slot, ok := p.index[e.ID]; ok {
			if merge != nil {
				p.values[slot] = merge(p.values[slot], e.Attr)
			} else {
				p.values[slot] = e.Attr
			}
			continue
		}
		slot := int32(len(p.ids))
		p.index[e.ID] = slot
		p.ids = append(p.ids, e.ID)
		p.values = append(p.values, e.Attr)
		p.mask.Add(uint64(slot))
	}
	return p
}

// Len returns the number of defined vertices.
func (p *Partition[VD]) Len() int { return int(p.mask.GetCardinality()) }

// Capacity returns the size of the underlying index, including slots whose
// attribute is currently undefined.
func (p *Partition[VD]) Capacity() int { return len(p.ids) }

// Get returns the attribute for id, if defined in this partition.
func (p *Partition[VD]) Get(id core.VertexID) (VD, bool) {
	slot, ok := p.index[id]
	if !ok || !p.mask.Contains(uint64(slot)) {
		var zero VD
		return zero, false
	}
	return p.values[slot], true
}

// ForEach calls f for every defined (id, attribute) pair, in slot order.
func (p *Partition[VD]) ForEach(f func(id core.VertexID, attr VD)) {
	it := p.mask.Iterator()
	for it.HasNext() {
		slot := it.Next()
		f(p.ids[slot], p.values[slot])
	}
}

// Entries returns the defined pairs as a slice, in slot order.
func (p *Partition[VD]) Entries() []Entry[VD] {
	out := make([]Entry[VD], 0, p.Len())
	p.ForEach(func(id core.VertexID, attr VD) {
		out = append(out, Entry[VD]{ID: id, Attr: attr})
	})
	return out
}

// Active returns the attached active-vertex set, or nil.
func (p *Partition[VD]) Active() *roaring64.Bitmap { return p.active }

// WithActive returns a partition with the active set replaced. The set is
// replaced wholesale, never merged with a previous one.
func (p *Partition[VD]) WithActive(active *roaring64.Bitmap) *Partition[VD] {
	q := *p
	q.active = active
	return &q
}

// Filter returns a partition keeping only vertices satisfying pred. The id
// index is shared; only the mask shrinks.
func (p *Partition[VD]) Filter(pred func(id core.VertexID, attr VD) bool) *Partition[VD] {
	mask := roaring64.NewBitmap()
	it := p.mask.Iterator()
	for it.HasNext() {
		slot := it.Next()
		if pred(p.ids[slot], p.values[slot]) {
			mask.Add(slot)
		}
	}
	q := *p
	q.mask = mask
	return &q
}

// Map applies f to every defined attribute, producing a partition of a new
// attribute type that shares ids and index with p.
func Map[VD, VD2 any](p *Partition[VD], f func(id core.VertexID, attr VD) VD2) *Partition[VD2] {
	out := &Partition[VD2]{
		ids:    p.ids,
		index:  p.index,
		values: make([]VD2, len(p.values)),
		mask:   p.mask,
		active: p.active,
	}
	it := p.mask.Iterator()
	for it.HasNext() {
		slot := it.Next()
		out.values[slot] = f(p.ids[slot], p.values[slot])
	}
	return out
}

// Diff returns the ids whose attribute differs between old and new, judged
// by eq. Both partitions must share their index (the type-preserving
// transforms guarantee this). Ids defined on only one side also count as
// changed.
func Diff[VD any](old, upd *Partition[VD], eq func(VD, VD) bool) *roaring64.Bitmap {
	changed := roaring64.NewBitmap()
	for i, id := range upd.ids {
		slot := uint64(i)
		inOld := old.mask.Contains(slot)
		inNew := upd.mask.Contains(slot)
		switch {
		case inOld && inNew:
			if !eq(old.values[slot], upd.values[slot]) {
				changed.Add(uint64(id))
			}
		case inOld != inNew:
			changed.Add(uint64(id))
		}
	}
	return changed
}

// LeftJoin joins p with other on vertex id, keeping every vertex of p.
// The other attribute is passed by pointer, nil when absent.
func LeftJoin[VD, U, VD2 any](p *Partition[VD], other *Partition[U], f func(id core.VertexID, attr VD, otherAttr *U) VD2) *Partition[VD2] {
	return Map(p, func(id core.VertexID, attr VD) VD2 {
		if o, ok := other.Get(id); ok {
			return f(id, attr, &o)
		}
		return f(id, attr, nil)
	})
}

// InnerJoin joins p with other on vertex id, keeping only vertices defined
// on both sides.
func InnerJoin[VD, U, VD2 any](p *Partition[VD], other *Partition[U], f func(id core.VertexID, attr VD, otherAttr U) VD2) *Partition[VD2] {
	out := &Partition[VD2]{
		ids:    p.ids,
		index:  p.index,
		values: make([]VD2, len(p.values)),
		mask:   roaring64.NewBitmap(),
		active: p.active,
	}
	it := p.mask.Iterator()
	for it.HasNext() {
		slot := it.Next()
		id := p.ids[slot]
		if o, ok := other.Get(id); ok {
			out.values[slot] = f(id, p.values[slot], o)
			out.mask.Add(slot)
		}
	}
	return out
}

// AggregateUsingIndex folds msgs into a partition sharing p's index,
// combining values for the same id with reduce. Messages addressed to ids
// outside the index are dropped: only vertices this partition owns can
// receive. Vertices that receive nothing stay undefined, so the result is
// sparse.
func AggregateUsingIndex[VD, A any](p *Partition[VD], msgs []Entry[A], reduce func(A, A) A) *Partition[A] {
	out := &Partition[A]{
		ids:    p.ids,
		index:  p.index,
		values: make([]A, len(p.ids)),
		mask:   roaring64.NewBitmap(),
		active: nil,
	}
	for _, m := range msgs {
		slot, ok := p.index[m.ID]
		if !ok {
			continue
		}
		if out.mask.Contains(uint64(slot)) {
			out.values[slot] = reduce(out.values[slot], m.Attr)
		} else {
			out.values[slot] = m.Attr
			out.mask.Add(uint64(slot))
		}
	}
	return out
}
