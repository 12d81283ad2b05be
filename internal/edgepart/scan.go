package edgepart

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/core"
	"github.com/hupe1980/graphgo/internal/vertexpart"
)

// denseThreshold is the active fraction above which the clustered index is
// abandoned for a plain linear scan. Below it, enumerating active sources
// through the index skips enough edges to pay for the lookups.
const denseThreshold = 0.8

// ScanStats reports what one aggregation scan did, for metrics and for the
// cost-model tests.
type ScanStats struct {
	// EdgesScanned counts edges whose triplet reached the map function.
	EdgesScanned int
	// UsedIndex records whether the clustered source index drove the scan.
	UsedIndex bool
	// Messages counts pre-aggregated messages leaving the partition.
	Messages int
}

// AggregateMessages runs the triplet map function over the edges selected
// by dir and the attached active set, then pre-aggregates all messages per
// destination vertex with reduce, using the local vertex table for O(1)
// slot lookup. At most one message per vertex leaves the partition.
//
// Scan selection: for DirOut and DirBoth with an active fraction below
// denseThreshold, active source ids are enumerated through the clustered
// index (sub-linear skip); every other case is a linear scan with a
// predicate, because the index clusters on source only and cannot skip by
// destination activity.
//
// Messages sent to ids outside the local table are still pre-aggregated
// (in a spill map) and forwarded; ids unknown to the final vertex index are
// dropped there.
func AggregateMessages[ED, VD, A any](
	p *Partition[ED, VD],
	mapF func(src, dst core.VertexID, srcAttr, dstAttr VD, attr ED, send func(core.VertexID, A)),
	reduce func(A, A) A,
	dir core.Direction,
) ([]vertexpart.Entry[A], ScanStats) {
	var stats ScanStats

	acc := make([]A, len(p.refs))
	hit := make([]bool, len(p.refs))
	var stray map[core.VertexID]A

	send := func(id core.VertexID, msg A) {
		if slot, ok := p.local[id]; ok {
			if hit[slot] {
				acc[slot] = reduce(acc[slot], msg)
			} else {
				acc[slot] = msg
				hit[slot] = true
			}
			return
		}
		if stray == nil {
			stray = make(map[core.VertexID]A)
		}
		if prev, ok := stray[id]; ok {
			stray[id] = reduce(prev, msg)
		} else {
			stray[id] = msg
		}
	}

	visit := func(i int) {
		stats.EdgesScanned++
		src, dst := p.srcIDs[i], p.dstIDs[i]
		mapF(src, dst, p.vattrs[p.local[src]], p.vattrs[p.local[dst]], p.attrs[i], send)
	}

	active := p.active
	if active != nil && dir != core.DirNone && (dir == core.DirOut || dir == core.DirBoth) && p.IndexSize() > 0 &&
		float64(active.GetCardinality())/float64(p.IndexSize()) < denseThreshold {
		stats.UsedIndex = true
		it := active.Iterator()
		for it.HasNext() {
			src := core.VertexID(it.Next())
			start, ok := p.index[src]
			if !ok {
				continue
			}
			for i := int(start); i < len(p.srcIDs) && p.srcIDs[i] == src; i++ {
				if dir == core.DirBoth && !active.Contains(uint64(p.dstIDs[i])) {
					continue
				}
				visit(i)
			}
		}
	} else {
		for i := range p.srcIDs {
			if selectEdge(active, dir, p.srcIDs[i], p.dstIDs[i]) {
				visit(i)
			}
		}
	}

	out := make([]vertexpart.Entry[A], 0, len(p.refs))
	for slot, id := range p.refs {
		if hit[slot] {
			out = append(out, vertexpart.Entry[A]{ID: id, Attr: acc[slot]})
		}
	}
	if stray != nil {
		ids := make([]core.VertexID, 0, len(stray))
		for id := range stray {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			out = append(out, vertexpart.Entry[A]{ID: id, Attr: stray[id]})
		}
	}
	stats.Messages = len(out)
	return out, stats
}

func selectEdge(active *roaring64.Bitmap, dir core.Direction, src, dst core.VertexID) bool {
	if active == nil || dir == core.DirNone {
		return true
	}
	switch dir {
	case core.DirOut:
		return active.Contains(uint64(src))
	case core.DirIn:
		return active.Contains(uint64(dst))
	case core.DirEither:
		return active.Contains(uint64(src)) || active.Contains(uint64(dst))
	case core.DirBoth:
		return active.Contains(uint64(src)) && active.Contains(uint64(dst))
	default:
		return true
	}
}
