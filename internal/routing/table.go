// Package routing implements the routing table: for every edge partition,
// the sets of vertex ids that partition references as edge source and as
// edge destination. Replication ships a vertex attribute only into the
// partitions whose routing entry references it, in the role the requested
// fidelity asks for.
//
// The table is computed once from edge endpoints when a graph is built and
// is invalidated whenever the edge partitioning changes.
package routing

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/core"
)

// Refs holds the vertex ids one edge partition references, split by role.
type Refs struct {
	Src *roaring64.Bitmap
	Dst *roaring64.Bitmap
}

// IDsFor returns the ids referenced in the roles selected by need. The
// returned bitmap is freshly allocated and safe to mutate.
func (r Refs) IDsFor(need core.Fidelity) *roaring64.Bitmap {
	out := roaring64.NewBitmap()
	if need.HasSrc() && r.Src != nil {
		out.Or(r.Src)
	}
	if need.HasDst() && r.Dst != nil {
		out.Or(r.Dst)
	}
	return out
}

// Table maps each edge partition to its referenced vertex ids.
type Table struct {
	parts []Refs
}

// NewTable builds a table from per-partition reference sets, indexed by
// partition id.
func NewTable(parts []Refs) *Table {
	return &Table{parts: parts}
}

// NumPartitions returns the number of edge partitions covered.
func (t *Table) NumPartitions() int { return len(t.parts) }

// Refs returns the reference sets of partition p.
func (t *Table) Refs(p core.PartitionID) Refs { return t.parts[p] }

// Reversed returns a table with the source and destination roles swapped,
// matching a graph whose edge directions have been flipped. Bitmaps are
// shared with the receiver.
func (t *Table) Reversed() *Table {
	parts := make([]Refs, len(t.parts))
	for i, r := range t.parts {
		parts[i] = Refs{Src: r.Dst, Dst: r.Src}
	}
	return &Table{parts: parts}
}
