package edgepart

import (
	"sort"

	"github.com/hupe1980/graphgo/core"
)

// Builder accumulates edges and produces a clustered Partition. Input order
// is irrelevant: Build sorts by (src, dst) before constructing the index.
type Builder[ED, VD any] struct {
	src   []core.VertexID
	dst   []core.VertexID
	attrs []ED
}

// NewBuilder returns a builder with room for capacity edges.
func NewBuilder[ED, VD any](capacity int) *Builder[ED, VD] {
	return &Builder[ED, VD]{
		src:   make([]core.VertexID, 0, capacity),
		dst:   make([]core.VertexID, 0, capacity),
		attrs: make([]ED, 0, capacity),
	}
}

// Add appends one edge.
func (b *Builder[ED, VD]) Add(src, dst core.VertexID, attr ED) {
	b.src = append(b.src, src)
	b.dst = append(b.dst, dst)
	b.attrs = append(b.attrs, attr)
}

// Build sorts the accumulated edges and constructs the partition: columnar
// arrays, the clustered source index, and an empty replicated vertex table
// covering every referenced id (fidelity none).
func (b *Builder[ED, VD]) Build() *Partition[ED, VD] {
	n := len(b.src)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		pi, pj := perm[i], perm[j]
		if b.src[pi] != b.src[pj] {
			return b.src[pi] < b.src[pj]
		}
		return b.dst[pi] < b.dst[pj]
	})

	p := &Partition[ED, VD]{
		srcIDs: make([]core.VertexID, n),
		dstIDs: make([]core.VertexID, n),
		attrs:  make([]ED, n),
		index:  make(map[core.VertexID]int32),
		local:  make(map[core.VertexID]int32),
	}
	for i, pi := range perm {
		p.srcIDs[i] = b.src[pi]
		p.dstIDs[i] = b.dst[pi]
		p.attrs[i] = b.attrs[pi]
	}

	for i := 0; i < n; i++ {
		if _, ok := p.index[p.srcIDs[i]]; !ok {
			p.index[p.srcIDs[i]] = int32(i)
		}
		p.addRef(p.srcIDs[i])
		p.addRef(p.dstIDs[i])
	}
	p.vattrs = make([]VD, len(p.refs))

	return p
}

func (p *Partition[ED, VD]) addRef(id core.VertexID) {
	if _, ok := p.local[id]; !ok {
		p.local[id] = int32(len(p.refs))
		p.refs = append(p.refs, id)
	}
}
