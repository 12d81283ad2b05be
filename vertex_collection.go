package graphgo

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/core"
	"github.com/hupe1980/graphgo/internal/vertexpart"
	"github.com/hupe1980/graphgo/pcoll"
)

// VertexCollection is a partitioned vertex attribute collection. It is hash
// partitioned by vertex id, so two collections with the same partition
// count are co-partitioned and can be joined without a shuffle.
//
// Collections returned by graph operations are lazy: errors from the
// underlying lineage surface on Collect, Count or a downstream operation.
type VertexCollection[VD any] struct {
	coll *pcoll.Collection[*vertexpart.Partition[VD]]
	part pcoll.HashPartitioner[core.VertexID]
}

// NumPartitions returns the number of vertex partitions.
func (vc *VertexCollection[VD]) NumPartitions() int { return vc.part.N }

// Collect materializes the collection into an id to attribute map.
func (vc *VertexCollection[VD]) Collect(ctx context.Context) (map[VertexID]VD, error) {
	parts, err := vc.coll.CollectPartitions(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[VertexID]VD)
	for _, rows := range parts {
		for _, p := range rows {
			p.ForEach(func(id core.VertexID, attr VD) {
				out[id] = attr
			})
		}
	}
	return out, nil
}

// Count returns the number of vertices present in the collection.
func (vc *VertexCollection[VD]) Count(ctx context.Context) (int64, error) {
	parts, err := vc.coll.CollectPartitions(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, rows := range parts {
		for _, p := range rows {
			n += int64(p.Len())
		}
	}
	return n, nil
}

// Cache keeps materialized partitions in memory across uses.
func (vc *VertexCollection[VD]) Cache() *VertexCollection[VD] {
	vc.coll.Cache()
	return vc
}

// ids returns the set of vertex ids present in the collection.
func (vc *VertexCollection[VD]) ids(ctx context.Context) (*roaring64.Bitmap, error) {
	parts, err := vc.coll.CollectPartitions(ctx)
	if err != nil {
		return nil, err
	}
	out := roaring64.NewBitmap()
	for _, rows := range parts {
		for _, p := range rows {
			p.ForEach(func(id core.VertexID, _ VD) {
				out.Add(uint64(id))
			})
		}
	}
	return out, nil
}

// mapVertexPartitions derives a collection by transforming each partition.
func mapVertexPartitions[VD, VD2 any](vc *VertexCollection[VD], name string, f func(p *vertexpart.Partition[VD]) *vertexpart.Partition[VD2]) *VertexCollection[VD2] {
	coll := pcoll.MapPartitionsWithIndex(vc.coll, name, func(_ context.Context, _ int, rows []*vertexpart.Partition[VD]) ([]*vertexpart.Partition[VD2], error) {
		out := make([]*vertexpart.Partition[VD2], len(rows))
		for i, p := range rows {
			out[i] = f(p)
		}
		return out, nil
	})
	return &VertexCollection[VD2]{coll: coll, part: pcoll.HashPartitioner[core.VertexID]{N: vc.part.N}}
}

// zipVertexPartitions derives a collection by combining co-partitioned
// collections partition by partition.
func zipVertexPartitions[VD, U, VD2 any](a *VertexCollection[VD], b *VertexCollection[U], name string, f func(p *vertexpart.Partition[VD], q *vertexpart.Partition[U]) *vertexpart.Partition[VD2]) *VertexCollection[VD2] {
	coll := pcoll.ZipPartitions(a.coll, b.coll, name, func(_ context.Context, i int, as []*vertexpart.Partition[VD], bs []*vertexpart.Partition[U]) ([]*vertexpart.Partition[VD2], error) {
		if len(as) != 1 || len(bs) != 1 {
			return nil, &ErrPartitionMismatch{Expected: 1, Actual: len(as) * len(bs)}
		}
		return []*vertexpart.Partition[VD2]{f(as[0], bs[0])}, nil
	})
	return &VertexCollection[VD2]{coll: coll, part: pcoll.HashPartitioner[core.VertexID]{N: a.part.N}}
}
