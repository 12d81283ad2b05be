package graphgo

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/core"
	"github.com/hupe1980/graphgo/internal/edgepart"
	"github.com/hupe1980/graphgo/internal/vertexpart"
	"github.com/hupe1980/graphgo/pcoll"
)

type aggregateOptions struct {
	usage  core.AttrUsage
	dir    core.Direction
	active *roaring64.Bitmap
}

// AggregateOption configures MapReduceTriplets.
type AggregateOption func(*aggregateOptions)

// WithAttrUsage declares which endpoint attributes the map function reads.
// Defaults to UsesBoth; a narrower declaration skips replication of the
// unread side.
func WithAttrUsage(u AttrUsage) AggregateOption {
	return func(o *aggregateOptions) {
		o.usage = u
	}
}

// WithActiveSet restricts the scan to edges incident to the given vertices
// in the given direction. DirOut selects edges whose source is active,
// DirIn whose destination, DirEither at least one endpoint, DirBoth both.
func WithActiveSet(ids []VertexID, dir Direction) AggregateOption {
	bm := roaring64.NewBitmap()
	for _, id := range ids {
		bm.Add(uint64(id))
	}
	return withActiveBitmap(bm, dir)
}

func withActiveBitmap(bm *roaring64.Bitmap, dir Direction) AggregateOption {
	return func(o *aggregateOptions) {
		o.active = bm
		o.dir = dir
	}
}

// MapReduceTriplets runs mapF over every selected edge triplet and reduces
// the messages it sends per destination vertex with reduceF. The result is
// sparse: only vertices that received at least one message are present.
// Messages sent to ids not in the graph's vertex collection are dropped.
//
// Messages are pre-aggregated inside each edge partition before the
// shuffle, so at most one message per (partition, vertex) pair crosses
// partition boundaries. reduceF must be commutative and associative; the
// reduction order is unspecified.
//
// The result is lazy and co-partitioned with the graph's vertices.
func MapReduceTriplets[VD, ED, A any](g *Graph[VD, ED], mapF func(t EdgeTriplet[VD, ED], send func(id VertexID, msg A)), reduceF func(a, b A) A, opts ...AggregateOption) *VertexCollection[A] {
	o := &aggregateOptions{usage: core.UsesBoth, dir: core.DirNone}
	for _, opt := range opts {
		opt(o)
	}

	v := g.upgradedView(fidelityFor(o.usage), "aggregate")
	if o.active != nil {
		v = v.withActive(o.active, "aggregate:active")
	}

	metrics, logger := g.metrics, g.logger
	msgs := pcoll.MapPartitionsWithIndex(v.edges, "aggregate:messages", func(ctx context.Context, i int, rows []*edgepart.Partition[ED, VD]) ([]pcoll.Pair[core.VertexID, A], error) {
		var out []pcoll.Pair[core.VertexID, A]
		for _, p := range rows {
			entries, stats := edgepart.AggregateMessages(p, func(src, dst core.VertexID, srcAttr, dstAttr VD, attr ED, send func(core.VertexID, A)) {
				mapF(EdgeTriplet[VD, ED]{SrcID: src, DstID: dst, SrcAttr: srcAttr, DstAttr: dstAttr, Attr: attr}, send)
			}, reduceF, o.dir)
			metrics.RecordAggregateScan(core.PartitionID(i), stats.EdgesScanned, stats.Messages, stats.UsedIndex)
			logger.LogAggregate(ctx, i, stats.EdgesScanned, stats.Messages, stats.UsedIndex)
			for _, e := range entries {
				out = append(out, pcoll.Pair[core.VertexID, A]{Key: e.ID, Value: e.Attr})
			}
		}
		return out, nil
	})

	shuffled := pcoll.PartitionBy(msgs, g.vertices.part, "aggregate:shuffle")
	result := pcoll.ZipPartitions(g.vertices.coll, shuffled, "aggregate:reduce", func(_ context.Context, _ int, vps []*vertexpart.Partition[VD], pairs []pcoll.Pair[core.VertexID, A]) ([]*vertexpart.Partition[A], error) {
		if len(vps) != 1 {
			return nil, &ErrPartitionMismatch{Expected: 1, Actual: len(vps)}
		}
		entries := make([]vertexpart.Entry[A], len(pairs))
		for j, kv := range pairs {
			entries[j] = vertexpart.Entry[A]{ID: kv.Key, Attr: kv.Value}
		}
		return []*vertexpart.Partition[A]{vertexpart.AggregateUsingIndex(vps[0], entries, reduceF)}, nil
	})
	return &VertexCollection[A]{coll: result, part: g.vertices.part}
}

// InDegrees returns the in-degree of every vertex with at least one
// incoming edge. Vertices absent from the result have in-degree zero.
func (g *Graph[VD, ED]) InDegrees() *VertexCollection[int] {
	return MapReduceTriplets(g, func(t EdgeTriplet[VD, ED], send func(VertexID, int)) {
		send(t.DstID, 1)
	}, func(a, b int) int { return a + b }, WithAttrUsage(UsesNone))
}

// OutDegrees returns the out-degree of every vertex with at least one
// outgoing edge.
func (g *Graph[VD, ED]) OutDegrees() *VertexCollection[int] {
	return MapReduceTriplets(g, func(t EdgeTriplet[VD, ED], send func(VertexID, int)) {
		send(t.SrcID, 1)
	}, func(a, b int) int { return a + b }, WithAttrUsage(UsesNone))
}

// Degrees returns the total degree of every vertex with at least one
// incident edge.
func (g *Graph[VD, ED]) Degrees() *VertexCollection[int] {
	return MapReduceTriplets(g, func(t EdgeTriplet[VD, ED], send func(VertexID, int)) {
		send(t.SrcID, 1)
		send(t.DstID, 1)
	}, func(a, b int) int { return a + b }, WithAttrUsage(UsesNone))
}
