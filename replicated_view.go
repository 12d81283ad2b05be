package graphgo

import (
	"context"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/core"
	"github.com/hupe1980/graphgo/internal/edgepart"
	"github.com/hupe1980/graphgo/internal/routing"
	"github.com/hupe1980/graphgo/internal/vertexpart"
	"github.com/hupe1980/graphgo/pcoll"
)

// replicatedView tracks which endpoint attribute roles have been shipped
// into the edge partitions. Fidelity only ever grows for a given view;
// operations that would lower it build a fresh view instead.
type replicatedView[VD, ED any] struct {
	edges  *pcoll.Collection[*edgepart.Partition[ED, VD]]
	hasSrc bool
	hasDst bool
}

func (v *replicatedView[VD, ED]) fidelity() core.Fidelity {
	var f core.Fidelity
	if v.hasSrc {
		f |= core.FidelitySrc
	}
	if v.hasDst {
		f |= core.FidelityDst
	}
	return f
}

func (v *replicatedView[VD, ED]) clone() *replicatedView[VD, ED] {
	return &replicatedView[VD, ED]{edges: v.edges, hasSrc: v.hasSrc, hasDst: v.hasDst}
}

// fidelityFor translates a declared attribute usage into the fidelity the
// replicated view must provide before the operation may run.
func fidelityFor(u core.AttrUsage) core.Fidelity {
	var f core.Fidelity
	if u.NeedsSrc() {
		f |= core.FidelitySrc
	}
	if u.NeedsDst() {
		f |= core.FidelityDst
	}
	return f
}

// routingFn resolves the routing table on first use. The table requires
// materialized edge partitions, so resolution is deferred until a ship
// block actually needs it.
type routingFn func(context.Context) (*routing.Table, error)

func routingFor[ED, VD any](edges *pcoll.Collection[*edgepart.Partition[ED, VD]]) routingFn {
	var (
		once sync.Once
		tbl  *routing.Table
		err  error
	)
	return func(ctx context.Context) (*routing.Table, error) {
		once.Do(func() {
			var parts [][]*edgepart.Partition[ED, VD]
			parts, err = edges.CollectPartitions(ctx)
			if err != nil {
				return
			}
			refs := make([]routing.Refs, len(parts))
			for i, rows := range parts {
				for _, p := range rows {
					src, dst := p.RoutingBitmaps()
					refs[i] = routing.Refs{Src: src, Dst: dst}
				}
			}
			tbl = routing.NewTable(refs)
		})
		return tbl, err
	}
}

// shipBlock is one block of vertex attributes addressed to an edge
// partition.
type shipBlock[VD any] = pcoll.Pair[core.PartitionID, []vertexpart.Entry[VD]]

// shipVertexAttrs builds the ship blocks for the requested fidelity: for
// every edge partition, the attributes of the vertices its routing entry
// references in the requested roles. Empty blocks are not emitted.
func shipVertexAttrs[VD any](vc *VertexCollection[VD], rt routingFn, need core.Fidelity, numEdgeParts int, metrics MetricsCollector, name string) *pcoll.Collection[shipBlock[VD]] {
	return pcoll.MapPartitionsWithIndex(vc.coll, name, func(ctx context.Context, _ int, rows []*vertexpart.Partition[VD]) ([]shipBlock[VD], error) {
		tbl, err := rt(ctx)
		if err != nil {
			return nil, err
		}
		var out []shipBlock[VD]
		for pid := 0; pid < numEdgeParts; pid++ {
			ids := tbl.Refs(core.PartitionID(pid)).IDsFor(need)
			var block []vertexpart.Entry[VD]
			for _, p := range rows {
				p.ForEach(func(id core.VertexID, attr VD) {
					if ids.Contains(uint64(id)) {
						block = append(block, vertexpart.Entry[VD]{ID: id, Attr: attr})
					}
				})
			}
			if len(block) == 0 {
				continue
			}
			metrics.RecordShipBlock(core.PartitionID(pid), len(block))
			out = append(out, shipBlock[VD]{Key: core.PartitionID(pid), Value: block})
		}
		return out, nil
	})
}

// applyShipped shuffles ship blocks to their edge partitions and merges
// them into the local vertex tables.
func applyShipped[VD, ED any](edges *pcoll.Collection[*edgepart.Partition[ED, VD]], shipped *pcoll.Collection[shipBlock[VD]], add core.Fidelity, name string) *pcoll.Collection[*edgepart.Partition[ED, VD]] {
	n := edges.NumPartitions()
	shuffled := pcoll.PartitionBy(shipped, pcoll.FuncPartitioner[core.PartitionID]{
		N:  n,
		Fn: func(p core.PartitionID) int { return int(p) },
	}, name+":shuffle")
	return pcoll.ZipPartitions(edges, shuffled, name, func(_ context.Context, _ int, eps []*edgepart.Partition[ED, VD], blocks []shipBlock[VD]) ([]*edgepart.Partition[ED, VD], error) {
		if len(eps) != 1 {
			return nil, &ErrPartitionMismatch{Expected: 1, Actual: len(eps)}
		}
		var entries []vertexpart.Entry[VD]
		for _, b := range blocks {
			entries = append(entries, b.Value...)
		}
		return []*edgepart.Partition[ED, VD]{eps[0].UpdateVertices(entries, add)}, nil
	})
}

// upgrade raises the view to at least need. Already-provided roles are
// subtracted first, so a repeated upgrade with the same need ships nothing
// and leaves the view untouched.
func (v *replicatedView[VD, ED]) upgrade(vertices *VertexCollection[VD], rt routingFn, need core.Fidelity, metrics MetricsCollector, name string) {
	need &^= v.fidelity()
	if need == core.FidelityNone {
		return
	}
	shipped := shipVertexAttrs(vertices, rt, need, v.edges.NumPartitions(), metrics, name+":ship")
	v.edges = applyShipped(v.edges, shipped, need, name).Cache()
	if need.HasSrc() {
		v.hasSrc = true
	}
	if need.HasDst() {
		v.hasDst = true
	}
}

// withUpdates returns a view whose replicated attributes reflect changed,
// a co-partitioned collection holding only the vertices whose attribute
// differs. Fidelity is unchanged; only already-replicated roles are
// re-shipped.
func (v *replicatedView[VD, ED]) withUpdates(changed *VertexCollection[VD], rt routingFn, metrics MetricsCollector, name string) *replicatedView[VD, ED] {
	f := v.fidelity()
	if f == core.FidelityNone {
		return v.clone()
	}
	shipped := shipVertexAttrs(changed, rt, f, v.edges.NumPartitions(), metrics, name+":ship")
	out := v.clone()
	out.edges = applyShipped(v.edges, shipped, f, name)
	return out
}

// withActive returns a view whose edge partitions carry the active vertex
// set marker. Replicated attributes are untouched.
func (v *replicatedView[VD, ED]) withActive(active *roaring64.Bitmap, name string) *replicatedView[VD, ED] {
	out := v.clone()
	out.edges = mapEdgePartitions(v.edges, name, func(p *edgepart.Partition[ED, VD]) *edgepart.Partition[ED, VD] {
		return p.WithActive(active)
	})
	return out
}

// reverse returns a view with every edge flipped and the replication roles
// swapped to match.
func (v *replicatedView[VD, ED]) reverse(name string) *replicatedView[VD, ED] {
	out := &replicatedView[VD, ED]{hasSrc: v.hasDst, hasDst: v.hasSrc}
	out.edges = mapEdgePartitions(v.edges, name, func(p *edgepart.Partition[ED, VD]) *edgepart.Partition[ED, VD] {
		return p.Reverse()
	})
	return out
}

// mapEdgePartitions derives an edge collection by transforming each
// partition.
func mapEdgePartitions[ED, VD, ED2, VD2 any](c *pcoll.Collection[*edgepart.Partition[ED, VD]], name string, f func(p *edgepart.Partition[ED, VD]) *edgepart.Partition[ED2, VD2]) *pcoll.Collection[*edgepart.Partition[ED2, VD2]] {
	return pcoll.MapPartitionsWithIndex(c, name, func(_ context.Context, _ int, rows []*edgepart.Partition[ED, VD]) ([]*edgepart.Partition[ED2, VD2], error) {
		out := make([]*edgepart.Partition[ED2, VD2], len(rows))
		for i, p := range rows {
			out[i] = f(p)
		}
		return out, nil
	})
}
