package graphgo

import (
	"context"

	"github.com/hupe1980/graphgo/core"
	"github.com/hupe1980/graphgo/internal/edgepart"
	"github.com/hupe1980/graphgo/internal/routing"
	"github.com/hupe1980/graphgo/internal/vertexpart"
	"github.com/hupe1980/graphgo/pcoll"
)

// Type-preserving transformations are methods. Transformations that change
// a vertex or edge attribute type are package-level functions, since a
// method cannot introduce a new type parameter.

// MapVertices transforms every vertex attribute, keeping the structure.
//
// eq is an optional attribute equality check. When given, only vertices
// whose attribute actually changed are re-shipped into the replicated
// view; when nil, every vertex counts as changed, which is correct but
// ships more.
func (g *Graph[VD, ED]) MapVertices(f func(id VertexID, attr VD) VD, eq func(a, b VD) bool) *Graph[VD, ED] {
	newVerts := mapVertexPartitions(g.vertices, "vertices:map", func(p *vertexpart.Partition[VD]) *vertexpart.Partition[VD] {
		return vertexpart.Map(p, f)
	})
	view := g.currentView().withUpdates(changedVertices(g.vertices, newVerts, eq), g.routing, g.metrics, "view:update")
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, newVerts, view, g.routing)
}

func changedVertices[VD any](old, upd *VertexCollection[VD], eq func(a, b VD) bool) *VertexCollection[VD] {
	if eq == nil {
		return upd
	}
	return zipVertexPartitions(old, upd, "vertices:diff", func(po, pn *vertexpart.Partition[VD]) *vertexpart.Partition[VD] {
		diff := vertexpart.Diff(po, pn, eq)
		return pn.Filter(func(id core.VertexID, _ VD) bool {
			return diff.Contains(uint64(id))
		})
	})
}

// JoinVertices merges a co-partitioned attribute table into the graph's
// vertices. Vertices absent from the table keep their attribute; present
// ones are re-shipped into the replicated view as a targeted update.
func JoinVertices[VD, ED, U any](g *Graph[VD, ED], table *VertexCollection[U], f func(id VertexID, attr VD, u U) VD) *Graph[VD, ED] {
	newVerts := zipVertexPartitions(g.vertices, table, "vertices:join", func(p *vertexpart.Partition[VD], t *vertexpart.Partition[U]) *vertexpart.Partition[VD] {
		return vertexpart.Map(p, func(id core.VertexID, attr VD) VD {
			if u, ok := t.Get(id); ok {
				return f(id, attr, u)
			}
			return attr
		})
	})
	changed := zipVertexPartitions(newVerts, table, "vertices:join:changed", func(p *vertexpart.Partition[VD], t *vertexpart.Partition[U]) *vertexpart.Partition[VD] {
		return p.Filter(func(id core.VertexID, _ VD) bool {
			_, ok := t.Get(id)
			return ok
		})
	})
	view := g.currentView().withUpdates(changed, g.routing, g.metrics, "view:update")
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, newVerts, view, g.routing)
}

// OuterJoinVertices joins an attribute table into the graph, producing a
// new vertex attribute type. f receives nil for vertices absent from the
// table. The replicated view is rebuilt from scratch on next use.
func OuterJoinVertices[VD, ED, U, VD2 any](g *Graph[VD, ED], table *VertexCollection[U], f func(id VertexID, attr VD, u *U) VD2) *Graph[VD2, ED] {
	newVerts := zipVertexPartitions(g.vertices, table, "vertices:outer-join", func(p *vertexpart.Partition[VD], t *vertexpart.Partition[U]) *vertexpart.Partition[VD2] {
		return vertexpart.LeftJoin(p, t, f)
	})
	edges := mapEdgePartitions(g.currentView().edges, "edges:rebind", edgepart.WithVertexType[ED, VD, VD2])
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, newVerts, &replicatedView[VD2, ED]{edges: edges}, g.routing)
}

// MapVerticesTo transforms every vertex attribute into a new type. The
// replicated view is rebuilt from scratch on next use.
func MapVerticesTo[VD, ED, VD2 any](g *Graph[VD, ED], f func(id VertexID, attr VD) VD2) *Graph[VD2, ED] {
	newVerts := mapVertexPartitions(g.vertices, "vertices:map", func(p *vertexpart.Partition[VD]) *vertexpart.Partition[VD2] {
		return vertexpart.Map(p, f)
	})
	edges := mapEdgePartitions(g.currentView().edges, "edges:rebind", edgepart.WithVertexType[ED, VD, VD2])
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, newVerts, &replicatedView[VD2, ED]{edges: edges}, g.routing)
}

// MapEdges transforms every edge attribute, keeping structure and
// replication state.
func (g *Graph[VD, ED]) MapEdges(f func(src, dst VertexID, attr ED) ED) *Graph[VD, ED] {
	v := g.currentView()
	nv := v.clone()
	nv.edges = mapEdgePartitions(v.edges, "edges:map", func(p *edgepart.Partition[ED, VD]) *edgepart.Partition[ED, VD] {
		return edgepart.MapEdges(p, f)
	})
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, g.vertices, nv, g.routing)
}

// MapEdgesTo transforms every edge attribute into a new type.
func MapEdgesTo[VD, ED, ED2 any](g *Graph[VD, ED], f func(src, dst VertexID, attr ED) ED2) *Graph[VD, ED2] {
	v := g.currentView()
	edges := mapEdgePartitions(v.edges, "edges:map", func(p *edgepart.Partition[ED, VD]) *edgepart.Partition[ED2, VD] {
		return edgepart.MapEdges(p, f)
	})
	nv := &replicatedView[VD, ED2]{edges: edges, hasSrc: v.hasSrc, hasDst: v.hasDst}
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, g.vertices, nv, g.routing)
}

// MapTriplets transforms every edge attribute with both endpoint
// attributes in scope. usage declares which endpoint attributes f actually
// reads; the replicated view is upgraded accordingly before f runs.
func (g *Graph[VD, ED]) MapTriplets(f func(t EdgeTriplet[VD, ED]) ED, usage AttrUsage) *Graph[VD, ED] {
	v := g.upgradedView(fidelityFor(usage), "edges:map-triplets")
	nv := v.clone()
	nv.edges = mapEdgePartitions(v.edges, "edges:map-triplets", func(p *edgepart.Partition[ED, VD]) *edgepart.Partition[ED, VD] {
		return edgepart.MapTriplets(p, func(src, dst core.VertexID, srcAttr, dstAttr VD, attr ED) ED {
			return f(EdgeTriplet[VD, ED]{SrcID: src, DstID: dst, SrcAttr: srcAttr, DstAttr: dstAttr, Attr: attr})
		})
	})
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, g.vertices, nv, g.routing)
}

// MapTripletsTo transforms every edge attribute into a new type with both
// endpoint attributes in scope.
func MapTripletsTo[VD, ED, ED2 any](g *Graph[VD, ED], f func(t EdgeTriplet[VD, ED]) ED2, usage AttrUsage) *Graph[VD, ED2] {
	v := g.upgradedView(fidelityFor(usage), "edges:map-triplets")
	edges := mapEdgePartitions(v.edges, "edges:map-triplets", func(p *edgepart.Partition[ED, VD]) *edgepart.Partition[ED2, VD] {
		return edgepart.MapTriplets(p, func(src, dst core.VertexID, srcAttr, dstAttr VD, attr ED) ED2 {
			return f(EdgeTriplet[VD, ED]{SrcID: src, DstID: dst, SrcAttr: srcAttr, DstAttr: dstAttr, Attr: attr})
		})
	})
	nv := &replicatedView[VD, ED2]{edges: edges, hasSrc: v.hasSrc, hasDst: v.hasDst}
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, g.vertices, nv, g.routing)
}

// Subgraph restricts the graph to vertices satisfying vpred and edges
// satisfying epred whose both endpoints survive. A nil predicate keeps
// everything on that side.
func (g *Graph[VD, ED]) Subgraph(vpred func(id VertexID, attr VD) bool, epred func(t EdgeTriplet[VD, ED]) bool) *Graph[VD, ED] {
	v := g.upgradedView(core.FidelityBoth, "subgraph")

	newVerts := g.vertices
	if vpred != nil {
		newVerts = mapVertexPartitions(g.vertices, "subgraph:vertices", func(p *vertexpart.Partition[VD]) *vertexpart.Partition[VD] {
			return p.Filter(vpred)
		})
	}
	edges := mapEdgePartitions(v.edges, "subgraph:edges", func(p *edgepart.Partition[ED, VD]) *edgepart.Partition[ED, VD] {
		return p.Filter(func(src, dst core.VertexID, srcAttr, dstAttr VD, attr ED) bool {
			if vpred != nil && (!vpred(src, srcAttr) || !vpred(dst, dstAttr)) {
				return false
			}
			return epred == nil || epred(EdgeTriplet[VD, ED]{SrcID: src, DstID: dst, SrcAttr: srcAttr, DstAttr: dstAttr, Attr: attr})
		})
	})
	nv := &replicatedView[VD, ED]{edges: edges, hasSrc: true, hasDst: true}
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, newVerts, nv, routingFor(edges))
}

// Mask restricts the graph to the vertices and edges also present in
// other, keeping the receiver's attributes. Both graphs must be
// co-partitioned: same vertex partitioner and same edge partitioning.
func Mask[VD, ED, VD2, ED2 any](g *Graph[VD, ED], other *Graph[VD2, ED2]) (*Graph[VD, ED], error) {
	if g.numPartitions != other.numPartitions {
		return nil, &ErrPartitionMismatch{Expected: g.numPartitions, Actual: other.numPartitions}
	}
	if g.vertices.part.N != other.vertices.part.N {
		return nil, &ErrPartitionMismatch{Expected: g.vertices.part.N, Actual: other.vertices.part.N}
	}
	newVerts := zipVertexPartitions(g.vertices, other.vertices, "mask:vertices", func(p *vertexpart.Partition[VD], q *vertexpart.Partition[VD2]) *vertexpart.Partition[VD] {
		return vertexpart.InnerJoin(p, q, func(_ core.VertexID, attr VD, _ VD2) VD {
			return attr
		})
	})
	edges := pcoll.ZipPartitions(g.currentView().edges, other.currentView().edges, "mask:edges", func(_ context.Context, _ int, as []*edgepart.Partition[ED, VD], bs []*edgepart.Partition[ED2, VD2]) ([]*edgepart.Partition[ED, VD], error) {
		if len(as) != 1 || len(bs) != 1 {
			return nil, &ErrPartitionMismatch{Expected: 1, Actual: len(as) * len(bs)}
		}
		return []*edgepart.Partition[ED, VD]{edgepart.InnerJoin(as[0], bs[0], func(_, _ core.VertexID, attr ED, _ ED2) ED {
			return attr
		})}, nil
	})
	hasSrc, hasDst := g.currentView().hasSrc, g.currentView().hasDst
	nv := &replicatedView[VD, ED]{edges: edges, hasSrc: hasSrc, hasDst: hasDst}
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, newVerts, nv, routingFor(edges)), nil
}

// GroupEdges merges parallel edges within each partition. Edges of the
// same (src, dst) pair land in the same partition under any strategy, so
// the merge is complete.
func (g *Graph[VD, ED]) GroupEdges(merge func(a, b ED) ED) *Graph[VD, ED] {
	v := g.currentView()
	nv := v.clone()
	nv.edges = mapEdgePartitions(v.edges, "edges:group", func(p *edgepart.Partition[ED, VD]) *edgepart.Partition[ED, VD] {
		return p.GroupEdges(merge)
	})
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, g.vertices, nv, g.routing)
}

// Reverse flips the direction of every edge. Replicated attributes and
// routing information are reused with the roles swapped.
func (g *Graph[VD, ED]) Reverse() *Graph[VD, ED] {
	nv := g.currentView().reverse("edges:reverse")
	return newDerivedGraph(g.exec, g.logger, g.metrics, g.numPartitions, g.vertices, nv, reversedRouting(g.routing))
}

func reversedRouting(rt routingFn) routingFn {
	return func(ctx context.Context) (*routing.Table, error) {
		tbl, err := rt(ctx)
		if err != nil {
			return nil, err
		}
		return tbl.Reversed(), nil
	}
}
