package graphgo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/graphgo/core"
	"github.com/hupe1980/graphgo/internal/edgepart"
	"github.com/hupe1980/graphgo/internal/vertexpart"
	"github.com/hupe1980/graphgo/partition"
	"github.com/hupe1980/graphgo/pcoll"
)

// Graph is a partitioned property graph: a vertex collection hash
// partitioned by id and an edge collection cut by a partition strategy,
// with a replicated view shipping endpoint attributes to the edge
// partitions on demand.
//
// Transformations are lazy. They compose a lineage of partitioned
// collections; nothing runs until a materializing call (Triplets, Collect
// on a vertex collection, Count) walks the chain, and errors surface
// there. A Graph is safe for concurrent use.
type Graph[VD, ED any] struct {
	exec    *pcoll.Executor
	logger  *Logger
	metrics MetricsCollector

	numPartitions int

	vertices *VertexCollection[VD]

	viewMu sync.Mutex
	view   *replicatedView[VD, ED]

	routing routingFn
}

// New builds a graph from explicit vertices and edges. Vertices appearing
// only as edge endpoints are added with defaultAttr; an explicit attribute
// always wins. Duplicate vertex ids keep the last attribute given.
func New[VD, ED any](vertices []Vertex[VD], edges []Edge[ED], defaultAttr VD, opts ...Option) (*Graph[VD, ED], error) {
	o := resolveOptions(opts...)
	if o.numPartitions <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNumPartitions, o.numPartitions)
	}

	edgeSrc := func(context.Context) ([]Edge[ED], error) { return edges, nil }
	ecoll := buildEdgePartitions[VD](o.executor, "edges", o.numPartitions, o.strategy, o.metricsCollector, o.logger, edgeSrc)
	vcoll := buildVertexCollection(o.executor, o.numPartitions, vertices, edges, defaultAttr)

	return &Graph[VD, ED]{
		exec:          o.executor,
		logger:        o.logger,
		metrics:       o.metricsCollector,
		numPartitions: o.numPartitions,
		vertices:      vcoll,
		view:          &replicatedView[VD, ED]{edges: ecoll},
		routing:       routingFor(ecoll),
	}, nil
}

// FromEdges builds a graph from edges alone. Every endpoint becomes a
// vertex with defaultAttr.
func FromEdges[VD, ED any](edges []Edge[ED], defaultAttr VD, opts ...Option) (*Graph[VD, ED], error) {
	return New[VD](nil, edges, defaultAttr, opts...)
}

// buildEdgePartitions cuts edges into n partitions with the given
// strategy. The cut is lazy and runs once: stats strategies get their
// preparation pass over the full edge set immediately before assignment.
func buildEdgePartitions[VD, ED any](exec *pcoll.Executor, name string, n int, strat partition.Strategy, metrics MetricsCollector, logger *Logger, edges func(context.Context) ([]Edge[ED], error)) *pcoll.Collection[*edgepart.Partition[ED, VD]] {
	var (
		once    sync.Once
		buckets [][]Edge[ED]
		cutErr  error
	)
	return pcoll.New(exec, name, n, func(ctx context.Context, i int) ([]*edgepart.Partition[ED, VD], error) {
		once.Do(func() {
			start := time.Now()
			all, err := edges(ctx)
			if err != nil {
				cutErr = err
				return
			}
			if ss, ok := strat.(partition.StatsStrategy); ok {
				eps := make([]partition.Endpoints, len(all))
				for j, e := range all {
					eps[j] = partition.Endpoints{Src: e.Src, Dst: e.Dst}
				}
				if cutErr = ss.Prepare(eps, n); cutErr != nil {
					logger.LogPartition(ctx, strat.Name(), n, len(all), cutErr)
					return
				}
			}
			buckets = make([][]Edge[ED], n)
			for _, e := range all {
				p := strat.PartitionFor(e.Src, e.Dst, n)
				buckets[p] = append(buckets[p], e)
			}
			metrics.RecordRepartition(strat.Name(), n, len(all), time.Since(start))
			logger.LogPartition(ctx, strat.Name(), n, len(all), nil)
		})
		if cutErr != nil {
			return nil, cutErr
		}
		b := edgepart.NewBuilder[ED, VD](len(buckets[i]))
		for _, e := range buckets[i] {
			b.Add(e.Src, e.Dst, e.Attr)
		}
		return []*edgepart.Partition[ED, VD]{b.Build()}, nil
	})
}

func buildVertexCollection[VD, ED any](exec *pcoll.Executor, n int, vertices []Vertex[VD], edges []Edge[ED], defaultAttr VD) *VertexCollection[VD] {
	part := pcoll.HashPartitioner[core.VertexID]{N: n}
	buckets := make([][]vertexpart.Entry[VD], n)
	seen := make(map[core.VertexID]struct{}, len(vertices))
	for _, v := range vertices {
		buckets[part.PartitionFor(v.ID)] = append(buckets[part.PartitionFor(v.ID)], vertexpart.Entry[VD]{ID: v.ID, Attr: v.Attr})
		seen[v.ID] = struct{}{}
	}
	for _, e := range edges {
		for _, id := range [2]core.VertexID{e.Src, e.Dst} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			buckets[part.PartitionFor(id)] = append(buckets[part.PartitionFor(id)], vertexpart.Entry[VD]{ID: id, Attr: defaultAttr})
		}
	}
	raw := pcoll.FromSlices(exec, "vertices:input", buckets)
	coll := pcoll.MapPartitionsWithIndex(raw, "vertices", func(_ context.Context, _ int, rows []vertexpart.Entry[VD]) ([]*vertexpart.Partition[VD], error) {
		return []*vertexpart.Partition[VD]{vertexpart.Build(rows, func(_, b VD) VD { return b })}, nil
	})
	return &VertexCollection[VD]{coll: coll, part: part}
}

func newDerivedGraph[VD, ED any](exec *pcoll.Executor, logger *Logger, metrics MetricsCollector, n int, vertices *VertexCollection[VD], view *replicatedView[VD, ED], rt routingFn) *Graph[VD, ED] {
	return &Graph[VD, ED]{
		exec:          exec,
		logger:        logger,
		metrics:       metrics,
		numPartitions: n,
		vertices:      vertices,
		view:          view,
		routing:       rt,
	}
}

// currentView snapshots the replicated view.
func (g *Graph[VD, ED]) currentView() *replicatedView[VD, ED] {
	g.viewMu.Lock()
	defer g.viewMu.Unlock()
	return g.view.clone()
}

// upgradedView raises the shared view to at least need and snapshots it.
// The upgrade is retained on the graph, so later operations needing the
// same roles ship nothing.
func (g *Graph[VD, ED]) upgradedView(need core.Fidelity, name string) *replicatedView[VD, ED] {
	g.viewMu.Lock()
	defer g.viewMu.Unlock()
	g.logger.LogUpgrade(context.Background(), need.HasSrc(), need.HasDst())
	g.view.upgrade(g.vertices, g.routing, need, g.metrics, name)
	return g.view.clone()
}

// NumPartitions returns the number of edge partitions.
func (g *Graph[VD, ED]) NumPartitions() int { return g.numPartitions }

// Vertices returns the vertex collection.
func (g *Graph[VD, ED]) Vertices() *VertexCollection[VD] { return g.vertices }

// Edges materializes all edges.
func (g *Graph[VD, ED]) Edges(ctx context.Context) ([]Edge[ED], error) {
	parts, err := g.currentView().edges.CollectPartitions(ctx)
	if err != nil {
		return nil, err
	}
	var out []Edge[ED]
	for _, rows := range parts {
		for _, p := range rows {
			p.ForEach(func(src, dst core.VertexID, attr ED) {
				out = append(out, Edge[ED]{Src: src, Dst: dst, Attr: attr})
			})
		}
	}
	return out, nil
}

// Triplets materializes all edges with both endpoint attributes attached,
// upgrading the replicated view to full fidelity first.
func (g *Graph[VD, ED]) Triplets(ctx context.Context) ([]EdgeTriplet[VD, ED], error) {
	v := g.upgradedView(core.FidelityBoth, "triplets")
	parts, err := v.edges.CollectPartitions(ctx)
	if err != nil {
		return nil, err
	}
	var out []EdgeTriplet[VD, ED]
	for _, rows := range parts {
		for _, p := range rows {
			p.ForEachTriplet(func(src, dst core.VertexID, srcAttr, dstAttr VD, attr ED) {
				out = append(out, EdgeTriplet[VD, ED]{
					SrcID:   src,
					DstID:   dst,
					SrcAttr: srcAttr,
					DstAttr: dstAttr,
					Attr:    attr,
				})
			})
		}
	}
	return out, nil
}

// PartitionBy redistributes the edges with a new strategy and partition
// count. The vertex collection is untouched; the replicated view starts
// empty and refills on the next operation that needs endpoint attributes.
func (g *Graph[VD, ED]) PartitionBy(strat partition.Strategy, numPartitions int) (*Graph[VD, ED], error) {
	if strat == nil {
		return nil, ErrNoStrategy
	}
	if numPartitions <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNumPartitions, numPartitions)
	}
	src := g.currentView().edges
	edgeSrc := func(ctx context.Context) ([]Edge[ED], error) {
		parts, err := src.CollectPartitions(ctx)
		if err != nil {
			return nil, err
		}
		var all []Edge[ED]
		for _, rows := range parts {
			for _, p := range rows {
				p.ForEach(func(s, d core.VertexID, attr ED) {
					all = append(all, Edge[ED]{Src: s, Dst: d, Attr: attr})
				})
			}
		}
		return all, nil
	}
	ecoll := buildEdgePartitions[VD](g.exec, "edges:repartition", numPartitions, strat, g.metrics, g.logger, edgeSrc)
	return newDerivedGraph(g.exec, g.logger, g.metrics, numPartitions, g.vertices, &replicatedView[VD, ED]{edges: ecoll}, routingFor(ecoll)), nil
}

// Cache keeps materialized vertex and edge partitions in memory across
// uses.
func (g *Graph[VD, ED]) Cache() *Graph[VD, ED] {
	return g.Persist(pcoll.StorageMemory)
}

// Persist pins materialized vertex and edge partitions at the given
// storage level. Disk levels spill through the collection's blob store.
func (g *Graph[VD, ED]) Persist(level pcoll.StorageLevel, opts ...pcoll.PersistOption) *Graph[VD, ED] {
	g.vertices.coll.Persist(level, opts...)
	g.viewMu.Lock()
	g.view.edges.Persist(level, opts...)
	g.viewMu.Unlock()
	return g
}

// Unpersist releases cached partitions. With blocking false, blob cleanup
// runs in the background.
func (g *Graph[VD, ED]) Unpersist(blocking bool) {
	g.vertices.coll.Unpersist(blocking)
	g.viewMu.Lock()
	g.view.edges.Unpersist(blocking)
	g.viewMu.Unlock()
}
