package graphgo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphgo/blobstore"
	"github.com/hupe1980/graphgo/core"
	"github.com/hupe1980/graphgo/partition"
	"github.com/hupe1980/graphgo/pcoll"
)

// sumHash keys edges on src+dst, which makes partition placement easy to
// reason about in tests.
func sumHash() partition.Strategy {
	return partition.HashWith(func(src, dst core.VertexID) uint64 {
		return uint64(src + dst)
	})
}

func scenarioGraph(t *testing.T, opts ...Option) *Graph[string, int] {
	t.Helper()
	vertices := []Vertex[string]{
		{ID: 1, Attr: "one"},
		{ID: 2, Attr: "two"},
		{ID: 3, Attr: "three"},
		{ID: 4, Attr: "four"},
	}
	edges := []Edge[int]{
		{Src: 1, Dst: 2, Attr: 12},
		{Src: 1, Dst: 3, Attr: 13},
		{Src: 1, Dst: 4, Attr: 14},
		{Src: 2, Dst: 3, Attr: 23},
	}
	opts = append([]Option{WithNumPartitions(2), WithPartitionStrategy(sumHash())}, opts...)
	g, err := New(vertices, edges, "", opts...)
	require.NoError(t, err)
	return g
}

func TestNewRejectsInvalidPartitionCount(t *testing.T) {
	_, err := FromEdges[int]([]Edge[int]{{Src: 1, Dst: 2}}, 0, WithNumPartitions(0))
	assert.ErrorIs(t, err, ErrInvalidNumPartitions)

	_, err = FromEdges[int]([]Edge[int]{{Src: 1, Dst: 2}}, 0, WithNumPartitions(-3))
	assert.ErrorIs(t, err, ErrInvalidNumPartitions)
}

func TestGraphEdges(t *testing.T) {
	g := scenarioGraph(t)
	edges, err := g.Edges(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []Edge[int]{
		{Src: 1, Dst: 2, Attr: 12},
		{Src: 1, Dst: 3, Attr: 13},
		{Src: 1, Dst: 4, Attr: 14},
		{Src: 2, Dst: 3, Attr: 23},
	}, edges)
}

func TestEdgeConservation(t *testing.T) {
	// Parallel edges, self loops and negative ids must all survive every
	// strategy unchanged as a multiset.
	edges := []Edge[string]{
		{Src: 1, Dst: 2, Attr: "a"},
		{Src: 1, Dst: 2, Attr: "b"},
		{Src: -5, Dst: 3, Attr: "c"},
		{Src: 7, Dst: -7, Attr: "d"},
		{Src: -2, Dst: -9, Attr: "e"},
		{Src: 4, Dst: 4, Attr: "f"},
		{Src: 1, Dst: 3, Attr: "g"},
		{Src: 2, Dst: 3, Attr: "h"},
	}

	strategies := []struct {
		name string
		make func() partition.Strategy
	}{
		{"Hash", func() partition.Strategy { return partition.Hash() }},
		{"BiDstCut", func() partition.Strategy { return partition.BiDstCut() }},
		{"BiSrcCut", func() partition.Strategy { return partition.BiSrcCut() }},
		{"HybridCut", func() partition.Strategy { return partition.NewHybridCut(2) }},
		{"HybridCutPlus", func() partition.Strategy { return partition.NewHybridCutPlus(2) }},
	}
	for _, s := range strategies {
		t.Run(s.name, func(t *testing.T) {
			g, err := FromEdges[struct{}](edges, struct{}{},
				WithNumPartitions(3), WithPartitionStrategy(s.make()))
			require.NoError(t, err)

			got, err := g.Edges(context.Background())
			require.NoError(t, err)
			assert.ElementsMatch(t, edges, got)
		})
	}
}

func TestInDegreesIndependentOfPartitioning(t *testing.T) {
	// Aggregation with a commutative reduce must not depend on how the
	// edges are cut: every partition count and strategy sees the same
	// per-vertex message multiset.
	var edges []Edge[int]
	for i := VertexID(1); i <= 20; i++ {
		edges = append(edges, Edge[int]{Src: i, Dst: 100})
		edges = append(edges, Edge[int]{Src: i, Dst: i % 4})
	}
	want := map[VertexID]int{}
	for _, e := range edges {
		want[e.Dst]++
	}

	strategies := []struct {
		name string
		make func() partition.Strategy
	}{
		{"Hash", func() partition.Strategy { return partition.Hash() }},
		{"BiSrcCut", func() partition.Strategy { return partition.BiSrcCut() }},
		{"HybridCut", func() partition.Strategy { return partition.NewHybridCut(3) }},
	}
	for _, n := range []int{1, 2, 3, 5} {
		for _, s := range strategies {
			g, err := FromEdges[struct{}](edges, struct{}{},
				WithNumPartitions(n), WithPartitionStrategy(s.make()))
			require.NoError(t, err)

			got, err := g.InDegrees().Collect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, want, got, "strategy %s with %d partitions", s.name, n)
		}
	}
}

func TestGraphVertices(t *testing.T) {
	g := scenarioGraph(t)
	got, err := g.Vertices().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]string{1: "one", 2: "two", 3: "three", 4: "four"}, got)

	n, err := g.Vertices().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestDefaultAttrForEndpointOnlyVertices(t *testing.T) {
	g, err := New(
		[]Vertex[string]{{ID: 1, Attr: "explicit"}},
		[]Edge[int]{{Src: 1, Dst: 2}},
		"default",
		WithNumPartitions(2),
	)
	require.NoError(t, err)

	got, err := g.Vertices().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]string{1: "explicit", 2: "default"}, got)
}

func TestTriplets(t *testing.T) {
	g := scenarioGraph(t)
	triplets, err := g.Triplets(context.Background())
	require.NoError(t, err)
	require.Len(t, triplets, 4)

	byAttr := map[int]EdgeTriplet[string, int]{}
	for _, tr := range triplets {
		byAttr[tr.Attr] = tr
	}
	assert.Equal(t, "one", byAttr[12].SrcAttr)
	assert.Equal(t, "two", byAttr[12].DstAttr)
	assert.Equal(t, "two", byAttr[23].SrcAttr)
	assert.Equal(t, "three", byAttr[23].DstAttr)
}

func TestUpgradeIsIdempotent(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	g := scenarioGraph(t, WithMetricsCollector(metrics))

	_, err := g.Triplets(context.Background())
	require.NoError(t, err)
	shipped := metrics.ShippedVertices.Load()
	// Partition of (1,3) references {1,3}; the other references {1,2,3,4}.
	assert.Equal(t, int64(6), shipped)

	_, err = g.Triplets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shipped, metrics.ShippedVertices.Load(), "second upgrade must ship nothing")
}

func TestMapVerticesDiffShipsOnlyChanges(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	g := scenarioGraph(t, WithMetricsCollector(metrics))

	_, err := g.Triplets(context.Background())
	require.NoError(t, err)
	base := metrics.ShippedVertices.Load()

	derived := g.MapVertices(func(id VertexID, attr string) string {
		if id == 2 {
			return "TWO"
		}
		return attr
	}, func(a, b string) bool { return a == b })

	triplets, err := derived.Triplets(context.Background())
	require.NoError(t, err)

	byAttr := map[int]EdgeTriplet[string, int]{}
	for _, tr := range triplets {
		byAttr[tr.Attr] = tr
	}
	assert.Equal(t, "TWO", byAttr[12].DstAttr)
	assert.Equal(t, "TWO", byAttr[23].SrcAttr)
	assert.Equal(t, "one", byAttr[13].SrcAttr)

	// Vertex 2 is referenced by one edge partition only.
	assert.Equal(t, base+1, metrics.ShippedVertices.Load())
}

// scanRecorder captures per-partition scan sizes.
type scanRecorder struct {
	mu    sync.Mutex
	edges map[PartitionID]int
}

func newScanRecorder() *scanRecorder {
	return &scanRecorder{edges: map[PartitionID]int{}}
}

func (r *scanRecorder) RecordShipBlock(PartitionID, int) {}

func (r *scanRecorder) RecordAggregateScan(p PartitionID, edgesScanned, _ int, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges[p] += edgesScanned
}

func (r *scanRecorder) RecordRepartition(string, int, int, time.Duration) {}

func TestEdgePlacement(t *testing.T) {
	rec := newScanRecorder()
	g := scenarioGraph(t, WithMetricsCollector(rec))

	_, err := g.InDegrees().Collect(context.Background())
	require.NoError(t, err)

	// src+dst mod 2 sends (1,3) to partition 0 and the rest to partition 1.
	assert.Equal(t, map[PartitionID]int{0: 1, 1: 3}, rec.edges)
}

func TestPartitionBy(t *testing.T) {
	g := scenarioGraph(t)

	re, err := g.PartitionBy(partition.BiDstCut(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, re.NumPartitions())

	edges, err := re.Edges(context.Background())
	require.NoError(t, err)
	assert.Len(t, edges, 4, "repartitioning must conserve edges")

	// Triplets still line up after the view refills from scratch.
	triplets, err := re.Triplets(context.Background())
	require.NoError(t, err)
	byAttr := map[int]EdgeTriplet[string, int]{}
	for _, tr := range triplets {
		byAttr[tr.Attr] = tr
	}
	assert.Equal(t, "one", byAttr[14].SrcAttr)
	assert.Equal(t, "four", byAttr[14].DstAttr)

	t.Run("NilStrategy", func(t *testing.T) {
		_, err := g.PartitionBy(nil, 2)
		assert.ErrorIs(t, err, ErrNoStrategy)
	})

	t.Run("InvalidCount", func(t *testing.T) {
		_, err := g.PartitionBy(partition.Hash(), 0)
		assert.ErrorIs(t, err, ErrInvalidNumPartitions)
	})
}

func TestGraphPersist(t *testing.T) {
	g := scenarioGraph(t).Persist(pcoll.StorageDiskZSTD, pcoll.WithStore(blobstore.NewMemoryStore()))
	defer g.Unpersist(true)

	for range 2 {
		triplets, err := g.Triplets(context.Background())
		require.NoError(t, err)
		assert.Len(t, triplets, 4)
	}
}

func TestGraphCache(t *testing.T) {
	g := scenarioGraph(t).Cache()
	defer g.Unpersist(true)

	deg1, err := g.InDegrees().Collect(context.Background())
	require.NoError(t, err)
	deg2, err := g.InDegrees().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, deg1, deg2)
}
