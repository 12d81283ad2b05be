package graphgo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapVerticesWithoutEq(t *testing.T) {
	g := scenarioGraph(t)
	upper := g.MapVertices(func(_ VertexID, attr string) string {
		return strings.ToUpper(attr)
	}, nil)

	got, err := upper.Vertices().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]string{1: "ONE", 2: "TWO", 3: "THREE", 4: "FOUR"}, got)

	triplets, err := upper.Triplets(context.Background())
	require.NoError(t, err)
	for _, tr := range triplets {
		assert.Equal(t, strings.ToUpper(tr.SrcAttr), tr.SrcAttr)
	}
}

func TestMapVerticesTo(t *testing.T) {
	g := scenarioGraph(t)
	lens := MapVerticesTo(g, func(_ VertexID, attr string) int { return len(attr) })

	got, err := lens.Vertices().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]int{1: 3, 2: 3, 3: 5, 4: 4}, got)
}

func TestJoinVertices(t *testing.T) {
	g := scenarioGraph(t)
	joined := JoinVertices(g, g.InDegrees(), func(_ VertexID, attr string, deg int) string {
		return attr + strings.Repeat("*", deg)
	})

	got, err := joined.Vertices().Collect(context.Background())
	require.NoError(t, err)
	// Vertex 1 has no incoming edge and keeps its attribute untouched.
	assert.Equal(t, map[VertexID]string{1: "one", 2: "two*", 3: "three**", 4: "four*"}, got)
}

func TestOuterJoinVertices(t *testing.T) {
	g := scenarioGraph(t)
	joined := OuterJoinVertices(g, g.InDegrees(), func(_ VertexID, _ string, deg *int) int {
		if deg == nil {
			return -1
		}
		return *deg
	})

	got, err := joined.Vertices().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]int{1: -1, 2: 1, 3: 2, 4: 1}, got)

	// The edge side is untouched by a vertex-only rebind.
	edges, err := joined.Edges(context.Background())
	require.NoError(t, err)
	assert.Len(t, edges, 4)
}

func TestMapEdges(t *testing.T) {
	g := scenarioGraph(t)
	scaled := g.MapEdges(func(_, _ VertexID, attr int) int { return attr * 10 })

	edges, err := scaled.Edges(context.Background())
	require.NoError(t, err)
	attrs := make([]int, 0, len(edges))
	for _, e := range edges {
		attrs = append(attrs, e.Attr)
	}
	assert.ElementsMatch(t, []int{120, 130, 140, 230}, attrs)
}

func TestMapEdgesTo(t *testing.T) {
	g := scenarioGraph(t)
	labeled := MapEdgesTo(g, func(src, dst VertexID, _ int) string {
		return string(rune('0'+src)) + "->" + string(rune('0'+dst))
	})

	edges, err := labeled.Edges(context.Background())
	require.NoError(t, err)
	attrs := make([]string, 0, len(edges))
	for _, e := range edges {
		attrs = append(attrs, e.Attr)
	}
	assert.ElementsMatch(t, []string{"1->2", "1->3", "1->4", "2->3"}, attrs)
}

func TestMapTriplets(t *testing.T) {
	g := scenarioGraph(t)
	renamed := MapTripletsTo(g, func(tr EdgeTriplet[string, int]) string {
		return tr.SrcAttr + "/" + tr.DstAttr
	}, UsesBoth)

	edges, err := renamed.Edges(context.Background())
	require.NoError(t, err)
	attrs := make([]string, 0, len(edges))
	for _, e := range edges {
		attrs = append(attrs, e.Attr)
	}
	assert.ElementsMatch(t, []string{"one/two", "one/three", "one/four", "two/three"}, attrs)

	t.Run("SrcOnly", func(t *testing.T) {
		doubled := g.MapTriplets(func(tr EdgeTriplet[string, int]) int {
			return tr.Attr + len(tr.SrcAttr)
		}, UsesSrc)
		edges, err := doubled.Edges(context.Background())
		require.NoError(t, err)
		got := make([]int, 0, len(edges))
		for _, e := range edges {
			got = append(got, e.Attr)
		}
		assert.ElementsMatch(t, []int{15, 16, 17, 26}, got)
	})
}

func TestSubgraph(t *testing.T) {
	g := scenarioGraph(t)
	sub := g.Subgraph(
		func(id VertexID, _ string) bool { return id <= 3 },
		func(tr EdgeTriplet[string, int]) bool { return tr.SrcID != 2 },
	)

	vs, err := sub.Vertices().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]string{1: "one", 2: "two", 3: "three"}, vs)

	edges, err := sub.Edges(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []Edge[int]{
		{Src: 1, Dst: 2, Attr: 12},
		{Src: 1, Dst: 3, Attr: 13},
	}, edges)

	t.Run("NilPredicatesKeepEverything", func(t *testing.T) {
		same := g.Subgraph(nil, nil)
		edges, err := same.Edges(context.Background())
		require.NoError(t, err)
		assert.Len(t, edges, 4)
	})
}

func TestMask(t *testing.T) {
	g := scenarioGraph(t)
	sub := g.Subgraph(func(id VertexID, _ string) bool { return id <= 3 }, nil)

	scaled := g.MapEdges(func(_, _ VertexID, attr int) int { return attr * 10 })
	masked, err := Mask(scaled, sub)
	require.NoError(t, err)

	vs, err := masked.Vertices().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]string{1: "one", 2: "two", 3: "three"}, vs)

	edges, err := masked.Edges(context.Background())
	require.NoError(t, err)
	// Structure from sub, attributes from scaled.
	assert.ElementsMatch(t, []Edge[int]{
		{Src: 1, Dst: 2, Attr: 120},
		{Src: 1, Dst: 3, Attr: 130},
		{Src: 2, Dst: 3, Attr: 230},
	}, edges)
}

func TestGroupEdges(t *testing.T) {
	g, err := FromEdges[struct{}]([]Edge[int]{
		{Src: 1, Dst: 2, Attr: 5},
		{Src: 1, Dst: 2, Attr: 7},
		{Src: 1, Dst: 3, Attr: 9},
	}, struct{}{}, WithNumPartitions(2))
	require.NoError(t, err)

	grouped := g.GroupEdges(func(a, b int) int { return a + b })

	edges, err := grouped.Edges(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []Edge[int]{
		{Src: 1, Dst: 2, Attr: 12},
		{Src: 1, Dst: 3, Attr: 9},
	}, edges)
}

func TestReverse(t *testing.T) {
	g := scenarioGraph(t)
	rev := g.Reverse()

	edges, err := rev.Edges(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []Edge[int]{
		{Src: 2, Dst: 1, Attr: 12},
		{Src: 3, Dst: 1, Attr: 13},
		{Src: 4, Dst: 1, Attr: 14},
		{Src: 3, Dst: 2, Attr: 23},
	}, edges)

	out, err := g.OutDegrees().Collect(context.Background())
	require.NoError(t, err)
	in, err := rev.InDegrees().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, out, in)

	// Attributes follow the swapped endpoints.
	triplets, err := rev.Triplets(context.Background())
	require.NoError(t, err)
	for _, tr := range triplets {
		if tr.Attr == 23 {
			assert.Equal(t, "three", tr.SrcAttr)
			assert.Equal(t, "two", tr.DstAttr)
		}
	}
}
