package graphgo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPregelConnectedComponents(t *testing.T) {
	g, err := FromEdges[VertexID]([]Edge[struct{}]{
		{Src: 1, Dst: 2},
		{Src: 2, Dst: 3},
		{Src: 10, Dst: 11},
	}, 0, WithNumPartitions(2))
	require.NoError(t, err)

	// Label every vertex with its own id, then propagate the minimum
	// label across edges in both directions.
	labeled := g.MapVertices(func(id VertexID, _ VertexID) VertexID { return id }, nil)

	const noMsg = VertexID(1<<63 - 1)
	min := func(a, b VertexID) VertexID {
		if a < b {
			return a
		}
		return b
	}

	cc, err := Pregel(context.Background(), labeled, noMsg, 0, DirEither,
		func(_ VertexID, attr VertexID, msg VertexID) VertexID { return min(attr, msg) },
		func(tr EdgeTriplet[VertexID, struct{}], send func(VertexID, VertexID)) {
			if tr.SrcAttr < tr.DstAttr {
				send(tr.DstID, tr.SrcAttr)
			} else if tr.DstAttr < tr.SrcAttr {
				send(tr.SrcID, tr.DstAttr)
			}
		},
		min,
	)
	require.NoError(t, err)

	got, err := cc.Vertices().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]VertexID{1: 1, 2: 1, 3: 1, 10: 10, 11: 10}, got)
}

func TestPregelShortestPaths(t *testing.T) {
	const inf = 1 << 30

	build := func(t *testing.T) *Graph[int, int] {
		t.Helper()
		g, err := New(
			[]Vertex[int]{{ID: 1, Attr: 0}},
			[]Edge[int]{
				{Src: 1, Dst: 2, Attr: 1},
				{Src: 2, Dst: 3, Attr: 1},
				{Src: 3, Dst: 4, Attr: 1},
			},
			inf,
			WithNumPartitions(2),
		)
		require.NoError(t, err)
		return g
	}

	min := func(a, b int) int {
		if a < b {
			return a
		}
		return b
	}
	vprog := func(_ VertexID, attr, msg int) int { return min(attr, msg) }
	sendMsg := func(tr EdgeTriplet[int, int], send func(VertexID, int)) {
		if tr.SrcAttr+tr.Attr < tr.DstAttr {
			send(tr.DstID, tr.SrcAttr+tr.Attr)
		}
	}

	t.Run("RunsToFixpoint", func(t *testing.T) {
		res, err := Pregel(context.Background(), build(t), inf, 0, DirOut, vprog, sendMsg, min)
		require.NoError(t, err)

		got, err := res.Vertices().Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[VertexID]int{1: 0, 2: 1, 3: 2, 4: 3}, got)
	})

	t.Run("MaxIterationsBoundsRounds", func(t *testing.T) {
		res, err := Pregel(context.Background(), build(t), inf, 1, DirOut, vprog, sendMsg, min)
		require.NoError(t, err)

		got, err := res.Vertices().Collect(context.Background())
		require.NoError(t, err)
		// One round applies only the messages seeded by the initial pass.
		assert.Equal(t, map[VertexID]int{1: 0, 2: 1, 3: inf, 4: inf}, got)
	})
}
