package graphgo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegrees(t *testing.T) {
	g := scenarioGraph(t)
	ctx := context.Background()

	in, err := g.InDegrees().Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]int{2: 1, 3: 2, 4: 1}, in)

	out, err := g.OutDegrees().Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]int{1: 3, 2: 1}, out)

	deg, err := g.Degrees().Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]int{1: 3, 2: 2, 3: 2, 4: 1}, deg)
}

func TestMapReduceTriplets(t *testing.T) {
	g := scenarioGraph(t)

	// Oldest incoming source name per vertex, smallest wins.
	oldest := MapReduceTriplets(g, func(tr EdgeTriplet[string, int], send func(VertexID, string)) {
		send(tr.DstID, tr.SrcAttr)
	}, func(a, b string) string {
		if a < b {
			return a
		}
		return b
	}, WithAttrUsage(UsesSrc))

	got, err := oldest.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]string{2: "one", 3: "one", 4: "one"}, got)
}

func TestMapReduceTripletsDropsUnknownIDs(t *testing.T) {
	g := scenarioGraph(t)

	res := MapReduceTriplets(g, func(tr EdgeTriplet[string, int], send func(VertexID, int)) {
		send(tr.DstID, 1)
		send(999, 1)
	}, func(a, b int) int { return a + b }, WithAttrUsage(UsesNone))

	got, err := res.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]int{2: 1, 3: 2, 4: 1}, got)
}

func TestMapReduceTripletsActiveSet(t *testing.T) {
	g := scenarioGraph(t)

	countIn := func(tr EdgeTriplet[string, int], send func(VertexID, int)) {
		send(tr.DstID, 1)
	}
	sum := func(a, b int) int { return a + b }

	t.Run("OutEdgesOfActiveVertex", func(t *testing.T) {
		res := MapReduceTriplets(g, countIn, sum,
			WithAttrUsage(UsesNone), WithActiveSet([]VertexID{2}, DirOut))
		got, err := res.Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[VertexID]int{3: 1}, got)
	})

	t.Run("InEdgesOfActiveVertex", func(t *testing.T) {
		res := MapReduceTriplets(g, countIn, sum,
			WithAttrUsage(UsesNone), WithActiveSet([]VertexID{3}, DirIn))
		got, err := res.Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[VertexID]int{3: 2}, got)
	})

	t.Run("BothEndpointsMustBeActive", func(t *testing.T) {
		res := MapReduceTriplets(g, countIn, sum,
			WithAttrUsage(UsesNone), WithActiveSet([]VertexID{1, 4}, DirBoth))
		got, err := res.Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[VertexID]int{4: 1}, got)
	})

	t.Run("EitherEndpointActive", func(t *testing.T) {
		res := MapReduceTriplets(g, countIn, sum,
			WithAttrUsage(UsesNone), WithActiveSet([]VertexID{4}, DirEither))
		got, err := res.Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[VertexID]int{4: 1}, got)
	})
}

func TestMapReduceTripletsEmptyResult(t *testing.T) {
	g := scenarioGraph(t)

	res := MapReduceTriplets(g, func(EdgeTriplet[string, int], func(VertexID, int)) {
		// Send nothing.
	}, func(a, b int) int { return a + b }, WithAttrUsage(UsesNone))

	got, err := res.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := res.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMapReduceTripletsSkipsUpgradeWhenUnused(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	g := scenarioGraph(t, WithMetricsCollector(metrics))

	_, err := g.InDegrees().Collect(context.Background())
	require.NoError(t, err)
	assert.Zero(t, metrics.ShippedVertices.Load(), "degree counting must not ship attributes")

	_, err = MapReduceTriplets(g, func(tr EdgeTriplet[string, int], send func(VertexID, int)) {
		send(tr.DstID, len(tr.SrcAttr))
	}, func(a, b int) int { return a + b }, WithAttrUsage(UsesSrc)).Collect(context.Background())
	require.NoError(t, err)
	// Source attributes only: {1} on one partition, {1,2} on the other.
	assert.Equal(t, int64(3), metrics.ShippedVertices.Load())
}
