package pcoll

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphgo/blobstore"
)

func TestCollectionLazy(t *testing.T) {
	var computes atomic.Int32
	c := New(DefaultExecutor(), "lazy", 3, func(_ context.Context, i int) ([]int, error) {
		computes.Add(1)
		return []int{i * 10}, nil
	})

	assert.Equal(t, int32(0), computes.Load(), "nothing may run before a materializing call")

	rows, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 10, 20}, rows)
	assert.Equal(t, int32(3), computes.Load())

	// Uncached: a second collect recomputes from lineage.
	_, err = c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(6), computes.Load())
}

func TestCollectionCache(t *testing.T) {
	var computes atomic.Int32
	c := New(DefaultExecutor(), "cached", 4, func(_ context.Context, i int) ([]int, error) {
		computes.Add(1)
		return []int{i}, nil
	}).Cache()

	for range 3 {
		rows, err := c.Collect(context.Background())
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	}
	assert.Equal(t, int32(4), computes.Load(), "cached partitions compute once")

	c.Unpersist(true)
	_, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(8), computes.Load(), "unpersist drops the cache")
}

func TestCollectionPersistLevels(t *testing.T) {
	levels := []struct {
		name  string
		level StorageLevel
	}{
		{"MemoryZSTD", StorageMemoryZSTD},
		{"DiskLZ4", StorageDiskLZ4},
		{"DiskZSTD", StorageDiskZSTD},
	}
	for _, tt := range levels {
		t.Run(tt.name, func(t *testing.T) {
			var computes atomic.Int32
			c := New(DefaultExecutor(), "persist:"+tt.name, 2, func(_ context.Context, i int) ([]int, error) {
				computes.Add(1)
				return []int{i, i + 100}, nil
			}).Persist(tt.level, WithStore(blobstore.NewMemoryStore()))

			rows, err := c.Collect(context.Background())
			require.NoError(t, err)
			assert.ElementsMatch(t, []int{0, 100, 1, 101}, rows)

			rows, err = c.Collect(context.Background())
			require.NoError(t, err)
			assert.ElementsMatch(t, []int{0, 100, 1, 101}, rows)
			assert.Equal(t, int32(2), computes.Load(), "persisted partitions compute once")

			c.Unpersist(true)
		})
	}
}

func TestFromSlices(t *testing.T) {
	c := FromSlices(DefaultExecutor(), "slices", [][]string{{"a"}, {"b", "c"}})
	assert.Equal(t, 2, c.NumPartitions())

	parts, err := c.CollectPartitions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}}, parts)

	n, err := c.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMapPartitionsWithIndex(t *testing.T) {
	c := FromSlices(DefaultExecutor(), "in", [][]int{{1, 2}, {3}})
	m := MapPartitionsWithIndex(c, "indexed", func(_ context.Context, part int, rows []int) ([]int, error) {
		out := make([]int, len(rows))
		for i, r := range rows {
			out[i] = r * 10 * (part + 1)
		}
		return out, nil
	})

	parts, err := m.CollectPartitions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{10, 20}, {60}}, parts)
}

func TestZipPartitionsMismatch(t *testing.T) {
	a := FromSlices(DefaultExecutor(), "a", [][]int{{1}, {2}})
	b := FromSlices(DefaultExecutor(), "b", [][]int{{1}})
	z := ZipPartitions(a, b, "zip", func(_ context.Context, _ int, as, bs []int) ([]int, error) {
		return as, nil
	})

	_, err := z.Collect(context.Background())
	assert.Error(t, err)
}
