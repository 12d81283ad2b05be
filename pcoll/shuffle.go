package pcoll

import (
	"context"
	"sync"
)

// Pair is a keyed row, the unit of every shuffle operation.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Partitioner decides which partition a key belongs to.
type Partitioner[K comparable] interface {
	NumPartitions() int
	// PartitionFor returns a value in [0, NumPartitions).
	PartitionFor(k K) int
}

// HashPartitioner partitions integer keys by non-negative modulus. It is
// the vertex partitioner: a vertex id owns the same partition in every
// collection built with the same N.
type HashPartitioner[K ~int | ~int32 | ~int64 | ~uint32 | ~uint64] struct {
	N int
}

// NumPartitions implements Partitioner.
func (p HashPartitioner[K]) NumPartitions() int { return p.N }

// PartitionFor implements Partitioner.
func (p HashPartitioner[K]) PartitionFor(k K) int {
	m := int(int64(k) % int64(p.N))
	if m < 0 {
		m += p.N
	}
	return m
}

// FuncPartitioner adapts an arbitrary function to a Partitioner. Used when
// rows are pre-addressed to explicit partition ids.
type FuncPartitioner[K comparable] struct {
	N  int
	Fn func(K) int
}

// NumPartitions implements Partitioner.
func (p FuncPartitioner[K]) NumPartitions() int { return p.N }

// PartitionFor implements Partitioner.
func (p FuncPartitioner[K]) PartitionFor(k K) int { return p.Fn(k) }

// PartitionBy redistributes rows so that every key lands on the partition
// the partitioner assigns. The shuffle materializes its input once (guarded
// for concurrent consumers) and buckets rows in source partition order, so
// the output is deterministic for a deterministic input.
func PartitionBy[K comparable, V any](c *Collection[Pair[K, V]], part Partitioner[K], name string) *Collection[Pair[K, V]] {
	var (
		once       sync.Once
		buckets    [][]Pair[K, V]
		shuffleErr error
	)
	return New(c.exec, name, part.NumPartitions(), func(ctx context.Context, i int) ([]Pair[K, V], error) {
		once.Do(func() {
			parts, err := c.CollectPartitions(ctx)
			if err != nil {
				shuffleErr = err
				return
			}
			buckets = make([][]Pair[K, V], part.NumPartitions())
			for _, rows := range parts {
				for _, kv := range rows {
					p := part.PartitionFor(kv.Key)
					buckets[p] = append(buckets[p], kv)
				}
			}
		})
		if shuffleErr != nil {
			return nil, shuffleErr
		}
		return buckets[i], nil
	})
}

// GroupByKey shuffles by key and groups each partition's rows, preserving
// first-seen key order and within-key row order.
func GroupByKey[K comparable, V any](c *Collection[Pair[K, V]], part Partitioner[K], name string) *Collection[Pair[K, []V]] {
	shuffled := PartitionBy(c, part, name+":shuffle")
	return MapPartitionsWithIndex(shuffled, name, func(_ context.Context, _ int, rows []Pair[K, V]) ([]Pair[K, []V], error) {
		slot := make(map[K]int, len(rows))
		var out []Pair[K, []V]
		for _, kv := range rows {
			if i, ok := slot[kv.Key]; ok {
				out[i].Value = append(out[i].Value, kv.Value)
				continue
			}
			slot[kv.Key] = len(out)
			out = append(out, Pair[K, []V]{Key: kv.Key, Value: []V{kv.Value}})
		}
		return out, nil
	})
}

// Joined is one matched pair produced by Join.
type Joined[V, W any] struct {
	Left  V
	Right W
}

// Join co-partitions both collections by key and emits every (left, right)
// combination for keys present on both sides.
func Join[K comparable, V, W any](a *Collection[Pair[K, V]], b *Collection[Pair[K, W]], part Partitioner[K], name string) *Collection[Pair[K, Joined[V, W]]] {
	pa := PartitionBy(a, part, name+":left")
	pb := PartitionBy(b, part, name+":right")
	return ZipPartitions(pa, pb, name, func(_ context.Context, _ int, as []Pair[K, V], bs []Pair[K, W]) ([]Pair[K, Joined[V, W]], error) {
		right := make(map[K][]W)
		for _, kv := range bs {
			right[kv.Key] = append(right[kv.Key], kv.Value)
		}
		var out []Pair[K, Joined[V, W]]
		for _, kv := range as {
			for _, w := range right[kv.Key] {
				out = append(out, Pair[K, Joined[V, W]]{Key: kv.Key, Value: Joined[V, W]{Left: kv.Value, Right: w}})
			}
		}
		return out, nil
	})
}
