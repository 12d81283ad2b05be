package pcoll

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"sync"

	"github.com/hupe1980/graphgo/blobstore"
	"github.com/hupe1980/graphgo/spill"
)

// StorageLevel controls how a persisted collection keeps its materialized
// partitions.
type StorageLevel uint8

const (
	// StorageNone recomputes partitions from lineage on every use.
	StorageNone StorageLevel = iota
	// StorageMemory pins the materialized rows in memory.
	StorageMemory
	// StorageMemoryZSTD keeps ZSTD-compressed encoded rows in memory,
	// accounted against the controller's pinned-memory limit.
	StorageMemoryZSTD
	// StorageDiskLZ4 spills LZ4-compressed encoded rows to the blob store.
	StorageDiskLZ4
	// StorageDiskZSTD spills ZSTD-compressed encoded rows to the blob store.
	StorageDiskZSTD
)

func (l StorageLevel) onDisk() bool {
	return l == StorageDiskLZ4 || l == StorageDiskZSTD
}

func (l StorageLevel) compression() spill.Compression {
	switch l {
	case StorageMemoryZSTD, StorageDiskZSTD:
		return spill.ZSTD
	case StorageDiskLZ4:
		return spill.LZ4
	default:
		return spill.None
	}
}

// Collection is a lazy, partitioned collection of T.
type Collection[T any] struct {
	exec    *Executor
	name    string
	n       int
	compute func(ctx context.Context, part int) ([]T, error)

	mu    sync.Mutex
	level StorageLevel
	store blobstore.Store
	slots []*slot[T]
}

// slot holds one persisted partition. Filled at most once.
type slot[T any] struct {
	once   sync.Once
	err    error
	rows   []T    // StorageMemory
	block  []byte // StorageMemoryZSTD
	onDisk bool
	pinned int64
}

// New creates a collection of n partitions whose content is defined by
// compute. compute must be a pure function of the partition index (plus its
// captured lineage); it may run more than once and concurrently for
// different indices.
func New[T any](exec *Executor, name string, n int, compute func(ctx context.Context, part int) ([]T, error)) *Collection[T] {
	if exec == nil {
		exec = DefaultExecutor()
	}
	return &Collection[T]{exec: exec, name: name, n: n, compute: compute}
}

// FromSlices creates a collection holding the given partitions.
func FromSlices[T any](exec *Executor, name string, parts [][]T) *Collection[T] {
	return New(exec, name, len(parts), func(_ context.Context, i int) ([]T, error) {
		return parts[i], nil
	})
}

// Name returns the collection's debug name.
func (c *Collection[T]) Name() string { return c.name }

// NumPartitions returns the partition count.
func (c *Collection[T]) NumPartitions() int { return c.n }

// Cache persists the collection in memory. Equivalent to
// Persist(StorageMemory).
func (c *Collection[T]) Cache() *Collection[T] { return c.Persist(StorageMemory) }

// Persist pins materialized partitions at the given storage level. For disk
// levels the rows must be gob-encodable; the blob store defaults to a
// temporary local directory unless WithStore was supplied. Calling Persist
// on an already persisted collection is a no-op.
func (c *Collection[T]) Persist(level StorageLevel, opts ...PersistOption) *Collection[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.level != StorageNone || level == StorageNone {
		return c
	}
	c.level = level
	for _, opt := range opts {
		opt(&persistOptions{store: &c.store})
	}
	c.slots = make([]*slot[T], c.n)
	for i := range c.slots {
		c.slots[i] = &slot[T]{}
	}
	return c
}

type persistOptions struct {
	store *blobstore.Store
}

// PersistOption configures Persist.
type PersistOption func(*persistOptions)

// WithStore sets the blob store that disk storage levels spill to.
func WithStore(store blobstore.Store) PersistOption {
	return func(o *persistOptions) { *o.store = store }
}

// Unpersist drops pinned partitions and deletes spilled blobs. If blocking
// is false, blob deletion happens in the background. The collection remains
// usable; partitions recompute from lineage.
func (c *Collection[T]) Unpersist(blocking bool) {
	c.mu.Lock()
	slots := c.slots
	store := c.store
	c.slots = nil
	c.level = StorageNone
	c.store = nil
	c.mu.Unlock()

	if slots == nil {
		return
	}
	cleanup := func() {
		for i, s := range slots {
			if s.pinned > 0 {
				c.exec.ctrl.ReleasePinned(s.pinned)
			}
			if s.onDisk && store != nil {
				_ = store.Delete(context.Background(), c.blobName(i))
			}
		}
	}
	if blocking {
		cleanup()
	} else {
		go cleanup()
	}
}

func (c *Collection[T]) blobName(i int) string {
	return fmt.Sprintf("%s/part-%05d", c.name, i)
}

// materialize returns partition i, computing or loading it as the storage
// level dictates.
func (c *Collection[T]) materialize(ctx context.Context, i int) ([]T, error) {
	c.mu.Lock()
	level := c.level
	slots := c.slots
	c.mu.Unlock()

	if level == StorageNone || slots == nil {
		return c.compute(ctx, i)
	}

	s := slots[i]
	s.once.Do(func() { s.err = c.fill(ctx, i, s, level) })
	if s.err != nil {
		return nil, s.err
	}

	switch {
	case level == StorageMemory:
		return s.rows, nil
	case level == StorageMemoryZSTD:
		data, err := spill.Decode(s.block)
		if err != nil {
			return nil, err
		}
		return decodeRows[T](data)
	default:
		store := c.spillStore()
		blob, err := store.Open(ctx, c.blobName(i))
		if err != nil {
			return nil, err
		}
		defer blob.Close()
		block, err := blobstore.ReadAll(blob)
		if err != nil {
			return nil, err
		}
		data, err := spill.Decode(block)
		if err != nil {
			return nil, err
		}
		return decodeRows[T](data)
	}
}

// fill computes partition i once and stores it per the storage level.
func (c *Collection[T]) fill(ctx context.Context, i int, s *slot[T], level StorageLevel) error {
	rows, err := c.compute(ctx, i)
	if err != nil {
		return err
	}

	switch level {
	case StorageMemory:
		s.rows = rows
		return nil

	case StorageMemoryZSTD:
		data, err := encodeRows(rows)
		if err != nil {
			return err
		}
		block, err := spill.Encode(data, spill.ZSTD)
		if err != nil {
			return err
		}
		if err := c.exec.ctrl.AcquirePinned(ctx, int64(len(block))); err != nil {
			return err
		}
		s.pinned = int64(len(block))
		s.block = block
		return nil

	default: // disk
		data, err := encodeRows(rows)
		if err != nil {
			return err
		}
		block, err := spill.Encode(data, level.compression())
		if err != nil {
			return err
		}
		if err := c.exec.ctrl.AcquireSpillIO(ctx, len(block)); err != nil {
			return err
		}
		if err := c.spillStore().Put(ctx, c.blobName(i), block); err != nil {
			return err
		}
		s.onDisk = true
		return nil
	}
}

// spillStore returns the configured blob store, creating a temporary local
// store on first use.
func (c *Collection[T]) spillStore() blobstore.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		dir, err := os.MkdirTemp("", "graphgo-spill-*")
		if err != nil {
			// Fall back to memory; the spill still works, just unspilled.
			c.store = blobstore.NewMemoryStore()
		} else {
			c.store = blobstore.NewLocalStore(dir)
		}
	}
	return c.store
}

// CollectPartitions materializes every partition concurrently and returns
// them indexed by partition id.
func (c *Collection[T]) CollectPartitions(ctx context.Context) ([][]T, error) {
	out := make([][]T, c.n)
	err := c.exec.ForEachPartition(ctx, c.n, func(ctx context.Context, i int) error {
		rows, err := c.materialize(ctx, i)
		if err != nil {
			return err
		}
		out[i] = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Collect materializes the collection and concatenates partitions in index
// order.
func (c *Collection[T]) Collect(ctx context.Context) ([]T, error) {
	parts, err := c.CollectPartitions(ctx)
	if err != nil {
		return nil, err
	}
	var total int
	for _, p := range parts {
		total += len(p)
	}
	out := make([]T, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// Count materializes the collection and returns the total number of rows.
func (c *Collection[T]) Count(ctx context.Context) (int64, error) {
	parts, err := c.CollectPartitions(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, p := range parts {
		total += int64(len(p))
	}
	return total, nil
}

func encodeRows[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rows); err != nil {
		return nil, fmt.Errorf("pcoll: encode partition: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeRows[T any](data []byte) ([]T, error) {
	var rows []T
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rows); err != nil {
		return nil, fmt.Errorf("pcoll: decode partition: %w", err)
	}
	return rows, nil
}
