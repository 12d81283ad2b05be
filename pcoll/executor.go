// Package pcoll implements the in-process substrate the graph engine runs
// on: lazy, lineage-carrying partitioned collections with
// MapPartitionsWithIndex, ZipPartitions, PartitionBy, GroupByKey, Join and
// storage-level caching.
//
// A collection is a partition count plus a compute function (its lineage).
// Transformations only wrap the compute function; nothing runs until a
// materializing call (Collect, Count) walks the chain. Partitions evaluate
// concurrently, bounded by the resource controller. An uncached
// intermediate collection is recomputed from its lineage on every use,
// which is a documented performance hazard, not a correctness one.
//
// Every transform here preserves partition-index stability: partition i of
// the output is derived from partition i of the input (or, for shuffles,
// from the partitioner). Downstream clustered-index assumptions rely on
// this.
package pcoll

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/graphgo/resource"
)

// Executor evaluates partitions concurrently under a resource controller.
type Executor struct {
	ctrl *resource.Controller
}

// NewExecutor creates an executor. A nil controller gets a default bounded
// to the number of CPUs.
func NewExecutor(ctrl *resource.Controller) *Executor {
	if ctrl == nil {
		ctrl = resource.NewController(resource.Config{
			MaxParallelTasks: int64(runtime.NumCPU()),
		})
	}
	return &Executor{ctrl: ctrl}
}

var defaultExecutor = sync.OnceValue(func() *Executor { return NewExecutor(nil) })

// DefaultExecutor returns the process-wide executor.
func DefaultExecutor() *Executor { return defaultExecutor() }

// Controller returns the executor's resource controller.
func (e *Executor) Controller() *resource.Controller { return e.ctrl }

// ForEachPartition runs f once per partition index, concurrently, bounded
// by the controller's task parallelism. The bound is per call: a partition
// that materializes its own lineage starts a fresh loop with fresh slots.
// The first error cancels the remaining work.
func (e *Executor) ForEachPartition(ctx context.Context, n int, f func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.ctrl.MaxParallelTasks())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return f(ctx, i)
		})
	}
	return g.Wait()
}
