// Package resource bounds what the in-process substrate may consume:
// concurrent partition tasks, pinned memory for cached partitions, and
// spill IO throughput.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxParallelTasks is the maximum number of partition tasks running
	// concurrently. If 0, defaults to 1.
	MaxParallelTasks int64

	// PinnedMemoryLimitBytes is the hard limit for memory pinned by cached
	// partitions. If 0, no hard limit is enforced (only tracking).
	PinnedMemoryLimitBytes int64

	// SpillBytesPerSec is the maximum IO throughput for spilling partitions
	// to a blob store. If 0, unlimited.
	SpillBytesPerSec int64
}

// Controller manages the substrate's global resources.
type Controller struct {
	cfg Config

	pinSem   *semaphore.Weighted // nil if unlimited
	pinBytes atomic.Int64

	spillLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxParallelTasks <= 0 {
		cfg.MaxParallelTasks = 1
	}

	c := &Controller{cfg: cfg}

	if cfg.PinnedMemoryLimitBytes > 0 {
		c.pinSem = semaphore.NewWeighted(cfg.PinnedMemoryLimitBytes)
	}

	if cfg.SpillBytesPerSec > 0 {
		c.spillLimiter = rate.NewLimiter(rate.Limit(cfg.SpillBytesPerSec), int(cfg.SpillBytesPerSec))
	}

	return c
}

// MaxParallelTasks returns the configured task parallelism bound. Task
// slots are scoped to a single partition loop, not held globally, so a
// partition that triggers a nested materialization of its lineage cannot
// starve it of slots.
func (c *Controller) MaxParallelTasks() int {
	return int(c.cfg.MaxParallelTasks)
}

// AcquirePinned reserves pinned memory for a cached partition. If a hard
// limit is configured and usage would exceed it, this blocks until memory
// is released or ctx is canceled.
func (c *Controller) AcquirePinned(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.pinSem != nil {
		if err := c.pinSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	c.pinBytes.Add(bytes)
	return nil
}

// ReleasePinned releases pinned memory.
func (c *Controller) ReleasePinned(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.pinSem != nil {
		c.pinSem.Release(bytes)
	}
	c.pinBytes.Add(-bytes)
}

// PinnedBytes returns the currently pinned memory in bytes.
func (c *Controller) PinnedBytes() int64 {
	return c.pinBytes.Load()
}

// AcquireSpillIO waits until the spill rate limit allows the given number
// of bytes. Requests larger than the limiter's burst are acquired in
// burst-sized chunks, so a single block bigger than one second's budget
// throttles instead of failing.
func (c *Controller) AcquireSpillIO(ctx context.Context, bytes int) error {
	if c == nil || c.spillLimiter == nil {
		return nil
	}
	burst := c.spillLimiter.Burst()
	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}
		if err := c.spillLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
