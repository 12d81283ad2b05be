package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxParallelTasks(t *testing.T) {
	assert.Equal(t, 4, NewController(Config{MaxParallelTasks: 4}).MaxParallelTasks())
	assert.Equal(t, 1, NewController(Config{}).MaxParallelTasks(), "non-positive defaults to 1")
}

func TestPinnedMemoryTracking(t *testing.T) {
	c := NewController(Config{MaxParallelTasks: 1})
	ctx := context.Background()

	require.NoError(t, c.AcquirePinned(ctx, 100))
	require.NoError(t, c.AcquirePinned(ctx, 50))
	assert.Equal(t, int64(150), c.PinnedBytes())

	c.ReleasePinned(100)
	assert.Equal(t, int64(50), c.PinnedBytes())

	// Zero and negative sizes are no-ops.
	require.NoError(t, c.AcquirePinned(ctx, 0))
	c.ReleasePinned(0)
	assert.Equal(t, int64(50), c.PinnedBytes())
}

func TestPinnedMemoryHardLimit(t *testing.T) {
	c := NewController(Config{MaxParallelTasks: 1, PinnedMemoryLimitBytes: 100})

	require.NoError(t, c.AcquirePinned(context.Background(), 80))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.AcquirePinned(ctx, 80)
	assert.Error(t, err, "over-limit acquire must block until canceled")

	c.ReleasePinned(80)
	require.NoError(t, c.AcquirePinned(context.Background(), 80))
	c.ReleasePinned(80)
}

func TestSpillIOLimiter(t *testing.T) {
	t.Run("Unlimited", func(t *testing.T) {
		c := NewController(Config{MaxParallelTasks: 1})
		require.NoError(t, c.AcquireSpillIO(context.Background(), 1<<30))
	})

	t.Run("RateApplies", func(t *testing.T) {
		c := NewController(Config{MaxParallelTasks: 1, SpillBytesPerSec: 1024})

		// The burst covers the first kilobyte; the next request must wait.
		require.NoError(t, c.AcquireSpillIO(context.Background(), 1024))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := c.AcquireSpillIO(ctx, 1024)
		assert.Error(t, err)
	})

	t.Run("BlockLargerThanBurst", func(t *testing.T) {
		// A request above one second's budget must throttle in chunks, not
		// fail outright.
		c := NewController(Config{MaxParallelTasks: 1, SpillBytesPerSec: 1 << 20})

		start := time.Now()
		require.NoError(t, c.AcquireSpillIO(context.Background(), 3<<20))
		assert.GreaterOrEqual(t, time.Since(start), time.Second, "two extra megabytes need at least two seconds of budget")
	})

	t.Run("OversizeBlockHonorsCancel", func(t *testing.T) {
		c := NewController(Config{MaxParallelTasks: 1, SpillBytesPerSec: 1024})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.Error(t, c.AcquireSpillIO(ctx, 1<<20))
	})
}

func TestNilController(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquirePinned(context.Background(), 10))
	c.ReleasePinned(10)
	require.NoError(t, c.AcquireSpillIO(context.Background(), 10))
}
