package pcoll

import (
	"context"
	"fmt"
)

// MapPartitionsWithIndex applies f to each partition. Partition indices are
// preserved: output partition i is exactly f(i, input partition i), so
// transforms that rely on partition-id stability may declare so safely.
func MapPartitionsWithIndex[T, U any](c *Collection[T], name string, f func(ctx context.Context, part int, rows []T) ([]U, error)) *Collection[U] {
	return New(c.exec, name, c.n, func(ctx context.Context, i int) ([]U, error) {
		rows, err := c.materialize(ctx, i)
		if err != nil {
			return nil, err
		}
		return f(ctx, i, rows)
	})
}

// ZipPartitions pairs partition i of a with partition i of b. Both
// collections must have the same partition count; a mismatch surfaces as an
// error when the result materializes.
func ZipPartitions[A, B, C any](a *Collection[A], b *Collection[B], name string, f func(ctx context.Context, part int, as []A, bs []B) ([]C, error)) *Collection[C] {
	if a.n != b.n {
		mismatch := fmt.Errorf("pcoll: zip %q (%d partitions) with %q (%d partitions)", a.name, a.n, b.name, b.n)
		return New[C](a.exec, name, a.n, func(context.Context, int) ([]C, error) {
			return nil, mismatch
		})
	}
	return New(a.exec, name, a.n, func(ctx context.Context, i int) ([]C, error) {
		as, err := a.materialize(ctx, i)
		if err != nil {
			return nil, err
		}
		bs, err := b.materialize(ctx, i)
		if err != nil {
			return nil, err
		}
		return f(ctx, i, as, bs)
	})
}
