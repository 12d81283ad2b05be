package partition

import "github.com/hupe1980/graphgo/core"

// HashStrategy is the default strategy: partition = hash(src, dst) mod n.
// It is load-oblivious but cheap and stateless.
type HashStrategy struct {
	fn func(src, dst core.VertexID) uint64
}

// Hash returns the default hash strategy, mixing both endpoint ids through
// a 64-bit finalizer before the modulus.
func Hash() *HashStrategy {
	return &HashStrategy{fn: func(src, dst core.VertexID) uint64 {
		return mix64(uint64(src)*0x9e3779b97f4a7c15 ^ uint64(dst))
	}}
}

// HashWith returns a hash strategy using a caller-supplied hash function.
// Useful for tests and for callers that already key edges externally.
func HashWith(fn func(src, dst core.VertexID) uint64) *HashStrategy {
	return &HashStrategy{fn: fn}
}

// Name implements Strategy.
func (h *HashStrategy) Name() string { return "hash" }

// PartitionFor implements Strategy.
func (h *HashStrategy) PartitionFor(src, dst core.VertexID, numPartitions int) core.PartitionID {
	return core.PartitionID(h.fn(src, dst) % uint64(numPartitions))
}

// mix64 is the splitmix64 finalizer. It decorrelates the low-order bits of
// sequential ids from the partition modulus.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
