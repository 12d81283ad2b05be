package graphgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordShipBlock is called for every block of vertex attributes shipped
	// into an edge partition during replication. vertices is the block size.
	RecordShipBlock(partition PartitionID, vertices int)

	// RecordAggregateScan is called after each edge partition finishes its
	// share of a triplet aggregation. usedIndex reports whether the scan
	// went through the clustered source index.
	RecordAggregateScan(partition PartitionID, edgesScanned, messages int, usedIndex bool)

	// RecordRepartition is called after an edge partitioning pass.
	RecordRepartition(strategy string, numPartitions, edges int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordShipBlock(PartitionID, int)                 {}
func (NoopMetricsCollector) RecordAggregateScan(PartitionID, int, int, bool)  {}
func (NoopMetricsCollector) RecordRepartition(string, int, int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ShipBlocks      atomic.Int64
	ShippedVertices atomic.Int64
	ScanCount       atomic.Int64
	EdgesScanned    atomic.Int64
	Messages        atomic.Int64
	IndexScans      atomic.Int64
	Repartitions    atomic.Int64
	EdgesMoved      atomic.Int64
}

// RecordShipBlock implements MetricsCollector.
func (b *BasicMetricsCollector) RecordShipBlock(_ PartitionID, vertices int) {
	b.ShipBlocks.Add(1)
	b.ShippedVertices.Add(int64(vertices))
}

// RecordAggregateScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAggregateScan(_ PartitionID, edgesScanned, messages int, usedIndex bool) {
	b.ScanCount.Add(1)
	b.EdgesScanned.Add(int64(edgesScanned))
	b.Messages.Add(int64(messages))
	if usedIndex {
		b.IndexScans.Add(1)
	}
}

// RecordRepartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRepartition(_ string, _ int, edges int, _ time.Duration) {
	b.Repartitions.Add(1)
	b.EdgesMoved.Add(int64(edges))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ShipBlocks:      b.ShipBlocks.Load(),
		ShippedVertices: b.ShippedVertices.Load(),
		ScanCount:       b.ScanCount.Load(),
		EdgesScanned:    b.EdgesScanned.Load(),
		Messages:        b.Messages.Load(),
		IndexScans:      b.IndexScans.Load(),
		Repartitions:    b.Repartitions.Load(),
		EdgesMoved:      b.EdgesMoved.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ShipBlocks      int64
	ShippedVertices int64
	ScanCount       int64
	EdgesScanned    int64
	Messages        int64
	IndexScans      int64
	Repartitions    int64
	EdgesMoved      int64
}
