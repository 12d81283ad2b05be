// Package graphgo provides an embedded partitioned property-graph engine
// for Go.
//
// A graph is a vertex collection hash partitioned by id plus an edge
// collection cut by a pluggable partition strategy (vertex-cut). Endpoint
// attributes are replicated into edge partitions on demand, tracked by an
// explicit fidelity state, so an operation that only reads source
// attributes never pays for shipping destination attributes.
//
// # Quick Start
//
//	g, _ := graphgo.FromEdges[int](edges, 0,
//	    graphgo.WithNumPartitions(4),
//	    graphgo.WithPartitionStrategy(partition.BiDstCut()),
//	)
//
//	deg, _ := g.InDegrees().Collect(ctx)
//
// # Aggregation
//
// MapReduceTriplets is the core primitive: a map function runs over edge
// triplets and sends messages to vertices, a commutative reduce function
// combines them per vertex. Declaring attribute usage narrows replication:
//
//	ranks := graphgo.MapReduceTriplets(g,
//	    func(t graphgo.EdgeTriplet[float64, float64], send func(graphgo.VertexID, float64)) {
//	        send(t.DstID, t.SrcAttr*t.Attr)
//	    },
//	    func(a, b float64) float64 { return a + b },
//	    graphgo.WithAttrUsage(graphgo.UsesSrc),
//	)
//
// # Laziness
//
// Transformations (MapVertices, Subgraph, Reverse, PartitionBy, ...) are
// lazy: they compose a lineage, and work runs when a result is collected.
// Cache and Persist pin materialized partitions, in memory or spilled to a
// blob store.
//
// # Key Features
//
//   - Pluggable vertex-cut strategies (hash, bipartite cuts, hybrid cuts)
//   - Fidelity-tracked attribute replication with targeted diff updates
//   - Active-set scans through a clustered source index
//   - Pregel-style iteration built on the aggregation primitive
//   - Spillable caching (memory, compressed memory, local disk, S3/MinIO)
package graphgo
