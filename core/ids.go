package core

// VertexID is the globally unique, 64-bit identifier of a vertex.
// It is assigned by the caller and immutable for the lifetime of the graph.
type VertexID int64

// PartitionID identifies an edge partition. Valid values are in
// [0, numPartitions).
type PartitionID int32

// Direction restricts which edges an aggregation considers relative to the
// active vertex set.
type Direction uint8

const (
	// DirNone ignores the active set: every edge is considered.
	DirNone Direction = iota
	// DirIn considers edges whose destination is active.
	DirIn
	// DirOut considers edges whose source is active.
	DirOut
	// DirEither considers edges with at least one active endpoint.
	DirEither
	// DirBoth considers edges with both endpoints active.
	DirBoth
)

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case DirNone:
		return "none"
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirEither:
		return "either"
	case DirBoth:
		return "both"
	default:
		return "unknown"
	}
}
