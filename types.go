package graphgo

import (
	"github.com/hupe1980/graphgo/core"
)

// VertexID identifies a vertex.
type VertexID = core.VertexID

// PartitionID identifies an edge partition.
type PartitionID = core.PartitionID

// Direction selects edges relative to an active vertex set.
type Direction = core.Direction

// Direction values.
const (
	DirNone   = core.DirNone
	DirIn     = core.DirIn
	DirOut    = core.DirOut
	DirEither = core.DirEither
	DirBoth   = core.DirBoth
)

// AttrUsage declares which endpoint attributes a triplet function reads.
type AttrUsage = core.AttrUsage

// AttrUsage values.
const (
	UsesNone = core.UsesNone
	UsesSrc  = core.UsesSrc
	UsesDst  = core.UsesDst
	UsesBoth = core.UsesBoth
)

// Vertex is an input vertex: an id with its attribute.
type Vertex[VD any] struct {
	ID   VertexID
	Attr VD
}

// Edge is a directed edge from Src to Dst carrying an attribute.
type Edge[ED any] struct {
	Src  VertexID
	Dst  VertexID
	Attr ED
}

// EdgeTriplet is an edge joined with both endpoint attributes. Endpoint
// attributes are only meaningful when the operation that produced the
// triplet declared it reads them.
type EdgeTriplet[VD, ED any] struct {
	SrcID   VertexID
	DstID   VertexID
	SrcAttr VD
	DstAttr VD
	Attr    ED
}
