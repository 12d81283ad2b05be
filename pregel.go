package graphgo

import (
	"context"
)

// Pregel runs a bulk-synchronous vertex program until no messages remain
// or maxIterations rounds have run (non-positive means unbounded).
//
// Every vertex first receives initialMsg. Each round then sends messages
// over the triplets selected by dir relative to the vertices that received
// a message last round, merges them per vertex with mergeMsg, and applies
// vprog to the receivers. Vertices that receive nothing keep their
// attribute and stop sending.
//
// mergeMsg must be commutative and associative.
func Pregel[VD, ED, A any](
	ctx context.Context,
	g *Graph[VD, ED],
	initialMsg A,
	maxIterations int,
	dir Direction,
	vprog func(id VertexID, attr VD, msg A) VD,
	sendMsg func(t EdgeTriplet[VD, ED], send func(id VertexID, msg A)),
	mergeMsg func(a, b A) A,
) (*Graph[VD, ED], error) {
	cur := g.MapVertices(func(id VertexID, attr VD) VD {
		return vprog(id, attr, initialMsg)
	}, nil).Cache()

	msgs := MapReduceTriplets(cur, sendMsg, mergeMsg).Cache()

	for i := 0; maxIterations <= 0 || i < maxIterations; i++ {
		n, err := msgs.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		active, err := msgs.ids(ctx)
		if err != nil {
			return nil, err
		}

		cur = JoinVertices(cur, msgs, func(id VertexID, attr VD, m A) VD {
			return vprog(id, attr, m)
		}).Cache()

		prev := msgs
		msgs = MapReduceTriplets(cur, sendMsg, mergeMsg, withActiveBitmap(active, dir)).Cache()
		prev.coll.Unpersist(false)
	}
	return cur, nil
}
