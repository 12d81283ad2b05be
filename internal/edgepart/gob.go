package edgepart

import (
	"bytes"
	"encoding/gob"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/core"
)

// partitionWire is the serialized form. The source index and the local
// slot map are rebuilt on decode.
type partitionWire[ED, VD any] struct {
	SrcIDs   []core.VertexID
	DstIDs   []core.VertexID
	Attrs    []ED
	Refs     []core.VertexID
	VAttrs   []VD
	Fidelity core.Fidelity
	Active   []byte
}

// GobEncode implements gob.GobEncoder so partitions survive spilling to a
// blob store. ED and VD must themselves be gob-encodable.
func (p *Partition[ED, VD]) GobEncode() ([]byte, error) {
	w := partitionWire[ED, VD]{
		SrcIDs:   p.srcIDs,
		DstIDs:   p.dstIDs,
		Attrs:    p.attrs,
		Refs:     p.refs,
		VAttrs:   p.vattrs,
		Fidelity: p.fidelity,
	}
	if p.active != nil {
		var err error
		if w.Active, err = p.active.MarshalBinary(); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (p *Partition[ED, VD]) GobDecode(data []byte) error {
	var w partitionWire[ED, VD]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	p.srcIDs = w.SrcIDs
	p.dstIDs = w.DstIDs
	p.attrs = w.Attrs
	p.refs = w.Refs
	p.vattrs = w.VAttrs
	p.fidelity = w.Fidelity

	p.index = make(map[core.VertexID]int32)
	for i, src := range w.SrcIDs {
		if _, ok := p.index[src]; !ok {
			p.index[src] = int32(i)
		}
	}
	p.local = make(map[core.VertexID]int32, len(w.Refs))
	for slot, id := range w.Refs {
		p.local[id] = int32(slot)
	}

	p.active = nil
	if w.Active != nil {
		p.active = roaring64.NewBitmap()
		if err := p.active.UnmarshalBinary(w.Active); err != nil {
			return err
		}
	}
	return nil
}
