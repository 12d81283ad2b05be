package vertexpart

import (
	"bytes"
	"encoding/gob"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/core"
)

// partitionWire is the serialized form. The id index is rebuilt on decode
// instead of being stored.
type partitionWire[VD any] struct {
	IDs    []core.VertexID
	Values []VD
	Mask   []byte
	Active []byte
}

// GobEncode implements gob.GobEncoder so partitions survive spilling to a
// blob store. VD must itself be gob-encodable.
func (p *Partition[VD]) GobEncode() ([]byte, error) {
	w := partitionWire[VD]{
		IDs:    p.ids,
		Values: p.values,
	}
	var err error
	if w.Mask, err = p.mask.MarshalBinary(); err != nil {
		return nil, err
	}
	if p.active != nil {
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
func (p *Partition[VD]) GobDecode(data []byte) error {
	var w partitionWire[VD]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	p.ids = w.IDs
	p.values = w.Values
	p.index = make(map[core.VertexID]int32, len(w.IDs))
	for slot, id := range w.IDs {
		p.index[id] = int32(slot)
	}
	p.mask = roaring64.NewBitmap()
	if err := p.mask.UnmarshalBinary(w.Mask); err != nil {
		return err
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
