package routing

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/core"
)

func bitmapOf(ids ...uint64) *roaring64.Bitmap {
	bm := roaring64.NewBitmap()
	bm.AddMany(ids)
	return bm
}

func TestIDsFor(t *testing.T) {
	r := Refs{Src: bitmapOf(1, 2), Dst: bitmapOf(2, 3)}

	tests := []struct {
		name string
		need core.Fidelity
		want []uint64
	}{
		{"none", core.FidelityNone, nil},
		{"src", core.FidelitySrc, []uint64{1, 2}},
		{"dst", core.FidelityDst, []uint64{2, 3}},
		{"both", core.FidelityBoth, []uint64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.IDsFor(tt.need).ToArray()
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestIDsForReturnsFreshBitmap(t *testing.T) {
	r := Refs{Src: bitmapOf(1), Dst: bitmapOf(2)}
	got := r.IDsFor(core.FidelitySrc)
	got.Add(99)
	if r.Src.Contains(99) {
		t.Error("IDsFor must not alias the routing bitmaps")
	}
}

func TestReversed(t *testing.T) {
	tbl := NewTable([]Refs{
		{Src: bitmapOf(1), Dst: bitmapOf(2)},
		{Src: bitmapOf(3), Dst: bitmapOf(4)},
	})
	rev := tbl.Reversed()

	if rev.NumPartitions() != 2 {
		t.Fatalf("NumPartitions = %d, want 2", rev.NumPartitions())
	}
	if !rev.Refs(0).Src.Contains(2) || !rev.Refs(0).Dst.Contains(1) {
		t.Error("partition 0 roles not swapped")
	}
	if !rev.Refs(1).Src.Contains(4) || !rev.Refs(1).Dst.Contains(3) {
		t.Error("partition 1 roles not swapped")
	}
}
