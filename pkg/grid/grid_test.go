package grid

import (
	"testing"

	"roadindex/pkg/chunk"
	"roadindex/pkg/geo"
)

func testChunk() *chunk.Chunk {
	c := &chunk.Chunk{
		OriginLat:    1.35,
		OriginLon:    103.8,
		CellSizeM:    100,
		GridWidth:    10,
		GridHeight:   10,
		CellEntries:  []chunk.CellEntry{},
		CellSegments: []uint32{},
	}
	entries := []chunk.CellEntry{
		{CellID: PackCellID(2, 2), SegStart: 0, SegCount: 2},
		{CellID: PackCellID(3, 3), SegStart: 2, SegCount: 1},
		{CellID: PackCellID(9, 9), SegStart: 3, SegCount: 1},
	}
	c.CellEntries = entries
	c.CellSegments = []uint32{10, 11, 12, 13}
	return c
}

// TestLookupBinarySearch covers testable property 5.
func TestLookupBinarySearch(t *testing.T) {
	c := testChunk()
	for _, e := range c.CellEntries {
		got, ok := Lookup(c, e.CellID)
		if !ok {
			t.Errorf("Lookup(%d): not found, want found", e.CellID)
			continue
		}
		if got != e {
			t.Errorf("Lookup(%d) = %+v, want %+v", e.CellID, got, e)
		}
	}
	if _, ok := Lookup(c, PackCellID(5, 5)); ok {
		t.Errorf("Lookup(unknown cell) = found, want absent")
	}
}

func TestNeighborhoodCellIDsSkipsOutOfGrid(t *testing.T) {
	c := testChunk()
	ids := NeighborhoodCellIDs(c, 0, 0)
	// Corner cell: only 4 of the 9 neighbors are in-grid.
	if len(ids) != 4 {
		t.Errorf("corner neighborhood size = %d, want 4", len(ids))
	}
	ids = NeighborhoodCellIDs(c, 5, 5)
	if len(ids) != 9 {
		t.Errorf("interior neighborhood size = %d, want 9", len(ids))
	}
}

// TestMatcherLocality covers testable property 6: a segment listed only in
// a cell outside the 3x3 neighborhood of q does not appear in the result.
func TestMatcherLocality(t *testing.T) {
	c := testChunk()
	q := geo.LatLon{Lat: c.OriginLat + 0.0027, Lon: c.OriginLon + 0.0027} // lands near cell (2,2)-ish

	segs := NeighborhoodSegments(c, q)
	for _, s := range segs {
		if s == 13 { // only listed in the far cell (9,9)
			t.Errorf("far-away segment 13 leaked into neighborhood result: %v", segs)
		}
	}
}

func TestCellCoordsClamped(t *testing.T) {
	c := testChunk()
	cx, cy := CellCoords(c, geo.LatLon{Lat: c.OriginLat - 10, Lon: c.OriginLon - 10})
	if cx != 0 || cy != 0 {
		t.Errorf("far southwest point = (%d,%d), want clamped to (0,0)", cx, cy)
	}
	cx, cy = CellCoords(c, geo.LatLon{Lat: c.OriginLat + 10, Lon: c.OriginLon + 10})
	if cx != int(c.GridWidth)-1 || cy != int(c.GridHeight)-1 {
		t.Errorf("far northeast point = (%d,%d), want clamped to (%d,%d)", cx, cy, c.GridWidth-1, c.GridHeight-1)
	}
}
