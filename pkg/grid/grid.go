// Package grid maps a geographic point to the chunk's spatial grid cells
// and looks up each cell's segment-id window via binary search over the
// chunk's sorted cellEntries array. See spec §4.D.
package grid

import (
	"math"
	"sort"

	"roadindex/pkg/chunk"
	"roadindex/pkg/geo"
)

// CellCoords computes the clamped grid cell (cx, cy) containing q, using
// the chunk's origin and cell size with local equirectangular scales at
// the origin latitude.
func CellCoords(c *chunk.Chunk, q geo.LatLon) (cx, cy int) {
	origin := geo.LatLon{Lat: c.OriginLat, Lon: c.OriginLon}
	mLat := geo.MetersPerDegreeLat(origin.Lat)
	mLon := geo.MetersPerDegreeLon(origin.Lat)

	dx := (q.Lon - origin.Lon) * mLon
	dy := (q.Lat - origin.Lat) * mLat

	cellSize := float64(c.CellSizeM)
	cx = int(math.Floor(dx / cellSize))
	cy = int(math.Floor(dy / cellSize))

	cx = clamp(cx, 0, int(c.GridWidth)-1)
	cy = clamp(cy, 0, int(c.GridHeight)-1)
	return cx, cy
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PackCellID packs grid coordinates into the cell id used as the
// cellEntries binary-search key: (x << 16) | y.
func PackCellID(cx, cy int) uint32 {
	return uint32(uint16(cx))<<16 | uint32(uint16(cy))
}

// Lookup binary-searches c.CellEntries for cellID and returns the matching
// entry, or false if absent.
func Lookup(c *chunk.Chunk, cellID uint32) (chunk.CellEntry, bool) {
	entries := c.CellEntries
	i := sort.Search(len(entries), func(i int) bool { return entries[i].CellID >= cellID })
	if i < len(entries) && entries[i].CellID == cellID {
		return entries[i], true
	}
	return chunk.CellEntry{}, false
}

// NeighborhoodCellIDs returns the cell ids of the 3x3 neighborhood
// (cx-1..cx+1, cy-1..cy+1) around (cx, cy), silently omitting any cell
// that falls outside the grid.
func NeighborhoodCellIDs(c *chunk.Chunk, cx, cy int) []uint32 {
	var ids []uint32
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= int(c.GridWidth) || ny < 0 || ny >= int(c.GridHeight) {
				continue
			}
			ids = append(ids, PackCellID(nx, ny))
		}
	}
	return ids
}

// NeighborhoodSegments returns every segment index listed in the 3x3
// neighborhood around q. Duplicates are possible (a segment may appear in
// more than one cell) and are not filtered here — callers must tolerate
// them (the matcher's scoring loop is idempotent).
func NeighborhoodSegments(c *chunk.Chunk, q geo.LatLon) []uint32 {
	cx, cy := CellCoords(c, q)
	var segs []uint32
	for _, id := range NeighborhoodCellIDs(c, cx, cy) {
		entry, ok := Lookup(c, id)
		if !ok {
			continue
		}
		segs = append(segs, c.CellSegments[entry.SegStart:entry.SegStart+uint32(entry.SegCount)]...)
	}
	return segs
}
