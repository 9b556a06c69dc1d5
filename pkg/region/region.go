// Package region implements the region directory (spec §6): an ordered list
// of geographic regions, each carrying the chunk zoom level used to tile it.
package region

import (
	"github.com/paulmach/orb"

	"roadindex/pkg/geo"
)

// Region is one entry in the directory: a bounding box, a stable id used in
// cache keys and tile paths, the zoom level its chunks are tiled at, and the
// base URL of its chunk origin server (spec §3) — regions can be served from
// distinct origins.
type Region struct {
	ID        string
	Bound     orb.Bound
	ChunkZoom uint32
	BaseURL   string
}

// Contains reports whether loc falls within the region's bound.
func (r Region) Contains(loc geo.LatLon) bool {
	return r.Bound.Contains(orb.Point{loc.Lon, loc.Lat})
}

// Directory is an ordered list of regions; the first region containing a
// point wins.
type Directory []Region

// Find returns the first region containing loc, or false if none does.
func (d Directory) Find(loc geo.LatLon) (Region, bool) {
	for _, r := range d {
		if r.Contains(loc) {
			return r, true
		}
	}
	return Region{}, false
}
