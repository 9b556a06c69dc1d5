// Package tile computes chunk-tile ids and their meter-radius neighborhoods
// over the web-mercator tile grid (spec §4.H), using paulmach/orb's maptile
// implementation so the tile math is pinned to one well-known formula (spec
// scenario S2: tile id determinism).
package tile

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"roadindex/pkg/geo"
)

// ID identifies one chunk tile within a region's zoom level.
type ID struct {
	X, Y uint32
	Z    maptile.Zoom
}

// At returns the tile containing loc at zoom z.
func At(loc geo.LatLon, z uint32) ID {
	t := maptile.At(orb.Point{loc.Lon, loc.Lat}, maptile.Zoom(z))
	return ID{X: t.X, Y: t.Y, Z: t.Z}
}

// Neighborhood returns every tile within radiusMeters of loc at zoom z,
// including the tile containing loc itself. Tiles are deduplicated.
func Neighborhood(loc geo.LatLon, z uint32, radiusMeters float64) []ID {
	mLat := geo.MetersPerDegreeLat(loc.Lat)
	mLon := geo.MetersPerDegreeLon(loc.Lat)
	dLat := radiusMeters / mLat
	dLon := radiusMeters / mLon

	minTile := At(geo.LatLon{Lat: loc.Lat + dLat, Lon: loc.Lon - dLon}, z)
	maxTile := At(geo.LatLon{Lat: loc.Lat - dLat, Lon: loc.Lon + dLon}, z)

	minX, maxX := minTile.X, maxTile.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := minTile.Y, maxTile.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	var out []ID
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			out = append(out, ID{X: x, Y: y, Z: maptile.Zoom(z)})
		}
	}
	return out
}
