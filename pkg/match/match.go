// Package match implements the geometric matcher (spec §4.E): scoring
// nearby segments in a chunk's 3x3 cell neighborhood by distance and
// bearing, and selecting the minimum-score candidate.
package match

import (
	"roadindex/pkg/chunk"
	"roadindex/pkg/geo"
	"roadindex/pkg/grid"
)

// Config holds the matcher's tunable thresholds.
type Config struct {
	SearchRadiusMeters   float64
	BearingWeight        float64
	MaxBearingDifference float64
}

// DefaultConfig returns the spec's default matcher thresholds.
func DefaultConfig() Config {
	return Config{
		SearchRadiusMeters:   70,
		BearingWeight:        1.4,
		MaxBearingDifference: 60,
	}
}

// Result is an accepted match: the chunk and segment it snapped to, the
// snapped location, distance, bearing, and score.
type Result struct {
	ChunkIndex     int
	SegmentIndex   int
	Name           string
	DistanceMeters float64
	BearingDegrees float64
	Snapped        geo.LatLon
	Score          float64
}

// MatchOn scores every segment in the 3x3 cell neighborhood of loc across
// all supplied chunks and returns the minimum-score candidate, or false if
// none qualifies. heading is optional; nil disables the bearing term
// (bearingDiff treated as 0).
func MatchOn(loc geo.LatLon, heading *float64, chunks []*chunk.Chunk, cfg Config) (Result, bool) {
	var best Result
	found := false

	for chunkIdx, c := range chunks {
		if c == nil {
			continue
		}
		for _, segIdx := range grid.NeighborhoodSegments(c, loc) {
			polyline := c.SegmentPolyline(int(segIdx))
			hit, ok := geo.ClosestPointOnPolyline(loc, polyline)
			if !ok {
				continue
			}
			if hit.DistanceMeters > cfg.SearchRadiusMeters {
				continue
			}

			bearingDiff := 0.0
			if heading != nil {
				bearingDiff = geo.AngularDifference(*heading, hit.BearingDegrees)
				if bearingDiff > cfg.MaxBearingDifference {
					continue
				}
			}

			score := hit.DistanceMeters + cfg.BearingWeight*bearingDiff

			if !found || score < best.Score {
				seg := c.Segments[segIdx]
				best = Result{
					ChunkIndex:     chunkIdx,
					SegmentIndex:   int(segIdx),
					Name:           c.String(seg.NameIndex),
					DistanceMeters: hit.DistanceMeters,
					BearingDegrees: hit.BearingDegrees,
					Snapped:        hit.Snapped,
					Score:          score,
				}
				found = true
			}
		}
	}

	return best, found
}
