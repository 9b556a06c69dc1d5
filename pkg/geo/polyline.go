package geo

import "math"

// PolylineHit is the result of snapping a point onto a polyline.
type PolylineHit struct {
	Snapped        LatLon
	DistanceMeters float64
	BearingDegrees float64 // bearing of the edge (a,b) that produced the hit
}

// ClosestPointOnPolyline finds the closest point on polyline to point,
// projecting each consecutive edge into local meters at point as origin and
// clamping the projection parameter to [0,1] (per-edge closest point).
// Returns false if the polyline has fewer than two points or every edge is
// degenerate (zero length).
func ClosestPointOnPolyline(point LatLon, polyline []LatLon) (PolylineHit, bool) {
	if len(polyline) < 2 {
		return PolylineHit{}, false
	}

	px, py := 0.0, 0.0 // point is the projection origin, so it sits at (0,0)

	bestDistSq := math.Inf(1)
	var best PolylineHit
	found := false

	for i := 0; i < len(polyline)-1; i++ {
		a := polyline[i]
		b := polyline[i+1]

		ax, ay := localOffset(point, a)
		bx, by := localOffset(point, b)

		dx := bx - ax
		dy := by - ay
		lenSq := dx*dx + dy*dy
		if lenSq == 0 {
			continue // degenerate edge, skip (not fatal)
		}

		t := ((px-ax)*dx + (py-ay)*dy) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}

		cx := ax + t*dx
		cy := ay + t*dy
		distSq := (cx-px)*(cx-px) + (cy-py)*(cy-py)

		if distSq < bestDistSq {
			bestDistSq = distSq
			best = PolylineHit{
				Snapped:        inverseLocalOffset(point, cx, cy),
				DistanceMeters: math.Sqrt(distSq),
				BearingDegrees: BearingDegrees(a, b),
			}
			found = true
		}
	}

	return best, found
}
