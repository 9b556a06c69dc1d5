// Package predict implements the next-road predictor (spec §4.F): given an
// accepted match and a heading, it identifies the current segment's forward
// node and scans that node's outgoing edges for the most plausible next
// segment, skipping continuations of the current road.
package predict

import (
	"roadindex/pkg/chunk"
	"roadindex/pkg/geo"
	"roadindex/pkg/match"
)

// Config holds the predictor's tunable thresholds.
type Config struct {
	NextDistanceMeters   float64
	NextHeadingTolerance float64
	HeadingProbeMeters   float64
	LinkPenalty          float64
	HeadingWeight        float64
}

// DefaultConfig returns the spec's default predictor thresholds.
func DefaultConfig() Config {
	return Config{
		NextDistanceMeters:   160,
		NextHeadingTolerance: 50,
		HeadingProbeMeters:   20,
		LinkPenalty:          12.0,
		HeadingWeight:        0.8,
	}
}

// Result is a predicted next road.
type Result struct {
	Name           string
	SegmentIndex   int
	DistanceMeters float64 // carries the candidate score, by design (spec §4.F.11)
	Confidence     float64
}

// Next computes the most plausible next segment given an accepted match, a
// heading, and the chunk that produced the match. Returns false if heading
// is absent or no candidate qualifies.
func Next(m match.Result, heading *float64, c *chunk.Chunk, cfg Config) (Result, bool) {
	if heading == nil {
		return Result{}, false
	}
	h := *heading

	if m.SegmentIndex < 0 || m.SegmentIndex >= len(c.Segments) {
		return Result{}, false
	}
	seg := c.Segments[m.SegmentIndex]

	forward := selectForwardNode(h, seg)
	if int(forward) >= len(c.Nodes) {
		return Result{}, false
	}
	forwardNode := c.Nodes[forward]
	forwardLL := forwardNode.LatLon()

	dNode := geo.HaversineLL(m.Snapped, forwardLL)
	if dNode > cfg.NextDistanceMeters {
		return Result{}, false
	}

	bearingToForward := geo.BearingDegrees(m.Snapped, forwardLL)
	if geo.AngularDifference(h, bearingToForward) > cfg.NextHeadingTolerance {
		return Result{}, false
	}

	if !forwardTestPasses(m.Snapped, h, forwardLL, cfg.HeadingProbeMeters) {
		return Result{}, false
	}

	best := Result{}
	found := false

	start, end := forwardNode.EdgeStart, uint32(forwardNode.EdgeStart)+uint32(forwardNode.EdgeCount)
	if int(end) > len(c.NodeEdges) {
		end = uint32(len(c.NodeEdges))
	}
	for _, candIdx := range c.NodeEdges[start:end] {
		if int(candIdx) == m.SegmentIndex {
			continue
		}
		if int(candIdx) >= len(c.Segments) {
			continue
		}
		cand := c.Segments[candIdx]
		candName := c.String(cand.NameIndex)
		if candName == m.Name {
			continue
		}

		var bearingAway float64
		if cand.NodeA == forward {
			bearingAway = float64(cand.BearingAB)
		} else {
			bearingAway = float64(cand.BearingBA)
		}
		diff := geo.AngularDifference(h, bearingAway)
		if diff > cfg.NextHeadingTolerance {
			continue
		}

		linkPenalty := 0.0
		if cand.IsLink() {
			linkPenalty = cfg.LinkPenalty
		}
		score := dNode + cfg.HeadingWeight*diff + linkPenalty
		confidence := 1 - diff/cfg.NextHeadingTolerance
		if confidence < 0 {
			confidence = 0
		}

		if !found || score < best.DistanceMeters {
			best = Result{
				Name:           candName,
				SegmentIndex:   int(candIdx),
				DistanceMeters: score,
				Confidence:     confidence,
			}
			found = true
		}
	}

	return best, found
}

// selectForwardNode chooses nodeB if its reference bearing is at least as
// close to the heading as nodeA's (≤ biases toward nodeB, preserved as a
// determinism-ensuring tie-break), else nodeA.
func selectForwardNode(heading float64, seg chunk.Segment) uint32 {
	diffAB := geo.AngularDifference(heading, float64(seg.BearingAB))
	diffBA := geo.AngularDifference(heading, float64(seg.BearingBA))
	if diffAB <= diffBA {
		return seg.NodeB
	}
	return seg.NodeA
}

// forwardTestPasses requires the heading probe and the forward node to lie
// in the same local half-plane from snapped (positive dot product).
func forwardTestPasses(snapped geo.LatLon, heading float64, forwardNode geo.LatLon, probeMeters float64) bool {
	probe := geo.PointAlongHeading(snapped, heading, probeMeters)
	px, py := geo.LocalOffsetMeters(snapped, probe)
	fx, fy := geo.LocalOffsetMeters(snapped, forwardNode)
	dot := px*fx + py*fy
	return dot > 0
}
