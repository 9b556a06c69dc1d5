package predict

import (
	"testing"

	"roadindex/pkg/chunk"
	"roadindex/pkg/geo"
	"roadindex/pkg/match"
)

func e7(v float64) int32 { return int32(v * 1e7) }

// buildTJunctionChunk builds a current segment running due east into a
// forward node, with one outgoing candidate ("Cross St") whose bearing away
// from the forward node is parameterized by crossingBearingAB.
func buildTJunctionChunk(crossingBearingAB int16) *chunk.Chunk {
	return &chunk.Chunk{
		OriginLat:  1.0,
		OriginLon:  103.0,
		Strings:    []string{"Main St", "Cross St"},
		Nodes: []chunk.Node{
			{LatE7: e7(1.0), LonE7: e7(103.0), EdgeStart: 0, EdgeCount: 0},
			{LatE7: e7(1.0), LonE7: e7(103.00045), EdgeStart: 0, EdgeCount: 2}, // forward node, ~50m east
			{LatE7: e7(0.9995), LonE7: e7(103.00045), EdgeStart: 0, EdgeCount: 0},
		},
		Segments: []chunk.Segment{
			{NameIndex: 0, NodeA: 0, NodeB: 1, BearingAB: 90, BearingBA: 270},
			{NameIndex: 1, NodeA: 1, NodeB: 2, BearingAB: crossingBearingAB, BearingBA: (crossingBearingAB + 180) % 360},
		},
		NodeEdges: []uint32{0, 1},
	}
}

// TestNextRejectsWideCrossing and TestNextAcceptsNarrowCrossing together
// cover scenario S4.
func TestNextRejectsWideCrossing(t *testing.T) {
	c := buildTJunctionChunk(90 + 85) // 85 degrees off the heading
	heading := 90.0
	m := match.Result{
		SegmentIndex: 0,
		Name:         "Main St",
		Snapped:      geo.LatLon{Lat: 1.0, Lon: 103.0},
	}
	if _, ok := Next(m, &heading, c, DefaultConfig()); ok {
		t.Fatal("expected wide crossing (85 deg) to be rejected under default tolerance")
	}
}

func TestNextAcceptsNarrowCrossing(t *testing.T) {
	c := buildTJunctionChunk(90 + 40) // 40 degrees off the heading
	heading := 90.0
	m := match.Result{
		SegmentIndex: 0,
		Name:         "Main St",
		Snapped:      geo.LatLon{Lat: 1.0, Lon: 103.0},
	}
	got, ok := Next(m, &heading, c, DefaultConfig())
	if !ok {
		t.Fatal("expected narrow crossing (40 deg) to be accepted")
	}
	if got.Name != "Cross St" {
		t.Errorf("got name %q, want Cross St", got.Name)
	}
	wantConfidence := 1 - 40.0/50.0
	if diff := got.Confidence - wantConfidence; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("confidence = %v, want %v", got.Confidence, wantConfidence)
	}
}

func TestNextRequiresHeading(t *testing.T) {
	c := buildTJunctionChunk(90 + 40)
	m := match.Result{SegmentIndex: 0, Name: "Main St", Snapped: geo.LatLon{Lat: 1.0, Lon: 103.0}}
	if _, ok := Next(m, nil, c, DefaultConfig()); ok {
		t.Fatal("expected no prediction without a heading")
	}
}

func TestNextSkipsSameNameContinuation(t *testing.T) {
	c := buildTJunctionChunk(90 + 40)
	c.Segments[1].NameIndex = 0 // same name as current ("Main St")
	heading := 90.0
	m := match.Result{SegmentIndex: 0, Name: "Main St", Snapped: geo.LatLon{Lat: 1.0, Lon: 103.0}}
	if _, ok := Next(m, &heading, c, DefaultConfig()); ok {
		t.Fatal("expected same-name continuation to be skipped")
	}
}

func TestSelectForwardNodeTieBreaksTowardB(t *testing.T) {
	// BearingAB and BearingBA are equally far (10 deg) from heading 90.
	seg := chunk.Segment{NodeA: 7, NodeB: 9, BearingAB: 80, BearingBA: 100}
	if got := selectForwardNode(90, seg); got != 9 {
		t.Errorf("equidistant bearings should bias toward nodeB, got node %d", got)
	}
}
