// Package chunk implements the binary chunk codec: the framed container plus
// typed payload that holds one precompiled road-network slice for a single
// (region, chunkZoom, tile). See spec §4.C for the wire format.
package chunk

import "roadindex/pkg/geo"

// Segment flag bits. Remaining bits are reserved and must round-trip
// unchanged.
const (
	FlagOneway     uint16 = 1 << 0
	FlagLink       uint16 = 1 << 1
	FlagRoundabout uint16 = 1 << 2
)

// Node is a fixed-point graph vertex plus its range into the chunk's
// nodeEdges array.
type Node struct {
	LatE7     int32
	LonE7     int32
	EdgeStart uint32
	EdgeCount uint16
}

// LatLon decodes the node's fixed-point coordinate.
func (n Node) LatLon() geo.LatLon {
	return geo.LatLon{Lat: float64(n.LatE7) / 1e7, Lon: float64(n.LonE7) / 1e7}
}

// Segment is a road segment referencing two nodes and an optional shape
// polyline, with precomputed endpoint bearings.
type Segment struct {
	NameIndex  uint32
	NodeA      uint32
	NodeB      uint32
	ShapeStart uint32
	ShapeCount uint16
	Flags      uint16
	BearingAB  int16 // bearing traveling nodeA -> nodeB, degrees [0,360)
	BearingBA  int16 // bearing traveling nodeB -> nodeA, degrees [0,360)
}

func (s Segment) IsOneway() bool     { return s.Flags&FlagOneway != 0 }
func (s Segment) IsLink() bool       { return s.Flags&FlagLink != 0 }
func (s Segment) IsRoundabout() bool { return s.Flags&FlagRoundabout != 0 }

// ShapePoint is a fixed-point intermediate shape vertex.
type ShapePoint struct {
	LatE7 int32
	LonE7 int32
}

func (p ShapePoint) LatLon() geo.LatLon {
	return geo.LatLon{Lat: float64(p.LatE7) / 1e7, Lon: float64(p.LonE7) / 1e7}
}

// CellEntry maps a packed grid cell id to its window into CellSegments.
// CellEntries is sorted ascending by CellID.
type CellEntry struct {
	CellID   uint32
	SegStart uint32
	SegCount uint16
}

// Chunk is a precompiled, self-describing road network for one
// (region, chunkZoom, tile). All internal references are dense integer
// indices into its parallel arrays; a Chunk is an immutable arena once
// decoded.
type Chunk struct {
	OriginLat     float64
	OriginLon     float64
	CellSizeM     float32
	GridWidth     uint16
	GridHeight    uint16
	Strings       []string
	Nodes         []Node
	Segments      []Segment
	Shapes        []ShapePoint
	NodeEdges     []uint32
	CellEntries   []CellEntry
	CellSegments  []uint32
}

// String returns the string at index i, or "" if i is out of range.
func (c *Chunk) String(i uint32) string {
	if int(i) >= len(c.Strings) {
		return ""
	}
	return c.Strings[i]
}

// SegmentPolyline returns the segment's polyline: its shape points if it has
// any, otherwise the two-point [nodeA, nodeB] polyline.
func (c *Chunk) SegmentPolyline(segIdx int) []geo.LatLon {
	s := c.Segments[segIdx]
	if s.ShapeCount > 0 {
		out := make([]geo.LatLon, s.ShapeCount)
		for i := uint16(0); i < s.ShapeCount; i++ {
			out[i] = c.Shapes[s.ShapeStart+uint32(i)].LatLon()
		}
		return out
	}
	return []geo.LatLon{c.Nodes[s.NodeA].LatLon(), c.Nodes[s.NodeB].LatLon()}
}
