package main

import (
	"flag"
	"log"
	"os"

	"roadindex/pkg/chunk"
	"roadindex/pkg/grid"
)

// chunkgen assembles a single synthetic chunk container for local testing
// and demos — a tiny three-segment, two-road T-junction sitting in a 1x1
// grid — in the
// absence of a real OSM-to-chunk offline pipeline (out of scope; see
// non-goals). The output is a ready-to-serve .iarc file consumable by the
// demo server's fetcher or dropped straight into a cache directory.
func main() {
	output := flag.String("output", "chunk.iarc", "Output .iarc file path")
	originLat := flag.Float64("origin-lat", 1.3521, "Chunk grid origin latitude")
	originLon := flag.Float64("origin-lon", 103.8198, "Chunk grid origin longitude")
	cellSize := flag.Float64("cell-size", 200, "Grid cell size in meters")
	compression := flag.Uint("compression", uint(chunk.CompressionZlib), "Compression codepoint: 0=raw, 2=zlib")
	flag.Parse()

	log.Println("Building synthetic chunk...")
	c := buildSyntheticChunk(*originLat, *originLon, float32(*cellSize))
	log.Printf("Chunk: %d nodes, %d segments, %d cell entries", len(c.Nodes), len(c.Segments), len(c.CellEntries))

	data, err := chunk.Encode(c, uint16(*compression))
	if err != nil {
		log.Fatalf("Failed to encode chunk: %v", err)
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}
	log.Printf("Wrote %s (%d bytes)", *output, len(data))
}

// buildSyntheticChunk lays out a 1x1 grid holding a two-road T-junction:
// "Main St" running east-west through node 1, and "Cross St" branching
// south from node 1.
func buildSyntheticChunk(originLat, originLon float64, cellSize float32) *chunk.Chunk {
	c := &chunk.Chunk{
		OriginLat:  originLat,
		OriginLon:  originLon,
		CellSizeM:  cellSize,
		GridWidth:  1,
		GridHeight: 1,
		Strings:    []string{"Main St", "Cross St"},
		Nodes: []chunk.Node{
			{LatE7: toE7(originLat), LonE7: toE7(originLon - 0.001), EdgeStart: 0, EdgeCount: 0},
			{LatE7: toE7(originLat), LonE7: toE7(originLon), EdgeStart: 0, EdgeCount: 3},
			{LatE7: toE7(originLat), LonE7: toE7(originLon + 0.001), EdgeStart: 0, EdgeCount: 0},
			{LatE7: toE7(originLat - 0.001), LonE7: toE7(originLon), EdgeStart: 0, EdgeCount: 0},
		},
		Segments: []chunk.Segment{
			{NameIndex: 0, NodeA: 0, NodeB: 1, BearingAB: 90, BearingBA: 270},
			{NameIndex: 0, NodeA: 1, NodeB: 2, BearingAB: 90, BearingBA: 270},
			{NameIndex: 1, NodeA: 1, NodeB: 3, BearingAB: 180, BearingBA: 0},
		},
		NodeEdges: []uint32{0, 1, 2},
	}

	cellID := grid.PackCellID(0, 0)
	c.CellEntries = []chunk.CellEntry{{CellID: cellID, SegStart: 0, SegCount: uint16(len(c.Segments))}}
	c.CellSegments = []uint32{0, 1, 2}
	return c
}

func toE7(v float64) int32 { return int32(v * 1e7) }
