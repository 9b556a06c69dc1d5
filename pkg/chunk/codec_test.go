package chunk

import (
	"errors"
	"testing"

	"roadindex/pkg/rierr"
)

func sampleChunk() *Chunk {
	return &Chunk{
		OriginLat:  1.35,
		OriginLon:  103.8,
		CellSizeM:  50,
		GridWidth:  4,
		GridHeight: 4,
		Strings:    []string{"Orchard Road", "Scotts Road"},
		Nodes: []Node{
			{LatE7: 13500000, LonE7: 1038000000, EdgeStart: 0, EdgeCount: 1},
			{LatE7: 13501000, LonE7: 1038010000, EdgeStart: 1, EdgeCount: 1},
		},
		Segments: []Segment{
			{NameIndex: 0, NodeA: 0, NodeB: 1, ShapeCount: 0, Flags: FlagOneway | (1 << 15), BearingAB: 45, BearingBA: 225},
		},
		NodeEdges:   []uint32{0, 0},
		CellEntries: []CellEntry{{CellID: 1, SegStart: 0, SegCount: 1}, {CellID: 5, SegStart: 1, SegCount: 0}},
		CellSegments: []uint32{0},
	}
}

// TestCodecRoundTrip covers testable property 4: encode then decode yields
// a structurally equal chunk, with unknown flag bits preserved.
func TestCodecRoundTrip(t *testing.T) {
	original := sampleChunk()

	data, err := Encode(original, CompressionNone)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.OriginLat != original.OriginLat || got.OriginLon != original.OriginLon {
		t.Errorf("origin mismatch: got (%v,%v) want (%v,%v)", got.OriginLat, got.OriginLon, original.OriginLat, original.OriginLon)
	}
	if len(got.Strings) != len(original.Strings) || got.Strings[0] != original.Strings[0] {
		t.Errorf("strings mismatch: %v vs %v", got.Strings, original.Strings)
	}
	if got.Segments[0].Flags != original.Segments[0].Flags {
		t.Errorf("flags not preserved: got %016b want %016b", got.Segments[0].Flags, original.Segments[0].Flags)
	}
	if !got.Segments[0].IsOneway() {
		t.Errorf("expected oneway flag to survive round trip")
	}
	if got.CellEntries[1].SegCount != 0 {
		t.Errorf("expected empty cell entry to round-trip as zero count")
	}
}

func TestCodecRoundTripZlib(t *testing.T) {
	original := sampleChunk()
	data, err := Encode(original, CompressionZlib)
	if err != nil {
		t.Fatalf("Encode zlib: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode zlib: %v", err)
	}
	if len(got.Segments) != len(original.Segments) {
		t.Fatalf("segment count mismatch after zlib round trip")
	}
}

func TestCodecRejectsLZFSEExplicitly(t *testing.T) {
	original := sampleChunk()
	if _, err := Encode(original, CompressionLZFSE); !errors.Is(err, rierr.ErrUnsupportedVersion) {
		t.Fatalf("Encode with LZFSE = %v, want ErrUnsupportedVersion", err)
	}

	// A container claiming LZFSE must be rejected, not silently treated as raw.
	data, _ := Encode(original, CompressionNone)
	data[6] = 1 // compression field low byte (offset 6: after 4-byte magic + u16 version) -> 1 (LZFSE)
	if _, err := Decode(data); !errors.Is(err, rierr.ErrUnsupportedVersion) {
		t.Fatalf("Decode with LZFSE codepoint = %v, want ErrUnsupportedVersion", err)
	}
}

func TestCodecInvalidMagic(t *testing.T) {
	data, _ := Encode(sampleChunk(), CompressionNone)
	data[0] = 'X'
	if _, err := Decode(data); !errors.Is(err, rierr.ErrInvalidHeader) {
		t.Fatalf("Decode with bad magic = %v, want ErrInvalidHeader", err)
	}
}

func TestCodecTruncated(t *testing.T) {
	data, _ := Encode(sampleChunk(), CompressionNone)
	if _, err := Decode(data[:6]); !errors.Is(err, rierr.ErrInvalidHeader) {
		t.Fatalf("Decode truncated = %v, want ErrInvalidHeader", err)
	}
}

func TestCodecOutOfRangeNodeIndex(t *testing.T) {
	c := sampleChunk()
	c.Segments[0].NodeA = 99
	data, err := Encode(c, CompressionNone)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(data); !errors.Is(err, rierr.ErrInvalidHeader) {
		t.Fatalf("Decode with bad node index = %v, want ErrInvalidHeader", err)
	}
}

func TestCodecOutOfRangeStringIndexYieldsEmpty(t *testing.T) {
	c := sampleChunk()
	c.Segments[0].NameIndex = 99
	data, err := Encode(c, CompressionNone)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s := got.String(got.Segments[0].NameIndex); s != "" {
		t.Errorf("String(out of range) = %q, want empty", s)
	}
}
