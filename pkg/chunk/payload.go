package chunk

import (
	"bytes"
	"fmt"
	"io"

	"roadindex/pkg/rierr"
)

func encodePayload(c *Chunk) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(innerMagic)
	if err := writeU16(&buf, formatVersion); err != nil {
		return nil, err
	}
	if err := writeU16(&buf, 0); err != nil { // padding
		return nil, err
	}
	if err := writeF64(&buf, c.OriginLat); err != nil {
		return nil, err
	}
	if err := writeF64(&buf, c.OriginLon); err != nil {
		return nil, err
	}
	if err := writeF32(&buf, c.CellSizeM); err != nil {
		return nil, err
	}
	if err := writeU16(&buf, c.GridWidth); err != nil {
		return nil, err
	}
	if err := writeU16(&buf, c.GridHeight); err != nil {
		return nil, err
	}

	stringOffsets, stringData := buildStringTable(c.Strings)

	if err := writeU32(&buf, uint32(len(c.Strings))); err != nil {
		return nil, err
	}
	if err := writeU32(&buf, uint32(len(c.Nodes))); err != nil {
		return nil, err
	}
	if err := writeU32(&buf, uint32(len(c.Segments))); err != nil {
		return nil, err
	}
	if err := writeU32(&buf, uint32(len(c.Shapes))); err != nil {
		return nil, err
	}
	if err := writeU32(&buf, uint32(len(c.NodeEdges))); err != nil {
		return nil, err
	}
	if err := writeU32(&buf, uint32(len(c.CellEntries))); err != nil {
		return nil, err
	}
	if err := writeU32(&buf, uint32(len(c.CellSegments))); err != nil {
		return nil, err
	}
	if err := writeU32(&buf, uint32(len(stringData))); err != nil {
		return nil, err
	}

	if err := writeUint32Slice(&buf, stringOffsets); err != nil {
		return nil, err
	}
	buf.Write(stringData)

	for _, n := range c.Nodes {
		if err := writeI32(&buf, n.LatE7); err != nil {
			return nil, err
		}
		if err := writeI32(&buf, n.LonE7); err != nil {
			return nil, err
		}
		if err := writeU32(&buf, n.EdgeStart); err != nil {
			return nil, err
		}
		if err := writeU16(&buf, n.EdgeCount); err != nil {
			return nil, err
		}
		if err := writeU16(&buf, 0); err != nil { // pad
			return nil, err
		}
	}

	for _, s := range c.Segments {
		if err := writeU32(&buf, s.NameIndex); err != nil {
			return nil, err
		}
		if err := writeU32(&buf, s.NodeA); err != nil {
			return nil, err
		}
		if err := writeU32(&buf, s.NodeB); err != nil {
			return nil, err
		}
		if err := writeU32(&buf, s.ShapeStart); err != nil {
			return nil, err
		}
		if err := writeU16(&buf, s.ShapeCount); err != nil {
			return nil, err
		}
		if err := writeU16(&buf, s.Flags); err != nil {
			return nil, err
		}
		if err := writeI16(&buf, s.BearingAB); err != nil {
			return nil, err
		}
		if err := writeI16(&buf, s.BearingBA); err != nil {
			return nil, err
		}
	}

	for _, p := range c.Shapes {
		if err := writeI32(&buf, p.LatE7); err != nil {
			return nil, err
		}
		if err := writeI32(&buf, p.LonE7); err != nil {
			return nil, err
		}
	}

	if err := writeUint32Slice(&buf, c.NodeEdges); err != nil {
		return nil, err
	}

	for _, e := range c.CellEntries {
		if err := writeU32(&buf, e.CellID); err != nil {
			return nil, err
		}
		if err := writeU32(&buf, e.SegStart); err != nil {
			return nil, err
		}
		if err := writeU16(&buf, e.SegCount); err != nil {
			return nil, err
		}
		if err := writeU16(&buf, 0); err != nil { // pad
			return nil, err
		}
	}

	if err := writeUint32Slice(&buf, c.CellSegments); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodePayload(data []byte) (*Chunk, error) {
	r := bytes.NewReader(data)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated payload magic: %v", rierr.ErrInvalidHeader, err)
	}
	if string(magic[:]) != innerMagic {
		return nil, fmt.Errorf("%w: bad payload magic %q", rierr.ErrInvalidHeader, magic)
	}

	version, err := readU16(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated payload version: %v", rierr.ErrInvalidHeader, err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: payload version %d", rierr.ErrUnsupportedVersion, version)
	}
	if _, err := readU16(r); err != nil { // padding
		return nil, fmt.Errorf("%w: truncated padding: %v", rierr.ErrInvalidHeader, err)
	}

	c := &Chunk{}
	if c.OriginLat, err = readF64(r); err != nil {
		return nil, fmt.Errorf("%w: originLat: %v", rierr.ErrInvalidHeader, err)
	}
	if c.OriginLon, err = readF64(r); err != nil {
		return nil, fmt.Errorf("%w: originLon: %v", rierr.ErrInvalidHeader, err)
	}
	if c.CellSizeM, err = readF32(r); err != nil {
		return nil, fmt.Errorf("%w: cellSize: %v", rierr.ErrInvalidHeader, err)
	}
	if c.GridWidth, err = readU16(r); err != nil {
		return nil, fmt.Errorf("%w: gridWidth: %v", rierr.ErrInvalidHeader, err)
	}
	if c.GridHeight, err = readU16(r); err != nil {
		return nil, fmt.Errorf("%w: gridHeight: %v", rierr.ErrInvalidHeader, err)
	}
	if c.CellSizeM <= 0 || c.GridWidth == 0 || c.GridHeight == 0 {
		return nil, fmt.Errorf("%w: cellSize/grid dimensions must be positive", rierr.ErrInvalidHeader)
	}

	counts := make([]uint32, 7)
	for i := range counts {
		if counts[i], err = readU32(r); err != nil {
			return nil, fmt.Errorf("%w: truncated array count: %v", rierr.ErrInvalidHeader, err)
		}
	}
	stringsN, nodesN, segmentsN, shapesN, nodeEdgesN, cellEntriesN, cellSegmentsN := counts[0], counts[1], counts[2], counts[3], counts[4], counts[5], counts[6]

	stringBytes, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated stringBytes: %v", rierr.ErrInvalidHeader, err)
	}

	stringOffsets, err := readUint32Slice(r, int(stringsN)+1)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated stringOffsets: %v", rierr.ErrInvalidHeader, err)
	}
	for i := 1; i < len(stringOffsets); i++ {
		if stringOffsets[i] < stringOffsets[i-1] {
			return nil, fmt.Errorf("%w: stringOffsets not monotonic", rierr.ErrInvalidHeader)
		}
	}
	if len(stringOffsets) > 0 && stringOffsets[len(stringOffsets)-1] != stringBytes {
		return nil, fmt.Errorf("%w: stringOffsets last entry %d != stringBytes %d", rierr.ErrInvalidHeader, stringOffsets[len(stringOffsets)-1], stringBytes)
	}

	stringData := make([]byte, stringBytes)
	if _, err := io.ReadFull(r, stringData); err != nil {
		return nil, fmt.Errorf("%w: truncated stringData: %v", rierr.ErrInvalidHeader, err)
	}
	c.Strings = make([]string, stringsN)
	for i := uint32(0); i < stringsN; i++ {
		c.Strings[i] = string(stringData[stringOffsets[i]:stringOffsets[i+1]])
	}

	c.Nodes = make([]Node, nodesN)
	for i := range c.Nodes {
		var n Node
		if n.LatE7, err = readI32(r); err != nil {
			return nil, fmt.Errorf("%w: node %d latE7: %v", rierr.ErrInvalidHeader, i, err)
		}
		if n.LonE7, err = readI32(r); err != nil {
			return nil, fmt.Errorf("%w: node %d lonE7: %v", rierr.ErrInvalidHeader, i, err)
		}
		if n.EdgeStart, err = readU32(r); err != nil {
			return nil, fmt.Errorf("%w: node %d edgeStart: %v", rierr.ErrInvalidHeader, i, err)
		}
		if n.EdgeCount, err = readU16(r); err != nil {
			return nil, fmt.Errorf("%w: node %d edgeCount: %v", rierr.ErrInvalidHeader, i, err)
		}
		if _, err = readU16(r); err != nil { // pad
			return nil, fmt.Errorf("%w: node %d padding: %v", rierr.ErrInvalidHeader, i, err)
		}
		c.Nodes[i] = n
	}

	c.Segments = make([]Segment, segmentsN)
	for i := range c.Segments {
		var s Segment
		if s.NameIndex, err = readU32(r); err != nil {
			return nil, fmt.Errorf("%w: segment %d nameIdx: %v", rierr.ErrInvalidHeader, i, err)
		}
		if s.NodeA, err = readU32(r); err != nil {
			return nil, fmt.Errorf("%w: segment %d nodeA: %v", rierr.ErrInvalidHeader, i, err)
		}
		if s.NodeB, err = readU32(r); err != nil {
			return nil, fmt.Errorf("%w: segment %d nodeB: %v", rierr.ErrInvalidHeader, i, err)
		}
		if s.ShapeStart, err = readU32(r); err != nil {
			return nil, fmt.Errorf("%w: segment %d shapeStart: %v", rierr.ErrInvalidHeader, i, err)
		}
		if s.ShapeCount, err = readU16(r); err != nil {
			return nil, fmt.Errorf("%w: segment %d shapeCount: %v", rierr.ErrInvalidHeader, i, err)
		}
		if s.Flags, err = readU16(r); err != nil {
			return nil, fmt.Errorf("%w: segment %d flags: %v", rierr.ErrInvalidHeader, i, err)
		}
		if s.BearingAB, err = readI16(r); err != nil {
			return nil, fmt.Errorf("%w: segment %d bAB: %v", rierr.ErrInvalidHeader, i, err)
		}
		if s.BearingBA, err = readI16(r); err != nil {
			return nil, fmt.Errorf("%w: segment %d bBA: %v", rierr.ErrInvalidHeader, i, err)
		}
		if s.NodeA >= nodesN || s.NodeB >= nodesN {
			return nil, fmt.Errorf("%w: segment %d references out-of-range node", rierr.ErrInvalidHeader, i)
		}
		if s.ShapeCount > 0 && uint64(s.ShapeStart)+uint64(s.ShapeCount) > uint64(shapesN) {
			return nil, fmt.Errorf("%w: segment %d shape range out of range", rierr.ErrInvalidHeader, i)
		}
		c.Segments[i] = s
	}

	c.Shapes = make([]ShapePoint, shapesN)
	for i := range c.Shapes {
		var p ShapePoint
		if p.LatE7, err = readI32(r); err != nil {
			return nil, fmt.Errorf("%w: shape %d latE7: %v", rierr.ErrInvalidHeader, i, err)
		}
		if p.LonE7, err = readI32(r); err != nil {
			return nil, fmt.Errorf("%w: shape %d lonE7: %v", rierr.ErrInvalidHeader, i, err)
		}
		c.Shapes[i] = p
	}

	if c.NodeEdges, err = readUint32Slice(r, int(nodeEdgesN)); err != nil {
		return nil, fmt.Errorf("%w: truncated nodeEdges: %v", rierr.ErrInvalidHeader, err)
	}
	for i, seg := range c.NodeEdges {
		if seg >= segmentsN {
			return nil, fmt.Errorf("%w: nodeEdges[%d]=%d references out-of-range segment", rierr.ErrInvalidHeader, i, seg)
		}
	}
	for i, n := range c.Nodes {
		if uint64(n.EdgeStart)+uint64(n.EdgeCount) > uint64(nodeEdgesN) {
			return nil, fmt.Errorf("%w: node %d edge range out of range", rierr.ErrInvalidHeader, i)
		}
	}

	c.CellEntries = make([]CellEntry, cellEntriesN)
	var prevCellID uint32
	for i := range c.CellEntries {
		var e CellEntry
		if e.CellID, err = readU32(r); err != nil {
			return nil, fmt.Errorf("%w: cellEntry %d cellId: %v", rierr.ErrInvalidHeader, i, err)
		}
		if e.SegStart, err = readU32(r); err != nil {
			return nil, fmt.Errorf("%w: cellEntry %d segStart: %v", rierr.ErrInvalidHeader, i, err)
		}
		if e.SegCount, err = readU16(r); err != nil {
			return nil, fmt.Errorf("%w: cellEntry %d segCount: %v", rierr.ErrInvalidHeader, i, err)
		}
		if _, err = readU16(r); err != nil { // pad
			return nil, fmt.Errorf("%w: cellEntry %d padding: %v", rierr.ErrInvalidHeader, i, err)
		}
		if i > 0 && e.CellID < prevCellID {
			return nil, fmt.Errorf("%w: cellEntries not sorted ascending by cellId", rierr.ErrInvalidHeader)
		}
		prevCellID = e.CellID
		if uint64(e.SegStart)+uint64(e.SegCount) > uint64(cellSegmentsN) {
			return nil, fmt.Errorf("%w: cellEntry %d segment range out of range", rierr.ErrInvalidHeader, i)
		}
		c.CellEntries[i] = e
	}

	if c.CellSegments, err = readUint32Slice(r, int(cellSegmentsN)); err != nil {
		return nil, fmt.Errorf("%w: truncated cellSegments: %v", rierr.ErrInvalidHeader, err)
	}
	for i, seg := range c.CellSegments {
		if seg >= segmentsN {
			return nil, fmt.Errorf("%w: cellSegments[%d]=%d references out-of-range segment", rierr.ErrInvalidHeader, i, seg)
		}
	}

	return c, nil
}

// buildStringTable packs strs into a monotonic offset table and a flat byte
// blob, per the payload's stringOffsets/stringData layout.
func buildStringTable(strs []string) (offsets []uint32, data []byte) {
	offsets = make([]uint32, len(strs)+1)
	var buf bytes.Buffer
	for i, s := range strs {
		buf.WriteString(s)
		offsets[i+1] = uint32(buf.Len())
	}
	return offsets, buf.Bytes()
}
