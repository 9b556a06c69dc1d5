package chunk

import (
	"bytes"
	"fmt"
	"io"

	"github.com/DataDog/czlib"

	"roadindex/pkg/rierr"
)

const (
	outerMagic   = "IARC"
	innerMagic   = "IAR1"
	formatVersion = uint16(1)
)

// Compression codepoints for the outer container. Codepoint 1 is reserved
// by spec for LZFSE and must never be silently reinterpreted — this port
// has no portable LZFSE decoder, so it returns ErrUnsupportedVersion naming
// LZFSE explicitly. Codepoint 2 (zlib, via czlib) is this port's own
// compressor and is what Encode produces when asked to compress.
const (
	CompressionNone       uint16 = 0
	CompressionLZFSE      uint16 = 1 // reserved, unsupported in this port
	CompressionZlib       uint16 = 2
)

// Decode parses the outer container, optionally decompresses the payload,
// then parses the inner payload into a Chunk.
func Decode(data []byte) (*Chunk, error) {
	r := bytes.NewReader(data)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated outer header: %v", rierr.ErrInvalidHeader, err)
	}
	if string(magic[:]) != outerMagic {
		return nil, fmt.Errorf("%w: bad outer magic %q", rierr.ErrInvalidHeader, magic)
	}

	version, err := readU16(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated version: %v", rierr.ErrInvalidHeader, err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: container version %d", rierr.ErrUnsupportedVersion, version)
	}

	compression, err := readU16(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated compression code: %v", rierr.ErrInvalidHeader, err)
	}

	uncompSize, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated uncompressed size: %v", rierr.ErrInvalidHeader, err)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading payload: %v", rierr.ErrInvalidHeader, err)
	}

	switch compression {
	case CompressionNone:
		// payload is already the inner frame.
	case CompressionLZFSE:
		return nil, fmt.Errorf("%w: LZFSE compression (codepoint 1) is not supported by this port", rierr.ErrUnsupportedVersion)
	case CompressionZlib:
		payload, err = decompressZlib(payload, int(uncompSize))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: compression codepoint %d", rierr.ErrUnsupportedVersion, compression)
	}

	if compression != CompressionNone && uint32(len(payload)) != uncompSize {
		return nil, fmt.Errorf("%w: decompressed %d bytes, header declared %d", rierr.ErrDecompressionFailed, len(payload), uncompSize)
	}

	return decodePayload(payload)
}

// Encode serializes a Chunk into the outer container with the requested
// compression codepoint. CompressionLZFSE is rejected: this port never
// silently reinterprets codepoint 1.
func Encode(c *Chunk, compression uint16) ([]byte, error) {
	payload, err := encodePayload(c)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(outerMagic)
	if err := writeU16(&buf, formatVersion); err != nil {
		return nil, err
	}
	if err := writeU16(&buf, compression); err != nil {
		return nil, err
	}
	if err := writeU32(&buf, uint32(len(payload))); err != nil {
		return nil, err
	}

	switch compression {
	case CompressionNone:
		buf.Write(payload)
	case CompressionLZFSE:
		return nil, fmt.Errorf("%w: cannot encode with LZFSE (codepoint 1); this port only writes raw or zlib", rierr.ErrUnsupportedVersion)
	case CompressionZlib:
		compressed, err := compressZlib(payload)
		if err != nil {
			return nil, err
		}
		buf.Write(compressed)
	default:
		return nil, fmt.Errorf("%w: compression codepoint %d", rierr.ErrUnsupportedVersion, compression)
	}

	return buf.Bytes(), nil
}

func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := czlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress close: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressZlib(data []byte, uncompSize int) ([]byte, error) {
	r, err := czlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib reader: %v", rierr.ErrDecompressionFailed, err)
	}
	defer r.Close()

	out := make([]byte, 0, uncompSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("%w: zlib inflate: %v", rierr.ErrDecompressionFailed, err)
	}
	if buf.Len() == 0 && uncompSize != 0 {
		return nil, fmt.Errorf("%w: zlib decoder produced 0 bytes", rierr.ErrDecompressionFailed)
	}
	return buf.Bytes(), nil
}
