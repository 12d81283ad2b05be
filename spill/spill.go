// Package spill implements the block codec used when partitions are
// persisted outside plain memory: encoded partition bytes are framed with a
// self-describing header and optionally compressed with LZ4 (fast, hot
// data) or ZSTD (better ratio, cold data).
package spill

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression algorithm.
type Compression uint8

const (
	// None stores blocks uncompressed.
	None Compression = 0
	// LZ4 uses LZ4 block compression.
	LZ4 Compression = 1
	// ZSTD uses ZSTD block compression.
	ZSTD Compression = 2
)

// String returns the lowercase algorithm name.
func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// Block header: [Compression: 1 byte][UncompressedSize: 4 bytes]
// [CompressedSize: 4 bytes][Data...]. CompressedSize == 0 means the data is
// stored uncompressed (incompressible input falls back without error).
const headerSize = 9

// ErrCorruptBlock indicates a block whose header or payload cannot be
// decoded.
var ErrCorruptBlock = errors.New("spill: corrupt block")

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode frames data as a self-describing block, compressing with the given
// algorithm. If compression does not shrink the payload below 90% of its
// size, the block is stored uncompressed.
func Encode(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	var err error

	switch c {
	case None:
	case LZ4:
		compressed, err = encodeLZ4(data)
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("spill: unknown compression %d", c)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, headerSize+len(data))
		writeHeader(out, c, len(data), 0)
		copy(out[headerSize:], data)
		return out, nil
	}

	out := make([]byte, headerSize+len(compressed))
	writeHeader(out, c, len(data), len(compressed))
	copy(out[headerSize:], compressed)
	return out, nil
}

// Decode reverses Encode.
func Decode(block []byte) ([]byte, error) {
	if len(block) < headerSize {
		return nil, ErrCorruptBlock
	}
	c := Compression(block[0])
	uncompressedSize := binary.LittleEndian.Uint32(block[1:5])
	compressedSize := binary.LittleEndian.Uint32(block[5:9])
	payload := block[headerSize:]

	if compressedSize == 0 {
		if uint32(len(payload)) != uncompressedSize {
			return nil, ErrCorruptBlock
		}
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	}
	if uint32(len(payload)) != compressedSize {
		return nil, ErrCorruptBlock
	}

	switch c {
	case LZ4:
		out := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil || uint32(n) != uncompressedSize {
			return nil, ErrCorruptBlock
		}
		return out, nil
	case ZSTD:
		dec := getZstdDecoder()
		out, err := dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, ErrCorruptBlock
		}
		return out, nil
	default:
		return nil, ErrCorruptBlock
	}
}

func writeHeader(dst []byte, c Compression, uncompressed, compressed int) {
	dst[0] = byte(c)
	binary.LittleEndian.PutUint32(dst[1:5], uint32(uncompressed))
	binary.LittleEndian.PutUint32(dst[5:9], uint32(compressed))
}

func encodeLZ4(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	bound := lz4.CompressBlockBound(len(data))
	dst := make([]byte, bound)
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return dst[:n], nil
}
