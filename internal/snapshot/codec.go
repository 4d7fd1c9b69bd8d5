package snapshot

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/ironsheep/image-patterns-mcp/internal/levels"
)

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zstdEncPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder()
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}

// encodeLevels packs the matrix row-major as uvarints holding level+1, with
// 0 for unset cells, and compresses the result.
func encodeLevels(m *levels.Matrix) []byte {
	raw := make([]byte, 0, m.Width()*m.Height())
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			v, ok := m.At(x, y)
			if !ok {
				raw = binary.AppendUvarint(raw, 0)
				continue
			}
			raw = binary.AppendUvarint(raw, v+1)
		}
	}

	enc := zstdEncPool.Get().(*zstd.Encoder)
	out := enc.EncodeAll(raw, nil)
	zstdEncPool.Put(enc)
	return out
}

func decodeLevels(data []byte, width, height int) (*levels.Matrix, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	raw, err := dec.DecodeAll(data, nil)
	zstdDecPool.Put(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress levels: %w", err)
	}

	m := levels.NewMatrix(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v, n := binary.Uvarint(raw)
			if n <= 0 {
				return nil, fmt.Errorf("decode levels: truncated at (%d,%d)", x, y)
			}
			raw = raw[n:]
			if v > 0 {
				m.Set(x, y, v-1)
			}
		}
	}
	if len(raw) != 0 {
		return nil, fmt.Errorf("decode levels: %d trailing bytes", len(raw))
	}
	return m, nil
}
