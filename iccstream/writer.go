package iccstream

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/conform/internal/bitio"
)

// WriteOptions controls how WriteICC lays out a profile.
type WriteOptions struct {
	// ChunkSize splits the payload into chunks of at most this many bytes.
	// Zero or negative writes a single chunk.
	ChunkSize int

	// Compress stores the payload as a zstd frame.
	Compress bool

	// Level is the zstd encoder level used when Compress is set. The zero
	// value selects zstd.SpeedDefault.
	Level zstd.EncoderLevel
}

// Writer accumulates a bitstream.
type Writer struct {
	bw *bitio.Writer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{bw: bitio.NewWriter(0)}
}

// WriteBits writes the low n (at most 32) bits of v.
func (w *Writer) WriteBits(v uint64, n int) { w.bw.WriteBits(v, n) }

// Bytes pads the stream to a byte boundary and returns it.
func (w *Writer) Bytes() []byte { return w.bw.Finish() }

// WriteICC writes profile in the shape ReadICC expects. An empty profile
// is written as a zero size.
func WriteICC(w *Writer, profile []byte, opts WriteOptions) error {
	bw := w.bw
	if len(profile) == 0 {
		bw.WriteU64(0)
		return nil
	}
	payload := profile
	if opts.Compress {
		level := opts.Level
		if level == 0 {
			level = zstd.SpeedDefault
		}
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("iccstream: zstd: %w", err)
		}
		payload = enc.EncodeAll(profile, nil)
		enc.Close()
	}

	bw.WriteU64(uint64(len(payload)))
	bw.WriteBool(opts.Compress)
	if opts.Compress {
		bw.WriteU64(uint64(len(profile)))
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = len(payload)
	}
	for off := 0; off < len(payload); off += chunk {
		end := min(off+chunk, len(payload))
		bw.WriteU64(uint64(end - off))
		bw.ZeroPadToByte()
		if err := bw.WriteBytes(payload[off:end]); err != nil {
			return fmt.Errorf("iccstream: %w", err)
		}
	}
	return nil
}
