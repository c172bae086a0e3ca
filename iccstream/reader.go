// Package iccstream reads and writes ICC profiles embedded in a bitstream
// as a length-prefixed, possibly chunked and zstd-compressed blob.
//
// Wire shape (LSB-first bit packing):
//
//	U64  encoded size (0: no profile, synthesize one from the color encoding)
//	Bool compressed
//	U64  decoded size            (only if compressed)
//	repeated until the encoded size is reached:
//	  U64  chunk length (> 0)
//	  zero padding to a byte boundary
//	  chunk bytes
//
// A compressed payload is a single zstd frame.
package iccstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/conform/internal/bitio"
	"github.com/deepteams/conform/internal/pool"
)

// Errors returned by ReadICC.
var (
	ErrSizeLimitExceeded = errors.New("iccstream: profile exceeds output limit")
	ErrMalformedProfile  = errors.New("iccstream: malformed profile stream")
)

// maxPrealloc bounds the decoded buffer allocated up front for compressed
// profiles; larger profiles grow as they decode.
const maxPrealloc = 1 << 20

// Reader is a bit reader over an in-memory stream. It is not safe for
// concurrent use.
type Reader struct {
	br *bitio.Reader
}

// NewReader returns a Reader positioned at the first bit of data.
func NewReader(data []byte) *Reader {
	return &Reader{br: bitio.NewReader(data)}
}

// ReadBits reads n (at most 32) bits. Reading past the end yields zeros.
func (r *Reader) ReadBits(n int) uint64 { return r.br.ReadBits(n) }

// RemainingBytes returns the number of whole unread bytes.
func (r *Reader) RemainingBytes() int { return r.br.RemainingBytes() }

// BitsConsumed returns the number of bits read so far.
func (r *Reader) BitsConsumed() int64 { return r.br.BitsConsumed() }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedProfile}, args...)...)
}

// ReadICC reads one embedded profile into *icc, which is truncated first
// and never appended to. An empty result means no profile was embedded.
// A non-zero outputLimit bounds the profile length; on any error the
// contents of *icc are unspecified.
func ReadICC(r *Reader, icc *[]byte, outputLimit uint64) error {
	*icc = (*icc)[:0]
	br := r.br

	encSize := br.ReadU64()
	if br.IsEndOfStream() {
		return malformed("truncated size field")
	}
	if encSize == 0 {
		return nil
	}
	compressed := br.ReadBool()
	decSize := encSize
	if compressed {
		decSize = br.ReadU64()
		if decSize == 0 {
			return malformed("zero decoded size")
		}
	}
	if br.IsEndOfStream() {
		return malformed("truncated header")
	}
	// The declared size bounds every chunk and the decoder below, so this is
	// the only limit check and it runs before any payload is read.
	if outputLimit != 0 && decSize > outputLimit {
		return fmt.Errorf("%w: declared %d bytes, limit %d", ErrSizeLimitExceeded, decSize, outputLimit)
	}
	if encSize > uint64(br.RemainingBytes()) {
		return malformed("declared %d bytes, %d remain", encSize, br.RemainingBytes())
	}

	var payload []byte
	if compressed {
		payload = pool.Get(int(encSize))[:0]
		defer pool.Put(payload)
	} else {
		payload = (*icc)[:0]
		if uint64(cap(payload)) < encSize {
			payload = make([]byte, 0, encSize)
		}
	}

	var total uint64
	for total < encSize {
		n := br.ReadU64()
		if br.IsEndOfStream() {
			return malformed("truncated chunk header at %d of %d bytes", total, encSize)
		}
		if n == 0 {
			return malformed("zero-length chunk")
		}
		if n > encSize-total {
			return malformed("chunk of %d bytes overshoots %d remaining", n, encSize-total)
		}
		if err := br.ByteAlign(); err != nil {
			return malformed("chunk alignment: %v", err)
		}
		if n > uint64(br.RemainingBytes()) {
			return malformed("chunk of %d bytes, %d remain", n, br.RemainingBytes())
		}
		start := len(payload)
		payload = payload[:start+int(n)]
		if err := br.ReadBytes(payload[start:]); err != nil {
			return malformed("chunk data: %v", err)
		}
		total += n
	}

	if !compressed {
		*icc = payload
		return nil
	}
	if decSize >= math.MaxInt64 {
		return malformed("decoded size %d out of range", decSize)
	}
	out, err := decompress(payload, decSize, (*icc)[:0])
	if err != nil {
		return err
	}
	*icc = out
	return nil
}

// decompress decodes a zstd frame that must produce exactly size bytes.
func decompress(payload []byte, size uint64, dst []byte) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(payload), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, malformed("zstd: %v", err)
	}
	defer zr.Close()

	buf := bytes.NewBuffer(dst)
	buf.Grow(int(min(size, maxPrealloc)))
	n, err := io.Copy(buf, io.LimitReader(zr, int64(size)+1))
	if err != nil {
		return nil, malformed("zstd: %v", err)
	}
	if uint64(n) != size {
		return nil, malformed("decoded %d bytes, declared %d", n, size)
	}
	return buf.Bytes(), nil
}
