package bitio

import (
	"errors"
	"io"
)

// MaxBits is the largest field width accepted by Reader.ReadBits and
// Writer.WriteBits.
const MaxBits = 32

// refillLimit is the fill level above which no further byte fits into val.
const refillLimit = 64 - 8

var (
	// ErrUnaligned is returned when a byte-level operation is attempted on
	// a stream that is not positioned on a byte boundary.
	ErrUnaligned = errors.New("bitio: not at a byte boundary")
	// ErrNonZeroPadding is returned when the bits skipped by ByteAlign are
	// not all zero.
	ErrNonZeroPadding = errors.New("bitio: non-zero padding bits")
)

// Reader reads LSB-first bit fields from a byte slice.
//
// Bits are packed in little-endian order: the first field occupies the
// lowest bits of the first byte. A 64-bit register (val) caches look-ahead
// bits and is refilled one byte at a time.
type Reader struct {
	buf      []byte
	pos      int    // next byte of buf to load into val
	val      uint64 // pre-fetched bits, next bit in the LSB
	nbits    int    // number of valid bits in val
	consumed int64  // total number of bits handed out
	eos      bool
}

// NewReader creates a Reader over data. The slice is not copied.
func NewReader(data []byte) *Reader {
	br := &Reader{buf: data}
	br.fill()
	return br
}

func (br *Reader) fill() {
	for br.nbits <= refillLimit && br.pos < len(br.buf) {
		br.val |= uint64(br.buf[br.pos]) << uint(br.nbits)
		br.pos++
		br.nbits += 8
	}
}

// ReadBits reads nBits (0..MaxBits) and returns them right-aligned. If the
// request is out of range or the stream runs dry, zero is returned and the
// end-of-stream flag is set.
func (br *Reader) ReadBits(nBits int) uint64 {
	if br.eos || nBits < 0 || nBits > MaxBits {
		br.setEndOfStream()
		return 0
	}
	if br.nbits < nBits {
		br.fill()
		if br.nbits < nBits {
			br.setEndOfStream()
			return 0
		}
	}
	v := br.val & (uint64(1)<<uint(nBits) - 1)
	br.val >>= uint(nBits)
	br.nbits -= nBits
	br.consumed += int64(nBits)
	return v
}

// ReadBool reads a single bit.
func (br *Reader) ReadBool() bool {
	return br.ReadBits(1) == 1
}

// ByteAlign skips to the next byte boundary. The skipped bits must be zero.
func (br *Reader) ByteAlign() error {
	pad := int((8 - br.consumed%8) % 8)
	if br.ReadBits(pad) != 0 {
		return ErrNonZeroPadding
	}
	if br.eos {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// ReadBytes fills dst with the next len(dst) bytes. The reader must be on a
// byte boundary.
func (br *Reader) ReadBytes(dst []byte) error {
	if br.consumed%8 != 0 {
		return ErrUnaligned
	}
	i := 0
	for i < len(dst) && br.nbits >= 8 {
		dst[i] = byte(br.val)
		br.val >>= 8
		br.nbits -= 8
		i++
	}
	n := copy(dst[i:], br.buf[br.pos:])
	br.pos += n
	i += n
	br.consumed += int64(i) * 8
	if i < len(dst) {
		br.setEndOfStream()
		return io.ErrUnexpectedEOF
	}
	br.fill()
	return nil
}

// RemainingBytes returns the number of whole bytes that can still be read.
func (br *Reader) RemainingBytes() int {
	if br.eos {
		return 0
	}
	return (br.nbits + 8*(len(br.buf)-br.pos)) / 8
}

// BitsConsumed returns the number of bits read so far.
func (br *Reader) BitsConsumed() int64 {
	return br.consumed
}

// IsEndOfStream reports whether a read past the end of the data was
// attempted.
func (br *Reader) IsEndOfStream() bool {
	return br.eos
}

func (br *Reader) setEndOfStream() {
	br.eos = true
	br.val = 0
	br.nbits = 0
}
