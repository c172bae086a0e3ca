package bitio

// Writer is the counterpart of Reader: it accumulates LSB-first bit fields
// in a 64-bit register and flushes whole bytes to an internal buffer.
type Writer struct {
	bits uint64 // bit accumulator
	used int    // number of bits used in accumulator
	buf  []byte
}

// NewWriter creates a Writer with room for expectedSize bytes.
func NewWriter(expectedSize int) *Writer {
	if expectedSize < 64 {
		expectedSize = 64
	}
	return &Writer{buf: make([]byte, 0, expectedSize)}
}

// WriteBits writes the low nBits (0..MaxBits) of v.
func (bw *Writer) WriteBits(v uint64, nBits int) {
	if nBits <= 0 {
		return
	}
	if nBits > MaxBits {
		panic("bitio: WriteBits width out of range")
	}
	bw.bits |= (v & (uint64(1)<<uint(nBits) - 1)) << uint(bw.used)
	bw.used += nBits
	bw.flushBytes()
}

// WriteBool writes a single bit.
func (bw *Writer) WriteBool(b bool) {
	if b {
		bw.WriteBits(1, 1)
	} else {
		bw.WriteBits(0, 1)
	}
}

// flushBytes moves every complete byte of the accumulator to buf.
func (bw *Writer) flushBytes() {
	for bw.used >= 8 {
		bw.buf = append(bw.buf, byte(bw.bits))
		bw.bits >>= 8
		bw.used -= 8
	}
}

// ZeroPadToByte writes zero bits up to the next byte boundary.
func (bw *Writer) ZeroPadToByte() {
	if r := bw.used % 8; r != 0 {
		bw.WriteBits(0, 8-r)
	}
}

// WriteBytes appends raw bytes. The writer must be on a byte boundary.
func (bw *Writer) WriteBytes(p []byte) error {
	if bw.used != 0 {
		return ErrUnaligned
	}
	bw.buf = append(bw.buf, p...)
	return nil
}

// Finish pads the final partial byte with zeros and returns the encoded
// bytes.
func (bw *Writer) Finish() []byte {
	bw.ZeroPadToByte()
	return bw.buf
}

// NumBytes returns the number of encoded bytes, including any partial
// byte in the accumulator.
func (bw *Writer) NumBytes() int {
	return len(bw.buf) + (bw.used+7)/8
}
