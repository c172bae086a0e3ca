package conform

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

type canonicalizeConfig struct {
	scale    float64
	hasScale bool
}

// CanonicalizeOption configures Canonicalize.
type CanonicalizeOption func(*canonicalizeConfig)

// WithScale multiplies every sample by s. Without it integer samples are
// divided by their full-scale value and float samples pass through. A zero
// scale is honored.
func WithScale(s float64) CanonicalizeOption {
	return func(c *canonicalizeConfig) {
		c.scale = s
		c.hasScale = true
	}
}

// Stride returns the number of bytes between the starts of two rows, or -1
// when the row length does not fit in an int.
func Stride(width int, format PixelFormat) int {
	stride, _, ok := layout(width, 1, format)
	if !ok {
		return -1
	}
	return stride
}

// BufferSize returns the minimum buffer length for a width x height image:
// the last row needs no trailing padding. It returns -1 when the size does
// not fit in an int.
func BufferSize(width, height int, format PixelFormat) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	_, size, ok := layout(width, height, format)
	if !ok {
		return -1
	}
	return size
}

// layout returns the row stride and minimum buffer length of a
// non-negative width x height image, or false on int overflow.
func layout(width, height int, format PixelFormat) (stride, size int, ok bool) {
	row, ok := mulInt(width, format.BytesPerPixel())
	if !ok {
		return 0, 0, false
	}
	stride = row
	if a := format.Align; a > 1 {
		if row > math.MaxInt-(a-1) {
			return 0, 0, false
		}
		stride = (row + a - 1) / a * a
	}
	if width == 0 || height == 0 {
		return stride, 0, true
	}
	pad, ok := mulInt(stride, height-1)
	if !ok || pad > math.MaxInt-row {
		return 0, 0, false
	}
	return stride, pad + row, true
}

// mulInt multiplies two non-negative ints, reporting overflow.
func mulInt(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

func checkLayout(buf []byte, width, height int, format PixelFormat) (stride int, err error) {
	if err := format.Validate(); err != nil {
		return 0, err
	}
	if width < 0 || height < 0 {
		return 0, fmt.Errorf("%w: negative size %dx%d", ErrDimensionMismatch, width, height)
	}
	stride, need, ok := layout(width, height, format)
	if !ok {
		return 0, fmt.Errorf("%w: %dx%d %v overflows", ErrDimensionMismatch, width, height, format)
	}
	if len(buf) < need {
		return 0, fmt.Errorf("%w: buffer has %d bytes, %dx%d %v needs %d",
			ErrDimensionMismatch, len(buf), width, height, format, need)
	}
	return stride, nil
}

// Canonicalize converts an interleaved pixel buffer into row-major float64
// samples, format.Channels per pixel. Row padding is skipped.
func Canonicalize(buf []byte, width, height int, format PixelFormat, opts ...CanonicalizeOption) ([]float64, error) {
	stride, err := checkLayout(buf, width, height, format)
	if err != nil {
		return nil, err
	}
	var cfg canonicalizeConfig
	for _, o := range opts {
		o(&cfg)
	}
	scale := 1.0
	switch {
	case cfg.hasScale:
		scale = cfg.scale
	case !format.Type.IsFloat():
		scale = 1 / MaxValue(format.Type)
	}
	bo, err := byteOrder(format.Endianness)
	if err != nil {
		return nil, err
	}

	ch := format.Channels
	size := StorageBits(format.Type) / 8
	out := make([]float64, width*height*ch)
	i := 0
	for y := 0; y < height; y++ {
		off := y * stride
		for n := width * ch; n > 0; n-- {
			out[i] = readSample(buf[off:off+size], format.Type, bo) * scale
			off += size
			i++
		}
	}
	return out, nil
}

func readSample(b []byte, t DataType, bo binary.ByteOrder) float64 {
	switch t {
	case Uint8:
		return float64(b[0])
	case Uint16:
		return float64(bo.Uint16(b))
	case Uint32:
		return float64(bo.Uint32(b))
	case Float16:
		return halfToFloat64(bo.Uint16(b))
	case Float32:
		return float64(math.Float32frombits(bo.Uint32(b)))
	}
	return 0
}

// Encode quantizes canonical samples (full scale 1.0) back into the native
// layout of format. Integer samples are rounded to nearest and clamped; row
// padding is zero.
func Encode(values []float64, width, height int, format PixelFormat) ([]byte, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	pixels, ok := mulInt(width, height)
	if ok {
		pixels, ok = mulInt(pixels, format.Channels)
	}
	if !ok || len(values) != pixels {
		return nil, fmt.Errorf("%w: %d samples for %dx%dx%d",
			ErrDimensionMismatch, len(values), width, height, format.Channels)
	}
	stride, _, ok := layout(width, height, format)
	total, ok2 := mulInt(stride, height)
	if !ok || !ok2 {
		return nil, fmt.Errorf("%w: %dx%d %v overflows", ErrDimensionMismatch, width, height, format)
	}
	bo, err := byteOrder(format.Endianness)
	if err != nil {
		return nil, err
	}
	size := StorageBits(format.Type) / 8
	out := make([]byte, total)
	maxv := MaxValue(format.Type)
	i := 0
	for y := 0; y < height; y++ {
		off := y * stride
		for n := width * format.Channels; n > 0; n-- {
			writeSample(out[off:off+size], values[i], format.Type, maxv, bo)
			off += size
			i++
		}
	}
	return out, nil
}

func writeSample(b []byte, v float64, t DataType, maxv float64, bo binary.ByteOrder) {
	if !t.IsFloat() {
		q := math.Round(v * maxv)
		if !(q > 0) { // also catches NaN
			q = 0
		} else if q > maxv {
			q = maxv
		}
		switch t {
		case Uint8:
			b[0] = uint8(q)
		case Uint16:
			bo.PutUint16(b, uint16(q))
		case Uint32:
			bo.PutUint32(b, uint32(q))
		}
		return
	}
	switch t {
	case Float16:
		bo.PutUint16(b, floatToHalf(v))
	case Float32:
		bo.PutUint32(b, math.Float32bits(float32(v)))
	}
}
