package conform

import (
	"encoding/binary"
	"fmt"

	"github.com/x448/float16"
	"golang.org/x/sys/cpu"
)

// Precision returns the number of significant bits of t: the full width for
// integer types, the mantissa width including the implicit bit for floats.
// It returns 0 for unknown types.
func Precision(t DataType) int {
	switch t {
	case Uint8:
		return 8
	case Uint16:
		return 16
	case Uint32:
		return 32
	case Float16:
		return 11
	case Float32:
		return 24
	}
	return 0
}

// StorageBits returns the storage width of t in bits, or 0 for unknown
// types.
func StorageBits(t DataType) int {
	switch t {
	case Uint8:
		return 8
	case Uint16, Float16:
		return 16
	case Uint32, Float32:
		return 32
	}
	return 0
}

// MaxValue returns the full-scale value of t: the largest integer for
// integer types and 1 for floating types.
func MaxValue(t DataType) float64 {
	switch t {
	case Uint8:
		return 255
	case Uint16:
		return 65535
	case Uint32:
		return 4294967295
	case Float16, Float32:
		return 1
	}
	return 0
}

// byteOrder resolves e to a concrete byte order.
func byteOrder(e Endianness) (binary.ByteOrder, error) {
	switch e {
	case NativeEndian:
		if cpu.IsBigEndian {
			return binary.BigEndian, nil
		}
		return binary.LittleEndian, nil
	case LittleEndian:
		return binary.LittleEndian, nil
	case BigEndian:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, e)
}

// DecodeHalfFloat decodes an IEEE 754 binary16 value stored in b with the
// given byte order.
func DecodeHalfFloat(b []byte, order Endianness) (float64, error) {
	if len(b) != 2 {
		return 0, fmt.Errorf("%w: half float needs 2 bytes, got %d", ErrUnsupportedFormat, len(b))
	}
	bo, err := byteOrder(order)
	if err != nil {
		return 0, err
	}
	return halfToFloat64(bo.Uint16(b)), nil
}

// EncodeHalfFloat encodes v as IEEE 754 binary16 with round-to-nearest-even.
// Unknown byte orders encode as little endian.
func EncodeHalfFloat(v float64, order Endianness) [2]byte {
	var out [2]byte
	bo, err := byteOrder(order)
	if err != nil {
		bo = binary.LittleEndian
	}
	bo.PutUint16(out[:], floatToHalf(v))
	return out
}

func halfToFloat64(bits uint16) float64 {
	return float64(float16.Frombits(bits).Float32())
}

func floatToHalf(v float64) uint16 {
	return float16.Fromfloat32(float32(v)).Bits()
}
