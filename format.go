package conform

import "fmt"

// DataType is the storage type of a single channel sample.
type DataType int

const (
	Uint8 DataType = iota
	Uint16
	Float16
	Float32
	Uint32
)

func (t DataType) String() string {
	switch t {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Uint32:
		return "uint32"
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// ParseDataType is the inverse of DataType.String.
func ParseDataType(s string) (DataType, error) {
	for t := Uint8; t <= Uint32; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: data type %q", ErrUnsupportedFormat, s)
}

// IsFloat reports whether t is a floating point type.
func (t DataType) IsFloat() bool { return t == Float16 || t == Float32 }

// Endianness is the byte order of multi-byte samples.
type Endianness int

const (
	NativeEndian Endianness = iota
	LittleEndian
	BigEndian
)

func (e Endianness) String() string {
	switch e {
	case NativeEndian:
		return "native"
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	}
	return fmt.Sprintf("Endianness(%d)", int(e))
}

// ParseEndianness is the inverse of Endianness.String.
func ParseEndianness(s string) (Endianness, error) {
	for e := NativeEndian; e <= BigEndian; e++ {
		if e.String() == s {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: byte order %q", ErrUnsupportedFormat, s)
}

// PixelFormat describes the memory layout of an interleaved pixel buffer.
type PixelFormat struct {
	Channels   int // 1 gray, 2 gray+alpha, 3 RGB, 4 RGBA
	Type       DataType
	Endianness Endianness
	Align      int // row alignment in bytes; 0 or 1 means packed rows
}

// Validate reports ErrUnsupportedFormat for out-of-range fields.
func (f PixelFormat) Validate() error {
	if f.Channels < 1 || f.Channels > 4 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, f.Channels)
	}
	if StorageBits(f.Type) == 0 {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f.Type)
	}
	if f.Endianness < NativeEndian || f.Endianness > BigEndian {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f.Endianness)
	}
	if f.Align < 0 {
		return fmt.Errorf("%w: row alignment %d", ErrUnsupportedFormat, f.Align)
	}
	return nil
}

// BytesPerPixel returns the storage size of one interleaved pixel.
func (f PixelFormat) BytesPerPixel() int {
	return f.Channels * StorageBits(f.Type) / 8
}

func (f PixelFormat) String() string {
	return fmt.Sprintf("%dx%v/%v", f.Channels, f.Type, f.Endianness)
}

// Role is the interpretation of a channel for tolerance purposes.
type Role int

const (
	RoleColor Role = iota
	RoleAlpha
	RoleGray
)

func (r Role) String() string {
	switch r {
	case RoleColor:
		return "color"
	case RoleAlpha:
		return "alpha"
	case RoleGray:
		return "gray"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Roles returns the role of each channel for a channel count in 1..4, or
// nil for any other count.
func Roles(channels int) []Role {
	switch channels {
	case 1:
		return []Role{RoleGray}
	case 2:
		return []Role{RoleGray, RoleAlpha}
	case 3:
		return []Role{RoleColor, RoleColor, RoleColor}
	case 4:
		return []Role{RoleColor, RoleColor, RoleColor, RoleAlpha}
	}
	return nil
}

// HasAlpha reports whether the last channel is alpha.
func (f PixelFormat) HasAlpha() bool { return f.Channels == 2 || f.Channels == 4 }
