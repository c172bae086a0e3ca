package colorenc

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unicode/utf16"

	"seehuhn.de/go/icc"
)

// Tag signatures written by CreateProfile.
const (
	tagDesc = icc.TagType(0x64657363) // "desc"
	tagCprt = icc.TagType(0x63707274) // "cprt"
	tagWtpt = icc.TagType(0x77747074) // "wtpt"
	tagChad = icc.TagType(0x63686164) // "chad"
	tagRXYZ = icc.TagType(0x7258595A) // "rXYZ"
	tagGXYZ = icc.TagType(0x6758595A) // "gXYZ"
	tagBXYZ = icc.TagType(0x6258595A) // "bXYZ"
	tagRTRC = icc.TagType(0x72545243) // "rTRC"
	tagGTRC = icc.TagType(0x67545243) // "gTRC"
	tagBTRC = icc.TagType(0x62545243) // "bTRC"
	tagKTRC = icc.TagType(0x6B545243) // "kTRC"
)

// Tag type signatures.
const (
	typeXYZ  = 0x58595A20 // "XYZ "
	typeSF32 = 0x73663332 // "sf32"
	typeMLUC = 0x6D6C7563 // "mluc"
)

// tableSize is the number of samples used for curves without a
// parametric form.
const tableSize = 4096

var profileDate = time.Date(2019, 12, 1, 0, 0, 0, 0, time.UTC)

// CreateProfile synthesizes an ICC v4 display profile for c: colorants and
// white adapted to D50 with Bradford, a chad tag, one tone curve per
// channel and a mluc description.
func (c ColorEncoding) CreateProfile() ([]byte, error) {
	if err := validate(c.Descriptor); err != nil {
		return nil, err
	}
	toD50 := Bradford(c.WhiteXYZ(), D50)
	trc := curveTag(c.TransferFunction)

	p := &icc.Profile{
		Version:         icc.Version4_3_0,
		Class:           icc.DisplayDeviceProfile,
		ColorSpace:      icc.RGBSpace,
		PCS:             icc.PCSXYZSpace,
		CreationDate:    profileDate,
		RenderingIntent: icc.RenderingIntent(c.RenderingIntent),
		TagData: map[icc.TagType][]byte{
			tagDesc: mlucTag(c.Description()),
			tagCprt: mlucTag("CC0"),
			tagWtpt: xyzTag(D50),
			tagChad: sf32Tag(toD50),
		},
	}
	if c.IsGray() {
		p.ColorSpace = icc.GraySpace
		p.TagData[tagKTRC] = trc
	} else {
		m, err := c.RGBToXYZ()
		if err != nil {
			return nil, err
		}
		m = toD50.Mul(m)
		p.TagData[tagRXYZ] = xyzTag([3]float64{m[0][0], m[1][0], m[2][0]})
		p.TagData[tagGXYZ] = xyzTag([3]float64{m[0][1], m[1][1], m[2][1]})
		p.TagData[tagBXYZ] = xyzTag([3]float64{m[0][2], m[1][2], m[2][2]})
		p.TagData[tagRTRC] = trc
		p.TagData[tagGTRC] = trc
		p.TagData[tagBTRC] = trc
	}
	data, err := p.Encode()
	if err != nil {
		return nil, fmt.Errorf("colorenc: encoding profile %s: %w", c.Description(), err)
	}
	return data, nil
}

// curveTag returns a parametric curve where one exists and a sampled
// curve for PQ and HLG.
func curveTag(tf TransferFunction) []byte {
	var c *icc.Curve
	switch tf {
	case TFLinear:
		c = &icc.Curve{Gamma: 1}
	case TFDCI:
		c = &icc.Curve{Gamma: 2.6}
	case TFSRGB:
		c = &icc.Curve{FuncType: 3, Params: []float64{2.4, 1 / 1.055, 0.055 / 1.055, 1 / 12.92, 0.04045}}
	case TF709:
		c = &icc.Curve{FuncType: 3, Params: []float64{1 / 0.45, 1 / 1.099, 0.099 / 1.099, 1 / 4.5, 0.081}}
	default:
		table := make([]uint16, tableSize)
		for i := range table {
			v := tf.ToLinear(float64(i) / (tableSize - 1))
			table[i] = uint16(math.Round(math.Min(math.Max(v, 0), 1) * 65535))
		}
		c = &icc.Curve{Table: table}
	}
	return c.Encode()
}

func s15Fixed16(v float64) uint32 {
	return uint32(int32(math.Round(v * 65536)))
}

func xyzTag(v [3]float64) []byte {
	b := make([]byte, 20)
	binary.BigEndian.PutUint32(b, typeXYZ)
	for i, x := range v {
		binary.BigEndian.PutUint32(b[8+4*i:], s15Fixed16(x))
	}
	return b
}

func sf32Tag(m Mat3) []byte {
	b := make([]byte, 8+36)
	binary.BigEndian.PutUint32(b, typeSF32)
	for i := 0; i < 9; i++ {
		binary.BigEndian.PutUint32(b[8+4*i:], s15Fixed16(m[i/3][i%3]))
	}
	return b
}

// mlucTag encodes s as a single en-US record.
func mlucTag(s string) []byte {
	u := utf16.Encode([]rune(s))
	n := 28 + 2*len(u)
	b := make([]byte, (n+3)&^3)
	binary.BigEndian.PutUint32(b, typeMLUC)
	binary.BigEndian.PutUint32(b[8:], 1)   // record count
	binary.BigEndian.PutUint32(b[12:], 12) // record size
	binary.BigEndian.PutUint16(b[16:], 0x656E)
	binary.BigEndian.PutUint16(b[18:], 0x5553)
	binary.BigEndian.PutUint32(b[20:], uint32(2*len(u)))
	binary.BigEndian.PutUint32(b[24:], 28)
	for i, r := range u {
		binary.BigEndian.PutUint16(b[28+2*i:], r)
	}
	return b
}

// DecodeDescription returns the en-US text of a mluc description tag.
func DecodeDescription(tag []byte) (string, error) {
	if len(tag) < 28 || binary.BigEndian.Uint32(tag) != typeMLUC {
		return "", fmt.Errorf("%w: not a mluc tag", ErrInvalidDescription)
	}
	count := int(binary.BigEndian.Uint32(tag[8:]))
	for i := 0; i < count; i++ {
		rec := 16 + 12*i
		if rec+12 > len(tag) {
			break
		}
		length := int(binary.BigEndian.Uint32(tag[rec+4:]))
		off := int(binary.BigEndian.Uint32(tag[rec+8:]))
		if off+length > len(tag) || length%2 != 0 {
			return "", fmt.Errorf("%w: mluc record out of range", ErrInvalidDescription)
		}
		u := make([]uint16, length/2)
		for j := range u {
			u[j] = binary.BigEndian.Uint16(tag[off+2*j:])
		}
		return string(utf16.Decode(u)), nil
	}
	return "", fmt.Errorf("%w: empty mluc tag", ErrInvalidDescription)
}
