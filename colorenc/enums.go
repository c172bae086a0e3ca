package colorenc

import "fmt"

// The enumeration values match the JPEG XL color encoding bundle so that
// descriptors can be written into headers unchanged.

// ColorSpace is the color model of an encoding.
type ColorSpace uint8

const (
	RGB          ColorSpace = 0
	Gray         ColorSpace = 1
	XYB          ColorSpace = 2
	UnknownSpace ColorSpace = 3
)

// WhitePoint identifies the reference white.
type WhitePoint uint8

const (
	WhiteD65    WhitePoint = 1
	WhiteCustom WhitePoint = 2
	WhiteE      WhitePoint = 10
	WhiteDCI    WhitePoint = 11
)

// Primaries identifies the red, green and blue chromaticities.
type Primaries uint8

const (
	PrimariesSRGB   Primaries = 1
	PrimariesCustom Primaries = 2
	Primaries2100   Primaries = 9
	PrimariesP3     Primaries = 11
)

// TransferFunction maps encoded values to linear light.
type TransferFunction uint8

const (
	TF709     TransferFunction = 1
	TFUnknown TransferFunction = 2
	TFLinear  TransferFunction = 8
	TFSRGB    TransferFunction = 13
	TFPQ      TransferFunction = 16
	TFDCI     TransferFunction = 17
	TFHLG     TransferFunction = 18
)

// RenderingIntent is the ICC rendering intent.
type RenderingIntent uint8

const (
	Perceptual RenderingIntent = 0
	Relative   RenderingIntent = 1
	Saturation RenderingIntent = 2
	Absolute   RenderingIntent = 3
)

var colorSpaceNames = map[ColorSpace]string{
	RGB: "RGB", Gray: "Gra", XYB: "XYB", UnknownSpace: "CS?",
}

var whitePointNames = map[WhitePoint]string{
	WhiteD65: "D65", WhiteCustom: "Cst", WhiteE: "EER", WhiteDCI: "DCI",
}

var primariesNames = map[Primaries]string{
	PrimariesSRGB: "SRG", PrimariesCustom: "Cst", Primaries2100: "202", PrimariesP3: "DCI",
}

var transferNames = map[TransferFunction]string{
	TF709: "709", TFUnknown: "TF?", TFLinear: "Lin", TFSRGB: "SRG",
	TFPQ: "PeQ", TFDCI: "DCI", TFHLG: "HLG",
}

var intentNames = map[RenderingIntent]string{
	Perceptual: "Per", Relative: "Rel", Saturation: "Sat", Absolute: "Abs",
}

func (c ColorSpace) String() string       { return name(colorSpaceNames, c) }
func (w WhitePoint) String() string       { return name(whitePointNames, w) }
func (p Primaries) String() string        { return name(primariesNames, p) }
func (t TransferFunction) String() string { return name(transferNames, t) }
func (r RenderingIntent) String() string  { return name(intentNames, r) }

func name[K ~uint8](m map[K]string, k K) string {
	if s, ok := m[k]; ok {
		return s
	}
	return fmt.Sprintf("%T(%d)", k, uint8(k))
}

func lookup[K ~uint8](m map[K]string, s string) (K, bool) {
	for k, v := range m {
		if v == s {
			return k, true
		}
	}
	return 0, false
}
