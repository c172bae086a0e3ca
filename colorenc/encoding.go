// Package colorenc enumerates the color encodings a codec round trip is
// expected to preserve and expands them into full encodings that can
// synthesize ICC profiles.
package colorenc

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by enumeration and expansion.
var (
	ErrUnsupported        = errors.New("colorenc: unsupported color encoding")
	ErrInvalidDescription = errors.New("colorenc: invalid description")
)

// Descriptor is a compact, comparable description of a color encoding.
// Primaries are ignored for Gray.
type Descriptor struct {
	ColorSpace       ColorSpace
	WhitePoint       WhitePoint
	Primaries        Primaries
	TransferFunction TransferFunction
	RenderingIntent  RenderingIntent
}

// String returns "ColorEncoding/" followed by the description, or the raw
// fields when the descriptor cannot be expanded.
func (d Descriptor) String() string {
	c, err := FromDescriptor(d)
	if err != nil {
		return fmt.Sprintf("ColorEncoding/%v_%v_%v_%v_%v",
			d.ColorSpace, d.WhitePoint, d.Primaries, d.RenderingIntent, d.TransferFunction)
	}
	return "ColorEncoding/" + c.Description()
}

var whitePoints = map[WhitePoint]Chromaticity{
	WhiteD65: {0.3127, 0.3290},
	WhiteE:   {1.0 / 3, 1.0 / 3},
	WhiteDCI: {0.314, 0.351},
}

var primariesTable = map[Primaries][3]Chromaticity{
	PrimariesSRGB: {{0.64, 0.33}, {0.30, 0.60}, {0.15, 0.06}},
	Primaries2100: {{0.708, 0.292}, {0.170, 0.797}, {0.131, 0.046}},
	PrimariesP3:   {{0.680, 0.320}, {0.265, 0.690}, {0.150, 0.060}},
}

// ColorEncoding is a fully expanded color encoding.
type ColorEncoding struct {
	Descriptor
	White            Chromaticity
	Red, Green, Blue Chromaticity // zero for Gray
}

// FromDescriptor expands d. Custom and unknown values and XYB have no
// closed form and are rejected with ErrUnsupported.
func FromDescriptor(d Descriptor) (ColorEncoding, error) {
	if err := validate(d); err != nil {
		return ColorEncoding{}, err
	}
	c := ColorEncoding{Descriptor: d, White: whitePoints[d.WhitePoint]}
	if d.ColorSpace == Gray {
		c.Primaries = PrimariesSRGB
		return c, nil
	}
	p := primariesTable[d.Primaries]
	c.Red, c.Green, c.Blue = p[0], p[1], p[2]
	return c, nil
}

func validate(d Descriptor) error {
	if d.ColorSpace != RGB && d.ColorSpace != Gray {
		return fmt.Errorf("%w: color space %v", ErrUnsupported, d.ColorSpace)
	}
	if _, ok := whitePoints[d.WhitePoint]; !ok {
		return fmt.Errorf("%w: white point %v", ErrUnsupported, d.WhitePoint)
	}
	if _, ok := primariesTable[d.Primaries]; !ok && d.ColorSpace == RGB {
		return fmt.Errorf("%w: primaries %v", ErrUnsupported, d.Primaries)
	}
	if _, ok := transferNames[d.TransferFunction]; !ok || d.TransferFunction == TFUnknown {
		return fmt.Errorf("%w: transfer function %v", ErrUnsupported, d.TransferFunction)
	}
	if _, ok := intentNames[d.RenderingIntent]; !ok {
		return fmt.Errorf("%w: rendering intent %v", ErrUnsupported, d.RenderingIntent)
	}
	return nil
}

// IsGray reports whether c has a single channel.
func (c ColorEncoding) IsGray() bool { return c.ColorSpace == Gray }

// Description returns the short name used in test names, e.g.
// "RGB_D65_SRG_Rel_SRG" or "Gra_D65_Rel_Lin".
func (c ColorEncoding) Description() string {
	parts := []string{c.ColorSpace.String(), c.WhitePoint.String()}
	if !c.IsGray() {
		parts = append(parts, c.Primaries.String())
	}
	parts = append(parts, c.RenderingIntent.String(), c.TransferFunction.String())
	return strings.Join(parts, "_")
}

// ParseDescription is the inverse of Description.
func ParseDescription(s string) (Descriptor, error) {
	s = strings.TrimPrefix(s, "ColorEncoding/")
	f := strings.Split(s, "_")
	bad := fmt.Errorf("%w: %q", ErrInvalidDescription, s)
	if len(f) < 4 {
		return Descriptor{}, bad
	}
	var d Descriptor
	var ok bool
	if d.ColorSpace, ok = lookup(colorSpaceNames, f[0]); !ok {
		return Descriptor{}, bad
	}
	want := 5
	if d.ColorSpace == Gray {
		want = 4
	}
	if len(f) != want {
		return Descriptor{}, bad
	}
	if d.WhitePoint, ok = lookup(whitePointNames, f[1]); !ok {
		return Descriptor{}, bad
	}
	if d.ColorSpace == Gray {
		d.Primaries = PrimariesSRGB
	} else if d.Primaries, ok = lookup(primariesNames, f[2]); !ok {
		return Descriptor{}, bad
	}
	if d.RenderingIntent, ok = lookup(intentNames, f[want-2]); !ok {
		return Descriptor{}, bad
	}
	if d.TransferFunction, ok = lookup(transferNames, f[want-1]); !ok {
		return Descriptor{}, bad
	}
	if err := validate(d); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// RGBToXYZ returns the matrix from linear RGB to XYZ relative to the
// encoding's own white point. For Gray it maps the single channel to the
// white point's luminance axis in all three components.
func (c ColorEncoding) RGBToXYZ() (Mat3, error) {
	if c.IsGray() {
		w := c.White.XYZ()
		return Mat3{{w[0] / 3, w[0] / 3, w[0] / 3}, {1.0 / 3, 1.0 / 3, 1.0 / 3}, {w[2] / 3, w[2] / 3, w[2] / 3}}, nil
	}
	m, ok := primariesToXYZ(c.Red, c.Green, c.Blue, c.White)
	if !ok {
		return Mat3{}, fmt.Errorf("%w: degenerate primaries", ErrUnsupported)
	}
	return m, nil
}

// WhiteXYZ returns the white point as XYZ with luminance 1.
func (c ColorEncoding) WhiteXYZ() [3]float64 { return c.White.XYZ() }
