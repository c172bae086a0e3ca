package butteraugli

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/deepteams/conform/colorenc"
)

// DefaultCMS converts frames analytically: the transfer function is
// inverted, then linear RGB goes to XYZ through the encoding's primaries,
// is Bradford-adapted to D65 and mapped to linear sRGB.
type DefaultCMS struct{}

var d65 = colorenc.Chromaticity{X: 0.3127, Y: 0.3290}

// ToLinearSRGB implements CMS. Alpha is dropped.
func (DefaultCMS) ToLinearSRGB(f *Frame) (*Image3F, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	enc := f.Encoding
	toXYZ, err := enc.RGBToXYZ()
	if err != nil {
		return nil, err
	}
	m := colorenc.Bradford(enc.WhiteXYZ(), d65.XYZ()).Mul(toXYZ)
	tf := enc.TransferFunction
	passThrough := isLinearSRGB(enc)

	out := NewImage3F(f.Width, f.Height)
	cc := f.colorChannels()
	for i := 0; i < f.Width*f.Height; i++ {
		px := f.Pixels[i*f.Channels:]
		var rgb [3]float64
		for c := 0; c < 3; c++ {
			rgb[c] = tf.ToLinear(px[min(c, cc-1)])
		}
		if !passThrough {
			xyz := m.Apply(rgb)
			rgb[0], rgb[1], rgb[2] = colorful.XyzToLinearRgb(xyz[0], xyz[1], xyz[2])
		}
		for c := 0; c < 3; c++ {
			out.Planes[c][i] = float32(rgb[c])
		}
	}
	return out, nil
}

// isLinearSRGB reports whether enc already has sRGB primaries and a D65
// white, so only the transfer function needs undoing.
func isLinearSRGB(enc colorenc.ColorEncoding) bool {
	return enc.WhitePoint == colorenc.WhiteD65 && (enc.IsGray() || enc.Primaries == colorenc.PrimariesSRGB)
}

// composite blends img over a uniform background of value bg using alpha.
func composite(img *Image3F, alpha []float32, bg float32) *Image3F {
	out := NewImage3F(img.Width, img.Height)
	for c := range img.Planes {
		src, dst := img.Planes[c], out.Planes[c]
		for i, a := range alpha {
			dst[i] = src[i]*a + bg*(1-a)
		}
	}
	return out
}
