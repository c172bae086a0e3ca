package butteraugli

import (
	"fmt"

	"github.com/deepteams/conform"
	"github.com/deepteams/conform/colorenc"
)

// Frame is one decoded image: canonical interleaved samples plus the color
// encoding they are expressed in.
type Frame struct {
	Width, Height int
	Channels      int
	Pixels        []float64
	Encoding      colorenc.ColorEncoding
}

// HasAlpha reports whether the last channel is alpha.
func (f *Frame) HasAlpha() bool { return f.Channels == 2 || f.Channels == 4 }

// colorChannels returns the number of non-alpha channels.
func (f *Frame) colorChannels() int {
	if f.HasAlpha() {
		return f.Channels - 1
	}
	return f.Channels
}

func (f *Frame) validate() error {
	if f.Channels < 1 || f.Channels > 4 {
		return fmt.Errorf("%w: %d channels", ErrInvalidParameter, f.Channels)
	}
	if f.Width < 0 || f.Height < 0 || len(f.Pixels) != f.Width*f.Height*f.Channels {
		return fmt.Errorf("%w: %d samples for %dx%dx%d",
			ErrDimensionMismatch, len(f.Pixels), f.Width, f.Height, f.Channels)
	}
	if gray := f.colorChannels() == 1; gray != f.Encoding.IsGray() {
		return fmt.Errorf("%w: %d color channels with %s",
			ErrInvalidParameter, f.colorChannels(), f.Encoding.Description())
	}
	return nil
}

// alpha returns the alpha plane of f, or nil if f is opaque.
func (f *Frame) alpha() []float32 {
	if !f.HasAlpha() {
		return nil
	}
	a := make([]float32, f.Width*f.Height)
	for i := range a {
		a[i] = float32(f.Pixels[i*f.Channels+f.Channels-1])
	}
	return a
}

// PackedFrame is the raw pixel buffer of one frame.
type PackedFrame struct {
	Pixels []byte
}

// PackedPixelFile is a decoded image file: a shared layout and color
// encoding plus one buffer per frame.
type PackedPixelFile struct {
	Width, Height int
	Format        conform.PixelFormat
	// Color describes the samples. The zero value means sRGB (gray sRGB for
	// one or two channels).
	Color  colorenc.Descriptor
	Frames []PackedFrame
}

func (p *PackedPixelFile) encoding() (colorenc.ColorEncoding, error) {
	d := p.Color
	if d == (colorenc.Descriptor{}) {
		d = colorenc.Descriptor{
			ColorSpace:       colorenc.RGB,
			WhitePoint:       colorenc.WhiteD65,
			Primaries:        colorenc.PrimariesSRGB,
			TransferFunction: colorenc.TFSRGB,
			RenderingIntent:  colorenc.Relative,
		}
		if p.Format.Channels < 3 {
			d.ColorSpace = colorenc.Gray
		}
	}
	return colorenc.FromDescriptor(d)
}

// DecodeFrames canonicalizes every frame of p.
func (p *PackedPixelFile) DecodeFrames() ([]Frame, error) {
	enc, err := p.encoding()
	if err != nil {
		return nil, err
	}
	frames := make([]Frame, len(p.Frames))
	for i, pf := range p.Frames {
		px, err := conform.Canonicalize(pf.Pixels, p.Width, p.Height, p.Format)
		if err != nil {
			return nil, fmt.Errorf("butteraugli: frame %d: %w", i, err)
		}
		frames[i] = Frame{
			Width:    p.Width,
			Height:   p.Height,
			Channels: p.Format.Channels,
			Pixels:   px,
			Encoding: enc,
		}
		if err := frames[i].validate(); err != nil {
			return nil, fmt.Errorf("butteraugli: frame %d: %w", i, err)
		}
	}
	return frames, nil
}
