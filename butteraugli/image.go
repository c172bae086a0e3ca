package butteraugli

// ImageF is a single float32 plane, row-major without padding.
type ImageF struct {
	Width, Height int
	Pix           []float32
}

// NewImageF returns a zeroed w x h plane.
func NewImageF(w, h int) *ImageF {
	return &ImageF{Width: w, Height: h, Pix: make([]float32, w*h)}
}

// Resize sets the dimensions, reusing the backing array when it is large
// enough. Contents are unspecified afterwards.
func (m *ImageF) Resize(w, h int) {
	m.Width, m.Height = w, h
	if cap(m.Pix) < w*h {
		m.Pix = make([]float32, w*h)
		return
	}
	m.Pix = m.Pix[:w*h]
}

// Row returns row y.
func (m *ImageF) Row(y int) []float32 {
	return m.Pix[y*m.Width : (y+1)*m.Width]
}

// At returns the value at (x, y).
func (m *ImageF) At(x, y int) float32 { return m.Pix[y*m.Width+x] }

// Max returns the largest value, or 0 for an empty plane.
func (m *ImageF) Max() float32 {
	var v float32
	for _, p := range m.Pix {
		v = max(v, p)
	}
	return v
}

// Image3F holds three planes of linear light, in R, G, B order for images
// produced by a CMS.
type Image3F struct {
	Width, Height int
	Planes        [3][]float32
}

// NewImage3F returns a zeroed w x h image.
func NewImage3F(w, h int) *Image3F {
	img := &Image3F{Width: w, Height: h}
	for c := range img.Planes {
		img.Planes[c] = make([]float32, w*h)
	}
	return img
}
