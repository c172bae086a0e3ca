// Package ssim computes windowed structural similarity over float planes.
//
// The window is the 7x7 separable hat kernel {1,2,3,4,3,2,1}; windows that
// overlap the plane border are clipped and normalized by the weight that
// remains, so every pixel gets a score.
package ssim

// Kernel is the half-width of the SSIM window.
const Kernel = 3

var weight = [2*Kernel + 1]float64{1, 2, 3, 4, 3, 2, 1}

// Stabilizing constants for signals in [0, 1]: (0.01)^2 and (0.03)^2.
const (
	c1 = 0.01 * 0.01
	c2 = 0.03 * 0.03
)

// Stats accumulates weighted first and second moments of a pair of signals.
type Stats struct {
	W             float64 // total weight
	Xm, Ym        float64 // weighted sums of x and y
	Xxm, Xym, Yym float64 // weighted sums of x*x, x*y, y*y
}

// Accumulate adds (x, y) with weight w.
func (s *Stats) Accumulate(x, y float32, w float64) {
	fx, fy := float64(x), float64(y)
	s.W += w
	s.Xm += w * fx
	s.Ym += w * fy
	s.Xxm += w * fx * fx
	s.Xym += w * fx * fy
	s.Yym += w * fy * fy
}

// FromStats returns the SSIM of the accumulated statistics. An empty window
// scores 1.
func FromStats(s *Stats) float64 {
	if s.W == 0 {
		return 1
	}
	inv := 1 / s.W
	mx := s.Xm * inv
	my := s.Ym * inv
	sxx := s.Xxm*inv - mx*mx
	syy := s.Yym*inv - my*my
	sxy := s.Xym*inv - mx*my
	if sxx < 0 {
		sxx = 0
	}
	if syy < 0 {
		syy = 0
	}
	num := (2*mx*my + c1) * (2*sxy + c2)
	den := (mx*mx + my*my + c1) * (sxx + syy + c2)
	if den == 0 {
		return 1
	}
	return num / den
}

// At returns the SSIM of the window centered on (xo, yo). Both planes are
// w x h with the given stride.
func At(a, b []float32, stride, xo, yo, w, h int) float64 {
	var s Stats
	ymin := max(yo-Kernel, 0)
	ymax := min(yo+Kernel, h-1)
	xmin := max(xo-Kernel, 0)
	xmax := min(xo+Kernel, w-1)
	for y := ymin; y <= ymax; y++ {
		wy := weight[Kernel+y-yo]
		row := y * stride
		for x := xmin; x <= xmax; x++ {
			s.Accumulate(a[row+x], b[row+x], wy*weight[Kernel+x-xo])
		}
	}
	return FromStats(&s)
}

// Row writes the per-pixel SSIM of row y into dst, which must hold w values.
func Row(dst []float32, a, b []float32, stride, y, w, h int) {
	for x := 0; x < w; x++ {
		dst[x] = float32(At(a, b, stride, x, y, w, h))
	}
}
