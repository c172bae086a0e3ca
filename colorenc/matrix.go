package colorenc

import "github.com/lucasb-eyer/go-colorful"

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// Mul returns m*n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return r
}

// Apply returns m*v.
func (m Mat3) Apply(v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Inverse returns the inverse of m and false if m is singular.
func (m Mat3) Inverse() (Mat3, bool) {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]
	co0 := e*i - f*h
	co1 := f*g - d*i
	co2 := d*h - e*g
	det := a*co0 + b*co1 + c*co2
	if det == 0 {
		return Mat3{}, false
	}
	inv := 1 / det
	return Mat3{
		{co0 * inv, (c*h - b*i) * inv, (b*f - c*e) * inv},
		{co1 * inv, (a*i - c*g) * inv, (c*d - a*f) * inv},
		{co2 * inv, (b*g - a*h) * inv, (a*e - b*d) * inv},
	}, true
}

// Chromaticity is a CIE xy coordinate.
type Chromaticity struct{ X, Y float64 }

// XYZ returns the tristimulus value with luminance 1.
func (c Chromaticity) XYZ() [3]float64 {
	x, y, z := colorful.XyyToXyz(c.X, c.Y, 1)
	return [3]float64{x, y, z}
}

// D50 is the ICC profile connection space illuminant.
var D50 = [3]float64{0.9642, 1.0, 0.8249}

var bradford = Mat3{
	{0.8951, 0.2664, -0.1614},
	{-0.7502, 1.7135, 0.0367},
	{0.0389, -0.0685, 1.0296},
}

// Bradford returns the chromatic adaptation matrix taking XYZ values
// relative to white src to XYZ values relative to white dst.
func Bradford(src, dst [3]float64) Mat3 {
	inv, _ := bradford.Inverse()
	s := bradford.Apply(src)
	d := bradford.Apply(dst)
	scale := Mat3{
		{d[0] / s[0], 0, 0},
		{0, d[1] / s[1], 0},
		{0, 0, d[2] / s[2]},
	}
	return inv.Mul(scale.Mul(bradford))
}

// primariesToXYZ returns the matrix taking linear RGB to XYZ relative to
// white w. Columns are the XYZ of the primaries scaled so RGB(1,1,1) maps
// to w.
func primariesToXYZ(r, g, b, w Chromaticity) (Mat3, bool) {
	xr, xg, xb := r.XYZ(), g.XYZ(), b.XYZ()
	p := Mat3{
		{xr[0], xg[0], xb[0]},
		{xr[1], xg[1], xb[1]},
		{xr[2], xg[2], xb[2]},
	}
	inv, ok := p.Inverse()
	if !ok {
		return Mat3{}, false
	}
	s := inv.Apply(w.XYZ())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p[i][j] *= s[j]
		}
	}
	return p, true
}
