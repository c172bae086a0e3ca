package butteraugli

import (
	"fmt"
	"math"

	"github.com/deepteams/conform/colorenc"
	"github.com/deepteams/conform/internal/pool"
	"github.com/deepteams/conform/internal/ssim"
	"github.com/deepteams/conform/threadpool"
)

// DefaultSSIMScale maps a structural dissimilarity of 0.1 to distance 1.
const DefaultSSIMScale = 10.0

// planeWeight is the relative luma contribution of R, G and B.
var planeWeight = [3]float64{0.2126 / 0.7152, 1, 0.0722 / 0.7152}

// SSIMEngine scores each pixel as Scale*(1-SSIM) over a 7x7 hat-weighted
// window, taking the luma-weighted maximum over the three planes. The
// image distance is the maximum of the map.
//
// Planes are compared after sRGB encoding of the linear values scaled by
// Params.IntensityTarget/80, so dark regions are not swamped by highlights.
type SSIMEngine struct {
	Scale float64 // zero means DefaultSSIMScale
}

// Distance implements Engine.
func (e SSIMEngine) Distance(a, b *Image3F, params Params, p *threadpool.Pool, distmap *ImageF) (float64, error) {
	if a == nil || b == nil {
		return 0, fmt.Errorf("%w: nil image", ErrInvalidParameter)
	}
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	scale := e.Scale
	if scale == 0 {
		scale = DefaultSSIMScale
	}
	target := params.IntensityTarget
	if target <= 0 {
		target = DefaultIntensityTarget
	}
	xmul := params.XMul
	if xmul <= 0 {
		xmul = 1
	}
	weights := planeWeight
	weights[0] *= xmul

	w, h := a.Width, a.Height
	if distmap == nil {
		distmap = &ImageF{}
	}
	distmap.Resize(w, h)
	if w == 0 || h == 0 {
		return 0, nil
	}

	var pa, pb [3][]float32
	for c := 0; c < 3; c++ {
		pa[c] = perceptual(a.Planes[c], target)
		pb[c] = perceptual(b.Planes[c], target)
		defer pool.PutFloat32(pa[c])
		defer pool.PutFloat32(pb[c])
	}

	err := p.RunRange(h, func(y0, y1 int) error {
		row := pool.GetFloat32(w)
		defer pool.PutFloat32(row)
		for y := y0; y < y1; y++ {
			dst := distmap.Row(y)
			clear(dst)
			for c := 0; c < 3; c++ {
				ssim.Row(row, pa[c], pb[c], w, y, w, h)
				for x, s := range row {
					d := float32(scale * weights[c] * (1 - float64(s)))
					dst[x] = max(dst[x], d)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return float64(distmap.Max()), nil
}

// perceptual returns a pooled copy of plane in sRGB encoding.
func perceptual(plane []float32, target float64) []float32 {
	out := pool.GetFloat32(len(plane))
	k := target / DefaultIntensityTarget
	for i, v := range plane {
		out[i] = float32(colorenc.TFSRGB.FromLinear(math.Max(float64(v)*k, 0)))
	}
	return out
}
