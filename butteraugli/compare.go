package butteraugli

import (
	"fmt"
	"math"

	"github.com/deepteams/conform/threadpool"
)

// Comparator bundles an engine, a CMS and parameters. Zero fields select
// SSIMEngine, DefaultCMS and DefaultParams.
type Comparator struct {
	Engine Engine
	CMS    CMS
	Params *Params
}

func (c *Comparator) engine() Engine {
	if c.Engine == nil {
		return SSIMEngine{}
	}
	return c.Engine
}

func (c *Comparator) cms() CMS {
	if c.CMS == nil {
		return DefaultCMS{}
	}
	return c.CMS
}

func (c *Comparator) params() Params {
	if c.Params == nil {
		return DefaultParams()
	}
	return *c.Params
}

// DistanceFrames returns the maximum distance over corresponding frames.
// A non-nil distmap receives the map of the last frame.
func (c *Comparator) DistanceFrames(frames0, frames1 []Frame, distmap *ImageF, pool *threadpool.Pool) (float64, error) {
	if len(frames0) != len(frames1) {
		return 0, fmt.Errorf("%w: %d vs %d frames", ErrDimensionMismatch, len(frames0), len(frames1))
	}
	if len(frames0) == 0 {
		return 0, fmt.Errorf("%w: no frames", ErrInvalidParameter)
	}
	var worst float64
	m := &ImageF{}
	for i := range frames0 {
		d, err := c.frameDistance(&frames0[i], &frames1[i], m, pool)
		if err != nil {
			return 0, fmt.Errorf("butteraugli: frame %d: %w", i, err)
		}
		worst = math.Max(worst, d)
	}
	if distmap != nil {
		distmap.Resize(m.Width, m.Height)
		copy(distmap.Pix, m.Pix)
	}
	return worst, nil
}

// Distance decodes two packed images and compares their frames as
// DistanceFrames does.
func (c *Comparator) Distance(a, b *PackedPixelFile, distmap *ImageF, pool *threadpool.Pool) (float64, error) {
	f0, f1, err := decodePair(a, b)
	if err != nil {
		return 0, err
	}
	return c.DistanceFrames(f0, f1, distmap, pool)
}

func (c *Comparator) frameDistance(f0, f1 *Frame, distmap *ImageF, pool *threadpool.Pool) (float64, error) {
	if f0.Width != f1.Width || f0.Height != f1.Height {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, f0.Width, f0.Height, f1.Width, f1.Height)
	}
	if f0.Channels != f1.Channels {
		return 0, fmt.Errorf("%w: %d vs %d channels", ErrDimensionMismatch, f0.Channels, f1.Channels)
	}
	cms, engine, params := c.cms(), c.engine(), c.params()
	lin0, err := cms.ToLinearSRGB(f0)
	if err != nil {
		return 0, fmt.Errorf("cms: %w", err)
	}
	lin1, err := cms.ToLinearSRGB(f1)
	if err != nil {
		return 0, fmt.Errorf("cms: %w", err)
	}
	if !f0.HasAlpha() {
		d, err := engine.Distance(lin0, lin1, params, pool, distmap)
		if err != nil {
			return 0, fmt.Errorf("engine: %w", err)
		}
		return d, nil
	}

	// Transparent regions are judged against both a black and a white
	// background; the worse result counts.
	a0, a1 := f0.alpha(), f1.alpha()
	var worst float64
	tmp := &ImageF{}
	for i, bg := range []float32{0, 1} {
		d, err := engine.Distance(composite(lin0, a0, bg), composite(lin1, a1, bg), params, pool, tmp)
		if err != nil {
			return 0, fmt.Errorf("engine: %w", err)
		}
		worst = math.Max(worst, d)
		if i == 0 {
			distmap.Resize(tmp.Width, tmp.Height)
			copy(distmap.Pix, tmp.Pix)
			continue
		}
		for j, v := range tmp.Pix {
			distmap.Pix[j] = max(distmap.Pix[j], v)
		}
	}
	return worst, nil
}

// ButteraugliDistance returns the perceptual distance between two packed
// images using SSIMEngine and DefaultCMS.
func ButteraugliDistance(a, b *PackedPixelFile, pool *threadpool.Pool) (float64, error) {
	var c Comparator
	return c.Distance(a, b, nil, pool)
}

// ButteraugliDistanceFrames is ButteraugliDistance over decoded frames
// with explicit parameters and color management. cms may be nil.
func ButteraugliDistanceFrames(frames0, frames1 []Frame, params Params, cms CMS, distmap *ImageF, pool *threadpool.Pool) (float64, error) {
	c := Comparator{CMS: cms, Params: &params}
	return c.DistanceFrames(frames0, frames1, distmap, pool)
}

// Butteraugli3Norm returns the 3-norm of the distance map of the last
// frame, which emphasizes localized errors more than a mean would.
// Callers that also need the maximum should call Comparator.Distance once
// and aggregate its map with ComputeDistanceP.
func Butteraugli3Norm(a, b *PackedPixelFile, pool *threadpool.Pool) (float64, error) {
	var c Comparator
	distmap := &ImageF{}
	if _, err := c.Distance(a, b, distmap, pool); err != nil {
		return 0, err
	}
	return ComputeDistanceP(distmap, 3), nil
}

func decodePair(a, b *PackedPixelFile) ([]Frame, []Frame, error) {
	if a == nil || b == nil {
		return nil, nil, fmt.Errorf("%w: nil image", ErrInvalidParameter)
	}
	if a.Width != b.Width || a.Height != b.Height {
		return nil, nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	if a.Format.Channels != b.Format.Channels {
		return nil, nil, fmt.Errorf("%w: %d vs %d channels", ErrDimensionMismatch, a.Format.Channels, b.Format.Channels)
	}
	f0, err := a.DecodeFrames()
	if err != nil {
		return nil, nil, err
	}
	f1, err := b.DecodeFrames()
	if err != nil {
		return nil, nil, err
	}
	return f0, f1, nil
}

// ComputeDistanceP aggregates a distance map into a single score: the mean
// over i in {0, 1, 2} of the (p*2^i)-power mean of the map. Larger p
// favors the worst pixels.
func ComputeDistanceP(distmap *ImageF, p float64) float64 {
	if distmap == nil || len(distmap.Pix) == 0 {
		return 0
	}
	inv := 1 / float64(len(distmap.Pix))
	var v float64
	for i := 0; i < 3; i++ {
		q := p * float64(int(1)<<i)
		var sum float64
		for _, d := range distmap.Pix {
			sum += math.Pow(float64(d), q)
		}
		v += math.Pow(sum*inv, 1/q)
	}
	return v / 3
}
