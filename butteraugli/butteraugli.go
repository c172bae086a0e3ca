// Package butteraugli computes perceptual distances between a reference
// image and its codec round trip.
//
// The perceptual model itself is an Engine. Frames are converted to linear
// sRGB by a CMS, composited over black and over white when they carry
// alpha, and handed to the engine; the larger of the two scores wins. The
// default engine is SSIMEngine, a windowed structural similarity model.
package butteraugli

import (
	"errors"

	"github.com/deepteams/conform/threadpool"
)

// Errors returned by the facade.
var (
	ErrDimensionMismatch = errors.New("butteraugli: dimension mismatch")
	ErrInvalidParameter  = errors.New("butteraugli: invalid parameter")
)

// DefaultIntensityTarget is the display luminance in nits that linear value
// 1.0 maps to when no target is given.
const DefaultIntensityTarget = 80.0

// Params tunes an engine. Engines ignore fields they do not model.
type Params struct {
	// HFAsymmetry weights artifacts introduced by the codec against detail
	// it removed. 1 treats both alike.
	HFAsymmetry float64

	// XMul scales the contribution of the red-green opponent channel.
	XMul float64

	// IntensityTarget is the luminance in nits of linear 1.0.
	IntensityTarget float64
}

// DefaultParams returns neutral parameters.
func DefaultParams() Params {
	return Params{HFAsymmetry: 1, XMul: 1, IntensityTarget: DefaultIntensityTarget}
}

// Engine computes a perceptual distance between two linear sRGB images of
// equal size. A non-nil distmap is resized and filled with per-pixel
// distances. pool may be nil.
type Engine interface {
	Distance(a, b *Image3F, params Params, pool *threadpool.Pool, distmap *ImageF) (float64, error)
}

// CMS converts a frame to linear sRGB with a D65 white.
type CMS interface {
	ToLinearSRGB(f *Frame) (*Image3F, error)
}
