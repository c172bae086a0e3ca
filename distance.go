package conform

import (
	"fmt"
	"math"
)

// DistanceRMS returns the root mean square difference between two buffers
// of the same format, over every channel of every pixel in canonical units.
func DistanceRMS(a, b []byte, width, height int, format PixelFormat) (float64, error) {
	ca, cb, err := canonicalPair(a, b, width, height, format)
	if err != nil {
		return 0, err
	}
	return DistanceRMSCanonical(ca, cb)
}

// DistanceRMSCanonical is DistanceRMS over already canonical samples.
func DistanceRMSCanonical(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d samples", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	return math.Sqrt(sumSquares(a, b) / float64(len(a))), nil
}

// PSNR returns the peak signal to noise ratio in dB with a peak of 1.0.
// Identical images report 99 dB.
func PSNR(a, b []byte, width, height int, format PixelFormat) (float64, error) {
	ca, cb, err := canonicalPair(a, b, width, height, format)
	if err != nil {
		return 0, err
	}
	sse := sumSquares(ca, cb)
	if sse == 0 || len(ca) == 0 {
		return 99.0, nil
	}
	mse := sse / float64(len(ca))
	return 10.0 * math.Log10(1/mse), nil
}

func canonicalPair(a, b []byte, width, height int, format PixelFormat) ([]float64, []float64, error) {
	ca, err := Canonicalize(a, width, height, format)
	if err != nil {
		return nil, nil, err
	}
	cb, err := Canonicalize(b, width, height, format)
	if err != nil {
		return nil, nil, err
	}
	return ca, cb, nil
}

func sumSquares(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := sampleDiff(a[i], b[i])
		sum += d * d
	}
	return sum
}

// sampleDiff is |a-b|, except that equal samples, including matching
// infinities and NaN against NaN, differ by exactly zero.
func sampleDiff(a, b float64) float64 {
	if a == b || (math.IsNaN(a) && math.IsNaN(b)) {
		return 0
	}
	return math.Abs(a - b)
}
