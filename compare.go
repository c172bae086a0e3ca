package conform

import (
	"fmt"
	"math"
)

// Tolerances holds the allowed deviation per channel role, in quantization
// steps of the coarser of the two compared formats.
type Tolerances struct {
	Color float64
	Gray  float64
	Alpha float64
}

// DefaultTolerances is the policy used by ComparePixels. Gray and alpha are
// held to a tighter bound than color because they bypass color transforms.
var DefaultTolerances = Tolerances{Color: 1.5, Gray: 0.5, Alpha: 0.5}

// Base returns the tolerance for r in quantization steps.
func (t Tolerances) Base(r Role) float64 {
	switch r {
	case RoleGray:
		return t.Gray
	case RoleAlpha:
		return t.Alpha
	}
	return t.Color
}

// BaseTolerance returns the default tolerance for r in quantization steps.
func BaseTolerance(r Role) float64 { return DefaultTolerances.Base(r) }

type compareConfig struct {
	multiplier float64
	tolerances Tolerances
}

// CompareOption configures ComparePixels.
type CompareOption func(*compareConfig)

// WithThresholdMultiplier scales every role tolerance by m (default 1).
func WithThresholdMultiplier(m float64) CompareOption {
	return func(c *compareConfig) { c.multiplier = m }
}

// WithTolerances replaces the per-role tolerance table.
func WithTolerances(t Tolerances) CompareOption {
	return func(c *compareConfig) { c.tolerances = t }
}

// quantStep returns the canonical size of one quantization step when
// comparing formats a and b.
func quantStep(a, b DataType) float64 {
	bits := min(Precision(a), Precision(b))
	if a == Float16 || b == Float16 {
		// Float16 conversion paths may lose the last mantissa bit.
		bits--
	}
	return 1 / (math.Exp2(float64(bits)) - 1)
}

// DiffReport summarizes a tolerance comparison.
type DiffReport struct {
	Pixels    int              // number of pixels compared
	Differing int              // pixels with at least one channel out of tolerance
	Tolerance map[Role]float64 // absolute tolerance applied per role
	Worst     map[Role]float64 // largest absolute deviation seen per role
}

// ComparePixels returns the number of pixels of b that deviate from a by
// more than the role tolerance in at least one channel. a is the reference
// and b the round-tripped image; they may use different formats but must
// have the same channel count.
func ComparePixels(a, b []byte, width, height int, formatA, formatB PixelFormat, opts ...CompareOption) (int, error) {
	r, err := ComparePixelsReport(a, b, width, height, formatA, formatB, opts...)
	if err != nil {
		return 0, err
	}
	return r.Differing, nil
}

// ComparePixelsReport is ComparePixels with per-role diagnostics.
func ComparePixelsReport(a, b []byte, width, height int, formatA, formatB PixelFormat, opts ...CompareOption) (*DiffReport, error) {
	cfg := compareConfig{multiplier: 1, tolerances: DefaultTolerances}
	for _, o := range opts {
		o(&cfg)
	}
	if !(cfg.multiplier >= 0) {
		return nil, fmt.Errorf("%w: threshold multiplier %v", ErrInvalidParameter, cfg.multiplier)
	}
	t := cfg.tolerances
	if !(t.Color >= 0 && t.Gray >= 0 && t.Alpha >= 0) {
		return nil, fmt.Errorf("%w: tolerances %+v", ErrInvalidParameter, t)
	}
	if formatA.Channels != formatB.Channels {
		return nil, fmt.Errorf("%w: %d vs %d channels", ErrDimensionMismatch, formatA.Channels, formatB.Channels)
	}
	ca, err := Canonicalize(a, width, height, formatA)
	if err != nil {
		return nil, fmt.Errorf("conform: reference image: %w", err)
	}
	cb, err := Canonicalize(b, width, height, formatB)
	if err != nil {
		return nil, fmt.Errorf("conform: compared image: %w", err)
	}

	roles := Roles(formatA.Channels)
	step := quantStep(formatA.Type, formatB.Type)
	tol := make([]float64, len(roles))
	r := &DiffReport{
		Pixels:    width * height,
		Tolerance: make(map[Role]float64, 3),
		Worst:     make(map[Role]float64, 3),
	}
	for c, role := range roles {
		tol[c] = t.Base(role) * cfg.multiplier * step
		r.Tolerance[role] = tol[c]
		r.Worst[role] = 0
	}

	ch := len(roles)
	for i := 0; i < len(ca); i += ch {
		differs := false
		for c := 0; c < ch; c++ {
			d := sampleDiff(ca[i+c], cb[i+c])
			if !(d <= tol[c]) {
				differs = true
			}
			if role := roles[c]; d > r.Worst[role] || math.IsNaN(d) {
				r.Worst[role] = d
			}
		}
		if differs {
			r.Differing++
		}
	}
	return r, nil
}
