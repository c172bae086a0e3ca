package colorenc

import "math"

// PQ (SMPTE ST 2084) constants.
const (
	pqM1 = 2610.0 / 16384
	pqM2 = 2523.0 / 4096 * 128
	pqC1 = 3424.0 / 4096
	pqC2 = 2413.0 / 4096 * 32
	pqC3 = 2392.0 / 4096 * 32
)

// HLG (BT.2100) constants.
const (
	hlgA = 0.17883277
	hlgB = 1 - 4*hlgA
)

var hlgC = 0.5 - hlgA*math.Log(4*hlgA)

// ToLinear maps an encoded value to linear light. PQ output is relative to
// 10000 nits and HLG output is scene light in [0, 1]. Negative inputs are
// mirrored.
func (t TransferFunction) ToLinear(v float64) float64 {
	if v < 0 {
		return -t.ToLinear(-v)
	}
	switch t {
	case TFSRGB:
		if v <= 0.04045 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	case TF709:
		if v < 0.081 {
			return v / 4.5
		}
		return math.Pow((v+0.099)/1.099, 1/0.45)
	case TFDCI:
		return math.Pow(v, 2.6)
	case TFPQ:
		p := math.Pow(v, 1/pqM2)
		return math.Pow(math.Max(p-pqC1, 0)/(pqC2-pqC3*p), 1/pqM1)
	case TFHLG:
		if v <= 0.5 {
			return v * v / 3
		}
		return (math.Exp((v-hlgC)/hlgA) + hlgB) / 12
	}
	return v
}

// FromLinear is the inverse of ToLinear.
func (t TransferFunction) FromLinear(v float64) float64 {
	if v < 0 {
		return -t.FromLinear(-v)
	}
	switch t {
	case TFSRGB:
		if v <= 0.0031308 {
			return v * 12.92
		}
		return 1.055*math.Pow(v, 1/2.4) - 0.055
	case TF709:
		if v < 0.018 {
			return v * 4.5
		}
		return 1.099*math.Pow(v, 0.45) - 0.099
	case TFDCI:
		return math.Pow(v, 1/2.6)
	case TFPQ:
		p := math.Pow(v, pqM1)
		return math.Pow((pqC1+pqC2*p)/(1+pqC3*p), pqM2)
	case TFHLG:
		if v <= 1.0/12 {
			return math.Sqrt(3 * v)
		}
		return hlgA*math.Log(12*v-hlgB) + hlgC
	}
	return v
}
