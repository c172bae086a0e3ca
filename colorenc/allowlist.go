package colorenc

import "fmt"

// AllowList selects, per dimension, the values an enumeration combines.
// Every value must be expandable; Gray color spaces ignore Primaries.
type AllowList struct {
	ColorSpaces       []ColorSpace
	WhitePoints       []WhitePoint
	Primaries         []Primaries
	TransferFunctions []TransferFunction
	RenderingIntents  []RenderingIntent
}

// DefaultAllowList returns the combinations a conforming codec must round
// trip: RGB with every named white point, primaries, transfer function and
// rendering intent.
func DefaultAllowList() AllowList {
	return AllowList{
		ColorSpaces:       []ColorSpace{RGB},
		WhitePoints:       []WhitePoint{WhiteD65, WhiteE, WhiteDCI},
		Primaries:         []Primaries{PrimariesSRGB, Primaries2100, PrimariesP3},
		TransferFunctions: []TransferFunction{TF709, TFLinear, TFSRGB, TFPQ, TFDCI, TFHLG},
		RenderingIntents:  []RenderingIntent{Perceptual, Relative, Saturation, Absolute},
	}
}

// Encodings returns the cartesian product of the allow-list in a fixed
// order. Duplicated values in a dimension are collapsed.
func (a AllowList) Encodings() ([]Descriptor, error) {
	var out []Descriptor
	seen := make(map[Descriptor]bool)
	for _, cs := range a.ColorSpaces {
		prims := a.Primaries
		if cs == Gray {
			prims = []Primaries{PrimariesSRGB}
		}
		for _, wp := range a.WhitePoints {
			for _, pr := range prims {
				for _, tf := range a.TransferFunctions {
					for _, ri := range a.RenderingIntents {
						d := Descriptor{cs, wp, pr, tf, ri}
						if err := validate(d); err != nil {
							return nil, fmt.Errorf("colorenc: allow-list: %w", err)
						}
						if seen[d] {
							continue
						}
						seen[d] = true
						out = append(out, d)
					}
				}
			}
		}
	}
	return out, nil
}

// AllEncodings returns the default allow-list enumeration.
func AllEncodings() []Descriptor {
	d, err := DefaultAllowList().Encodings()
	if err != nil {
		panic(err) // default list is static
	}
	return d
}
