package conform

import "errors"

// Errors returned by canonicalization, comparison and distance functions.
var (
	ErrDimensionMismatch = errors.New("conform: dimension mismatch")
	ErrUnsupportedFormat = errors.New("conform: unsupported pixel format")
	ErrInvalidParameter  = errors.New("conform: invalid parameter")
)
