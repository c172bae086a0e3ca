// Package conform measures how faithfully a codec round trip reproduces an
// image.
//
// Raw pixel buffers in any supported layout (1 to 4 channels; uint8, uint16,
// uint32, float16 or float32 samples; little, big or native byte order;
// optional row alignment) are canonicalized into float64 samples where full
// scale is 1.0. Two canonical images can then be compared with a
// precision-aware tolerance per channel role, or summarized with RMS and
// PSNR distances.
//
// The package supports:
//   - Canonicalization and the inverse quantization (Encode)
//   - Tolerance comparison with per-role thresholds (color, gray, alpha)
//   - RMS and PSNR distances
//
// Perceptual distances live in the butteraugli package, color encoding
// enumeration in colorenc, and embedded ICC stream parsing in iccstream.
//
// Basic usage:
//
//	n, err := conform.ComparePixels(ref, got, w, h, format, format)
//	rms, err := conform.DistanceRMS(ref, got, w, h, format)
package conform
