package codec

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/deepteams/conform"
	"github.com/deepteams/conform/butteraugli"
	"github.com/deepteams/conform/threadpool"
)

// Harness runs codec round trips and scores the decoded image against the
// input.
type Harness struct {
	// Logger receives per-run debug records. Nil discards them.
	Logger *slog.Logger
	// Pool parallelizes the perceptual metric. Nil runs serially.
	Pool *threadpool.Pool
	// Reps is the number of timed encode and decode runs. Values below 1
	// mean a single run.
	Reps int
	// CompareOptions are passed to conform.ComparePixels.
	CompareOptions []conform.CompareOption
	// Comparator scores perceptual distance. The zero value uses the
	// default engine.
	Comparator butteraugli.Comparator
}

// Result holds the measurements of one round trip.
type Result struct {
	Codec           string
	Width, Height   int
	CompressedBytes int
	BitsPerPixel    float64

	DifferingPixels int
	RMS             float64
	PSNR            float64
	Butteraugli     float64
	PNorm           float64

	Encode, Decode Speed
}

func (h *Harness) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h.Logger
}

// RoundTrip compresses img with c, decompresses the result and compares
// both images in PackedFormat.
func (h *Harness) RoundTrip(c Codec, img image.Image) (*Result, error) {
	if c == nil || img == nil {
		return nil, fmt.Errorf("%w: nil codec or image", conform.ErrInvalidParameter)
	}
	log := h.logger().With("codec", c.Name())
	ref, format, err := Pack(img)
	if err != nil {
		return nil, err
	}
	w, hgt := img.Bounds().Dx(), img.Bounds().Dy()
	reps := max(h.Reps, 1)

	var encStats, decStats SpeedStats
	var data []byte
	for range reps {
		start := time.Now()
		data, err = c.Compress(img)
		if err != nil {
			return nil, fmt.Errorf("codec %s: compress: %w", c.Name(), err)
		}
		encStats.NotifyElapsed(time.Since(start))
	}
	var decoded image.Image
	for range reps {
		start := time.Now()
		decoded, err = c.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("codec %s: decompress: %w", c.Name(), err)
		}
		decStats.NotifyElapsed(time.Since(start))
	}
	if db := decoded.Bounds(); db.Dx() != w || db.Dy() != hgt {
		return nil, fmt.Errorf("codec %s: %w: decoded %dx%d, want %dx%d",
			c.Name(), conform.ErrDimensionMismatch, db.Dx(), db.Dy(), w, hgt)
	}
	// Pack may alias the decoded image's pixels; nothing below mutates them.
	got, _, err := Pack(decoded)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Codec:           c.Name(),
		Width:           w,
		Height:          hgt,
		CompressedBytes: len(data),
		BitsPerPixel:    float64(len(data)) * 8 / float64(w*hgt),
	}
	res.Encode, _ = encStats.Summary(w * hgt)
	res.Decode, _ = decStats.Summary(w * hgt)

	if res.DifferingPixels, err = conform.ComparePixels(ref, got, w, hgt, format, format, h.CompareOptions...); err != nil {
		return nil, err
	}
	if res.RMS, err = conform.DistanceRMS(ref, got, w, hgt, format); err != nil {
		return nil, err
	}
	if res.PSNR, err = conform.PSNR(ref, got, w, hgt, format); err != nil {
		return nil, err
	}
	pa := packedFile(ref, w, hgt, format)
	pb := packedFile(got, w, hgt, format)
	distmap := &butteraugli.ImageF{}
	if res.Butteraugli, err = h.Comparator.Distance(pa, pb, distmap, h.Pool); err != nil {
		return nil, err
	}
	res.PNorm = butteraugli.ComputeDistanceP(distmap, 3)

	log.LogAttrs(context.Background(), slog.LevelDebug, "round trip",
		slog.Int("bytes", res.CompressedBytes),
		slog.Float64("bpp", res.BitsPerPixel),
		slog.Int("differing", res.DifferingPixels),
		slog.Float64("rms", res.RMS),
		slog.Float64("psnr", res.PSNR),
		slog.Float64("butteraugli", res.Butteraugli),
		slog.Float64("pnorm", res.PNorm),
		slog.Duration("encode", res.Encode.Median),
		slog.Duration("decode", res.Decode.Median),
	)
	return res, nil
}

func packedFile(pix []byte, w, h int, format conform.PixelFormat) *butteraugli.PackedPixelFile {
	return &butteraugli.PackedPixelFile{
		Width:  w,
		Height: h,
		Format: format,
		Frames: []butteraugli.PackedFrame{{Pixels: pix}},
	}
}
