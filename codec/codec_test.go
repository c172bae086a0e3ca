package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/conform"
	"github.com/deepteams/conform/butteraugli"
	"github.com/deepteams/conform/threadpool"
)

func gradient(w, h int, alpha bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if alpha {
				a = uint8(128 + (x*127)/max(w-1, 1))
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) * 4),
				A: a,
			})
		}
	}
	return img
}

func TestNew(t *testing.T) {
	tests := []struct {
		spec string
		name string
		err  error
	}{
		{"jpeg", "jpeg", nil},
		{"jpeg:q75", "jpeg", nil},
		{"jpeg:", "jpeg", nil},
		{"png:c0", "png", nil},
		{"png:c3", "png", nil},
		{"bmp", "bmp", nil},
		{"tiff:none", "tiff", nil},
		{"tiff:deflate", "tiff", nil},
		{"zstd:l4", "zstd", nil},
		{"jpeg:q0", "", ErrUnrecognizedParam},
		{"jpeg:q101", "", ErrUnrecognizedParam},
		{"jpeg:qx", "", ErrUnrecognizedParam},
		{"jpeg:x1", "", ErrUnrecognizedParam},
		{"png:c4", "", ErrUnrecognizedParam},
		{"bmp:q1", "", ErrUnrecognizedParam},
		{"tiff:lzw", "", ErrUnrecognizedParam},
		{"zstd:l5", "", ErrUnrecognizedParam},
		{"webp", "webp", nil},
		{"webp:ext", "webp", nil},
		{"webp:q90", "", ErrUnrecognizedParam},
		{"avif", "", ErrUnknownCodec},
		{"", "", ErrUnknownCodec},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			c, err := New(tt.spec)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name())
		})
	}
}

type stubCodec struct {
	name   string
	params []string
	out    image.Image
	err    error
}

func (s *stubCodec) Name() string { return s.name }

func (s *stubCodec) ParseParam(p string) error {
	s.params = append(s.params, p)
	return nil
}

func (s *stubCodec) Compress(image.Image) ([]byte, error) { return []byte{1, 2, 3}, s.err }

func (s *stubCodec) Decompress([]byte) (image.Image, error) { return s.out, nil }

func TestRegister(t *testing.T) {
	stub := &stubCodec{name: "stub"}
	Register("stub", func() Codec { return stub })

	c, err := New("stub:a:b")
	require.NoError(t, err)
	assert.Same(t, stub, c)
	assert.Equal(t, []string{"a", "b"}, stub.params)
	assert.Contains(t, Names(), "stub")
	assert.IsNonDecreasing(t, Names())
}

func TestPack(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff})

	sub := src.SubImage(image.Rect(1, 1, 3, 3))
	pix, format, err := Pack(sub)
	require.NoError(t, err)
	assert.Equal(t, PackedFormat, format)
	require.Len(t, pix, 2*2*8)
	assert.Equal(t, []byte{0x12, 0x12, 0x34, 0x34, 0x56, 0x56, 0xff, 0xff}, pix[:8])

	canon, err := conform.Canonicalize(pix, 2, 2, format)
	require.NoError(t, err)
	assert.InDelta(t, float64(0x12)/255, canon[0], 1e-12)
	assert.InDelta(t, 0, canon[4+3], 0, "transparent pixel alpha")

	_, _, err = Pack(image.NewNRGBA(image.Rect(0, 0, 0, 3)))
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestPackAliasesNRGBA64(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(0, 0, 3, 2))
	pix, _, err := Pack(src)
	require.NoError(t, err)
	pix[0] = 0xab
	assert.Equal(t, uint8(0xab), src.Pix[0])
}

func TestRoundTripLossless(t *testing.T) {
	opaque := gradient(24, 16, false)
	translucent := gradient(24, 16, true)
	tests := []struct {
		spec string
		img  image.Image
	}{
		{"png", opaque},
		{"png:c3", translucent},
		{"bmp", opaque},
		{"tiff", translucent},
		{"tiff:none", opaque},
		{"zstd", translucent},
		{"zstd:l1", opaque},
		{"webp", opaque},
		{"webp:ext", opaque},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			c, err := New(tt.spec)
			require.NoError(t, err)
			var h Harness
			res, err := h.RoundTrip(c, tt.img)
			require.NoError(t, err)
			assert.Equal(t, 24, res.Width)
			assert.Equal(t, 16, res.Height)
			assert.Zero(t, res.DifferingPixels)
			assert.Zero(t, res.RMS)
			assert.Equal(t, 99.0, res.PSNR)
			assert.InDelta(t, 0, res.Butteraugli, 1e-3)
			assert.InDelta(t, 0, res.PNorm, 1e-3)
			assert.Positive(t, res.CompressedBytes)
			assert.InDelta(t, float64(res.CompressedBytes)*8/(24*16), res.BitsPerPixel, 1e-12)
		})
	}
}

func TestRoundTripJPEG(t *testing.T) {
	img := gradient(32, 32, false)
	var h Harness

	lo, err := New("jpeg:q10")
	require.NoError(t, err)
	hi, err := New("jpeg:q95")
	require.NoError(t, err)

	rlo, err := h.RoundTrip(lo, img)
	require.NoError(t, err)
	rhi, err := h.RoundTrip(hi, img)
	require.NoError(t, err)

	assert.Less(t, rlo.CompressedBytes, rhi.CompressedBytes)
	assert.Positive(t, rlo.RMS)
	assert.Less(t, rhi.RMS, 0.05)
	assert.Greater(t, rhi.PSNR, 30.0)
	assert.Less(t, rhi.PSNR, 99.0)
	assert.GreaterOrEqual(t, rlo.Butteraugli, 0.0)
}

func TestRoundTripRepsAndLogging(t *testing.T) {
	var buf bytes.Buffer
	h := Harness{
		Logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Reps:   3,
	}
	c, err := New("png")
	require.NoError(t, err)
	res, err := h.RoundTrip(c, gradient(8, 8, false))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Encode.Reps)
	assert.Equal(t, 3, res.Decode.Reps)
	assert.Contains(t, buf.String(), `"msg":"round trip"`)
	assert.Contains(t, buf.String(), `"codec":"png"`)
}

func TestRoundTripErrors(t *testing.T) {
	var h Harness
	img := gradient(8, 8, false)

	_, err := h.RoundTrip(nil, img)
	assert.ErrorIs(t, err, conform.ErrInvalidParameter)

	short := &stubCodec{name: "short", out: image.NewNRGBA(image.Rect(0, 0, 8, 7))}
	_, err = h.RoundTrip(short, img)
	assert.ErrorIs(t, err, conform.ErrDimensionMismatch)

	boom := errors.New("boom")
	failing := &stubCodec{name: "failing", err: boom}
	_, err = h.RoundTrip(failing, img)
	assert.ErrorIs(t, err, boom)
}

func TestZstdDecompressCorrupt(t *testing.T) {
	c := newZstd()
	for _, data := range [][]byte{
		nil,
		{0x80},
		{4},
		{0, 4},
		{4, 4, 0xde, 0xad, 0xbe, 0xef},
	} {
		_, err := c.Decompress(data)
		assert.ErrorIs(t, err, errCorruptZstd, "%x", data)
	}
}

func TestSpeedStats(t *testing.T) {
	var s SpeedStats
	_, ok := s.Summary(100)
	assert.False(t, ok)
	assert.Equal(t, "n/a", Speed{}.String())

	for _, ms := range []int{3, 1, 2} {
		s.NotifyElapsed(time.Duration(ms) * time.Millisecond)
	}
	sp, ok := s.Summary(2_000_000)
	require.True(t, ok)
	assert.Equal(t, 3, sp.Reps)
	assert.Equal(t, time.Millisecond, sp.Min)
	assert.Equal(t, 2*time.Millisecond, sp.Median)
	assert.Equal(t, 3*time.Millisecond, sp.Max)
	assert.InDelta(t, 1000, sp.MPPS, 1e-9)

	s.NotifyElapsed(4 * time.Millisecond)
	sp, _ = s.Summary(1)
	assert.Equal(t, 2500*time.Microsecond, sp.Median)
}

type countingEngine struct {
	butteraugli.SSIMEngine
	calls int
}

func (e *countingEngine) Distance(a, b *butteraugli.Image3F, p butteraugli.Params, pool *threadpool.Pool, distmap *butteraugli.ImageF) (float64, error) {
	e.calls++
	return e.SSIMEngine.Distance(a, b, p, pool, distmap)
}

func TestRoundTripSinglePerceptualPass(t *testing.T) {
	eng := &countingEngine{}
	h := Harness{Comparator: butteraugli.Comparator{Engine: eng}}
	c, err := New("jpeg:q50")
	require.NoError(t, err)

	res, err := h.RoundTrip(c, gradient(16, 16, false))
	require.NoError(t, err)
	// Packed images carry alpha, so one comparison covers two backgrounds.
	assert.Equal(t, 2, eng.calls)
	assert.Positive(t, res.PNorm)
	assert.LessOrEqual(t, res.PNorm, res.Butteraugli+1e-9)
}
