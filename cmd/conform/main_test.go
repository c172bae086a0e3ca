package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/conform/colorenc"
)

// runConform executes the command in process with the given arguments and
// optional stdin data.
func runConform(t *testing.T, stdin []byte, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = run(args, bytes.NewReader(stdin), &outBuf, &errBuf)
	return code, outBuf.String(), errBuf.String()
}

// createTestPNG writes an 8x8 gradient PNG into dir. mutate, if not nil,
// is applied before encoding.
func createTestPNG(t *testing.T, dir, name string, mutate func(*image.NRGBA)) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	if mutate != nil {
		mutate(img)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestUsage(t *testing.T) {
	code, _, stderr := runConform(t, nil)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Usage:")

	code, _, stderr = runConform(t, nil, "bogus")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unknown command "bogus"`)

	code, _, _ = runConform(t, nil, "help")
	assert.Equal(t, 0, code)

	code, _, stderr = runConform(t, nil, "compare", "-h")
	assert.Equal(t, 1, code, "-h is the height flag for compare and needs a value")
	assert.Contains(t, stderr, "flag needs an argument")

	code, _, stderr = runConform(t, nil, "icc", "-help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "-limit")
}

func TestEncodings(t *testing.T) {
	code, stdout, _ := runConform(t, nil, "encodings")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Len(t, lines, 216)
	assert.Contains(t, lines, "RGB_D65_SRG_Rel_SRG")

	code, stdout, _ = runConform(t, nil, "encodings", "-gray")
	require.Equal(t, 0, code)
	lines = strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Len(t, lines, 216+72)
	assert.Contains(t, lines, "Gra_D65_Rel_Lin")

	code, stdout, _ = runConform(t, nil, "encodings", "-icc")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, " bytes\n")
}

func TestICCSynthAndRead(t *testing.T) {
	dir := t.TempDir()
	stream := filepath.Join(dir, "stream.bin")
	extracted := filepath.Join(dir, "profile.icc")

	code, _, stderr := runConform(t, nil, "icc", "-synth", "RGB_D65_SRG_Rel_SRG", "-chunk", "100", "-zstd", "-o", stream)
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runConform(t, nil, "icc", "-o", extracted, stream)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "size:")
	assert.Contains(t, stdout, "desc:       RGB_D65_SRG_Rel_SRG")

	enc, err := colorenc.FromDescriptor(colorenc.Descriptor{
		ColorSpace:       colorenc.RGB,
		WhitePoint:       colorenc.WhiteD65,
		Primaries:        colorenc.PrimariesSRGB,
		TransferFunction: colorenc.TFSRGB,
		RenderingIntent:  colorenc.Relative,
	})
	require.NoError(t, err)
	want, err := enc.CreateProfile()
	require.NoError(t, err)
	got, err := os.ReadFile(extracted)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	data, err := os.ReadFile(stream)
	require.NoError(t, err)
	code, stdout, _ = runConform(t, data, "icc", "-")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "desc:")

	code, _, stderr = runConform(t, nil, "icc", "-limit", "10", stream)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "exceeds output limit")
}

func TestICCEmptyAndMalformed(t *testing.T) {
	// A zero encoded size is a single zero U64 selector.
	code, stdout, stderr := runConform(t, []byte{0}, "icc", "-")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "no embedded profile")

	code, _, stderr = runConform(t, nil, "icc", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "malformed")

	code, _, stderr = runConform(t, nil, "icc", "-synth", "nonsense")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "icc:")
}

func TestCompareImages(t *testing.T) {
	dir := t.TempDir()
	a := createTestPNG(t, dir, "a.png", nil)
	same := createTestPNG(t, dir, "same.png", nil)
	faded := createTestPNG(t, dir, "faded.png", func(img *image.NRGBA) {
		img.SetNRGBA(3, 3, color.NRGBA{R: 96, G: 96, B: 128, A: 250})
	})

	code, stdout, stderr := runConform(t, nil, "compare", a, same)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Pixels:      64\n")
	assert.Contains(t, stdout, "Differing:   0\n")
	assert.Contains(t, stdout, "PSNR:        99.00 dB")

	code, stdout, stderr = runConform(t, nil, "compare", a, faded)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Differing:   1\n")

	code, stdout, stderr = runConform(t, nil, "compare", "-m", "10000", a, faded)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Differing:   0\n")

	code, _, stderr = runConform(t, nil, "compare", a)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "need two inputs")

	code, _, stderr = runConform(t, nil, "compare", a, filepath.Join(dir, "missing.png"))
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}

func TestCompareRaw(t *testing.T) {
	dir := t.TempDir()
	white := bytes.Repeat([]byte{255}, 2*2*4)
	ref := filepath.Join(dir, "ref.raw")
	require.NoError(t, os.WriteFile(ref, white, 0o644))

	code, stdout, stderr := runConform(t, white, "compare", "-w", "2", "-h", "2", "-c", "4", ref, "-")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Differing:   0\n")
	assert.Contains(t, stdout, "RMS:         0\n")

	faded := bytes.Clone(white)
	faded[3] = 250
	code, stdout, stderr = runConform(t, faded, "compare", "-w", "2", "-h", "2", ref, "-")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Differing:   1\n")

	code, _, stderr = runConform(t, white, "compare", "-w", "3", "-h", "2", ref, "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "dimension mismatch")

	code, _, stderr = runConform(t, white, "compare", "-w", "2", "-h", "2", "-t", "int8", ref, "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unsupported")

	code, _, stderr = runConform(t, white, "compare", "-w", "2", "-h", "2", "-", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "conform: compare: stdin can supply only one input")
	assert.NotContains(t, stderr, "dimension mismatch")
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := createTestPNG(t, dir, "in.png", nil)

	code, stdout, stderr := runConform(t, nil, "roundtrip", "-codec", "png:c3", in)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "png:c3 8x8")
	assert.Contains(t, stdout, " 0 differing")

	code, stdout, stderr = runConform(t, nil, "roundtrip", "-codec", "jpeg:q80", "-reps", "2", "-v", in)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "encode:")
	assert.Contains(t, stdout, "2 reps")
	assert.Contains(t, stderr, "round trip")

	code, _, stderr = runConform(t, nil, "roundtrip", "-codec", "nope", in)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown codec")

	code, _, stderr = runConform(t, nil, "roundtrip")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing input")
}
