// Command conform checks how faithfully images survive a codec round trip
// and inspects embedded ICC profile streams.
//
// Usage:
//
//	conform compare [options] <a> <b>       Compare two images or raw buffers (use "-" for stdin)
//	conform encodings [options]             List the color encodings a codec must preserve
//	conform icc [options] <stream>          Read an ICC profile stream and print its header
//	conform roundtrip [options] <image>...  Compress, decompress and score images
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/deepteams/conform"
	"github.com/deepteams/conform/butteraugli"
	"github.com/deepteams/conform/codec" // also registers the WebP decoder
	"github.com/deepteams/conform/colorenc"
	"github.com/deepteams/conform/iccstream"
	"github.com/deepteams/conform/threadpool"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cli carries the standard streams so subcommands can run in tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	if len(args) < 1 {
		c.printUsage()
		return 1
	}

	var err error
	switch args[0] {
	case "compare":
		err = c.runCompare(args[1:])
	case "encodings":
		err = c.runEncodings(args[1:])
	case "icc":
		err = c.runICC(args[1:])
	case "roundtrip":
		err = c.runRoundTrip(args[1:])
	case "-h", "-help", "--help", "help":
		c.printUsage()
		return 0
	default:
		fmt.Fprintf(stderr, "conform: unknown command %q\n\n", args[0])
		c.printUsage()
		return 1
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "conform: %v\n", err)
		return 1
	}
	return 0
}

func (c *cli) printUsage() {
	fmt.Fprintf(c.stderr, `Usage:
  conform compare [options] <a> <b>       Compare two images or raw pixel buffers
  conform encodings [options]             List the color encodings a codec must preserve
  conform icc [options] <stream>          Read an ICC profile stream and print its header
  conform roundtrip [options] <image>...  Compress, decompress and score images

Use "-" as input to read from stdin.

Run "conform <command> -h" for command-specific options.
`)
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) logger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
}

// readInput reads the whole file at path, or stdin when path is "-".
func (c *cli) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(c.stdin)
	}
	return os.ReadFile(path)
}

func (c *cli) decodeImage(path string) (image.Image, string, error) {
	if path == "-" {
		return image.Decode(c.stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return img, format, nil
}

// --- compare ---

func (c *cli) runCompare(args []string) error {
	fs := c.flagSet("compare")
	mult := fs.Float64("m", 1, "tolerance threshold multiplier")
	width := fs.Int("w", 0, "raw buffer width (0 = decode image files)")
	height := fs.Int("h", 0, "raw buffer height")
	channels := fs.Int("c", 4, "raw channels 1-4")
	typ := fs.String("t", "uint8", "raw sample type: uint8/uint16/float16/float32/uint32")
	endian := fs.String("e", "native", "raw byte order: native/little/big")
	align := fs.Int("align", 0, "raw row alignment in bytes")
	desc := fs.String("color", "", "color encoding of both inputs, e.g. RGB_D65_SRG_Rel_SRG (default sRGB)")
	threads := fs.Int("threads", 0, "worker count for the perceptual metric (0 = all CPUs)")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("compare: need two inputs\nUsage: conform compare [options] <a> <b>")
	}
	if fs.Arg(0) == "-" && fs.Arg(1) == "-" {
		return errors.New("compare: stdin can supply only one input")
	}
	log := c.logger(*verbose)

	var (
		a, b   []byte
		w, h   int
		format conform.PixelFormat
		err    error
	)
	if *width > 0 {
		dt, err := conform.ParseDataType(*typ)
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		bo, err := conform.ParseEndianness(*endian)
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		format = conform.PixelFormat{Channels: *channels, Type: dt, Endianness: bo, Align: *align}
		w, h = *width, *height
		if a, err = c.readInput(fs.Arg(0)); err != nil {
			return err
		}
		if b, err = c.readInput(fs.Arg(1)); err != nil {
			return err
		}
	} else {
		ia, fa, err := c.decodeImage(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		ib, fb, err := c.decodeImage(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		log.Debug("decoded inputs", "a", fa, "b", fb, "bounds", ia.Bounds())
		if ia.Bounds().Size() != ib.Bounds().Size() {
			return fmt.Errorf("compare: %w: %v vs %v", conform.ErrDimensionMismatch, ia.Bounds().Size(), ib.Bounds().Size())
		}
		w, h = ia.Bounds().Dx(), ia.Bounds().Dy()
		if a, format, err = codec.Pack(ia); err != nil {
			return err
		}
		if b, _, err = codec.Pack(ib); err != nil {
			return err
		}
	}
	log.Debug("comparing", "width", w, "height", h, "format", format.String())

	var color colorenc.Descriptor
	if *desc != "" {
		if color, err = colorenc.ParseDescription(*desc); err != nil {
			return fmt.Errorf("compare: %w", err)
		}
	}

	rep, err := conform.ComparePixelsReport(a, b, w, h, format, format, conform.WithThresholdMultiplier(*mult))
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}
	rms, err := conform.DistanceRMS(a, b, w, h, format)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}
	psnr, err := conform.PSNR(a, b, w, h, format)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	pool := threadpool.New(*threads)
	pa := &butteraugli.PackedPixelFile{Width: w, Height: h, Format: format, Color: color, Frames: []butteraugli.PackedFrame{{Pixels: a}}}
	pb := &butteraugli.PackedPixelFile{Width: w, Height: h, Format: format, Color: color, Frames: []butteraugli.PackedFrame{{Pixels: b}}}
	var cmp butteraugli.Comparator
	distmap := &butteraugli.ImageF{}
	ba, err := cmp.Distance(pa, pb, distmap, pool)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}
	pnorm := butteraugli.ComputeDistanceP(distmap, 3)

	fmt.Fprintf(c.stdout, "Pixels:      %d\n", rep.Pixels)
	fmt.Fprintf(c.stdout, "Differing:   %d\n", rep.Differing)
	for _, role := range []conform.Role{conform.RoleColor, conform.RoleGray, conform.RoleAlpha} {
		if worst, ok := rep.Worst[role]; ok {
			fmt.Fprintf(c.stdout, "Worst %-6s %.6g (tolerance %.6g)\n", role.String()+":", worst, rep.Tolerance[role])
		}
	}
	fmt.Fprintf(c.stdout, "RMS:         %.6g\n", rms)
	fmt.Fprintf(c.stdout, "PSNR:        %.2f dB\n", psnr)
	fmt.Fprintf(c.stdout, "Butteraugli: %.4f\n", ba)
	fmt.Fprintf(c.stdout, "3-norm:      %.4f\n", pnorm)
	return nil
}

// --- encodings ---

func (c *cli) runEncodings(args []string) error {
	fs := c.flagSet("encodings")
	gray := fs.Bool("gray", false, "also list grayscale encodings")
	profiles := fs.Bool("icc", false, "synthesize each ICC profile and print its size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list := colorenc.DefaultAllowList()
	if *gray {
		list.ColorSpaces = append(list.ColorSpaces, colorenc.Gray)
	}
	descs, err := list.Encodings()
	if err != nil {
		return fmt.Errorf("encodings: %w", err)
	}
	for _, d := range descs {
		enc, err := colorenc.FromDescriptor(d)
		if err != nil {
			return fmt.Errorf("encodings: %w", err)
		}
		if !*profiles {
			fmt.Fprintln(c.stdout, enc.Description())
			continue
		}
		icc, err := enc.CreateProfile()
		if err != nil {
			return fmt.Errorf("encodings: %s: %w", enc.Description(), err)
		}
		fmt.Fprintf(c.stdout, "%-24s %d bytes\n", enc.Description(), len(icc))
	}
	return nil
}

// --- icc ---

func (c *cli) runICC(args []string) error {
	fs := c.flagSet("icc")
	limit := fs.Uint64("limit", 0, "maximum profile size in bytes (0 = no limit)")
	synth := fs.String("synth", "", "write a stream holding the profile synthesized for this description instead of reading")
	chunk := fs.Int("chunk", 0, "with -synth: chunk size in bytes (0 = one chunk)")
	compress := fs.Bool("zstd", false, "with -synth: zstd-compress the payload")
	output := fs.String("o", "", `output path: the extracted profile, or with -synth the stream ("-" for stdout)`)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *synth != "" {
		return c.synthICC(*synth, *chunk, *compress, *output)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("icc: missing input file\nUsage: conform icc [options] <stream>")
	}

	data, err := c.readInput(fs.Arg(0))
	if err != nil {
		return err
	}
	var profile []byte
	if err := iccstream.ReadICC(iccstream.NewReader(data), &profile, *limit); err != nil {
		return fmt.Errorf("icc: %w", err)
	}
	if len(profile) == 0 {
		fmt.Fprintln(c.stdout, "no embedded profile")
		return nil
	}
	if *output != "" {
		if err := c.writeOutput(*output, profile); err != nil {
			return err
		}
	}
	sum, err := iccstream.Inspect(profile)
	if err != nil {
		return fmt.Errorf("icc: %w", err)
	}
	fmt.Fprintf(c.stdout, "size:       %d bytes\n", len(profile))
	fmt.Fprint(c.stdout, sum.String())
	return nil
}

func (c *cli) synthICC(desc string, chunk int, compress bool, output string) error {
	d, err := colorenc.ParseDescription(desc)
	if err != nil {
		return fmt.Errorf("icc: %w", err)
	}
	enc, err := colorenc.FromDescriptor(d)
	if err != nil {
		return fmt.Errorf("icc: %w", err)
	}
	profile, err := enc.CreateProfile()
	if err != nil {
		return fmt.Errorf("icc: %w", err)
	}
	w := iccstream.NewWriter()
	if err := iccstream.WriteICC(w, profile, iccstream.WriteOptions{ChunkSize: chunk, Compress: compress}); err != nil {
		return fmt.Errorf("icc: %w", err)
	}
	if output == "" {
		output = "-"
	}
	return c.writeOutput(output, w.Bytes())
}

func (c *cli) writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := c.stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// --- roundtrip ---

func (c *cli) runRoundTrip(args []string) error {
	fs := c.flagSet("roundtrip")
	spec := fs.String("codec", "jpeg:q90", "codec spec name[:param...], one of "+strings.Join(codec.Names(), "/"))
	reps := fs.Int("reps", 1, "timed encode/decode repetitions")
	mult := fs.Float64("m", 1, "tolerance threshold multiplier")
	threads := fs.Int("threads", 0, "worker count for the perceptual metric (0 = all CPUs)")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("roundtrip: missing input file\nUsage: conform roundtrip [options] <image>...")
	}

	cd, err := codec.New(*spec)
	if err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}
	h := codec.Harness{
		Logger:         c.logger(*verbose),
		Pool:           threadpool.New(*threads),
		Reps:           *reps,
		CompareOptions: []conform.CompareOption{conform.WithThresholdMultiplier(*mult)},
	}
	for _, path := range fs.Args() {
		img, _, err := c.decodeImage(path)
		if err != nil {
			return fmt.Errorf("roundtrip: %w", err)
		}
		res, err := h.RoundTrip(cd, img)
		if err != nil {
			return fmt.Errorf("roundtrip: %s: %w", path, err)
		}
		fmt.Fprintf(c.stdout, "%s %s %dx%d: %d bytes %.3f bpp, %d differing, rms %.6g, psnr %.2f dB, butteraugli %.4f, 3-norm %.4f\n",
			path, *spec, res.Width, res.Height, res.CompressedBytes, res.BitsPerPixel,
			res.DifferingPixels, res.RMS, res.PSNR, res.Butteraugli, res.PNorm)
		if *verbose {
			fmt.Fprintf(c.stdout, "  encode: %v\n  decode: %v\n", res.Encode, res.Decode)
		}
	}
	return nil
}
