package codec

import (
	"bytes"
	"image"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// bmp is 8 bits per channel and lossless for 8-bit input. It takes no
// params.
type bmpCodec struct{}

func newBMP() Codec { return bmpCodec{} }

func (bmpCodec) Name() string { return "bmp" }

func (bmpCodec) ParseParam(param string) error { return unrecognized(param) }

func (bmpCodec) Compress(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (bmpCodec) Decompress(data []byte) (image.Image, error) {
	return bmp.Decode(bytes.NewReader(data))
}

type tiffCodec struct {
	opts tiff.Options
}

func newTIFF() Codec {
	return &tiffCodec{opts: tiff.Options{Compression: tiff.Deflate}}
}

func (c *tiffCodec) Name() string { return "tiff" }

// ParseParam accepts "none" and "deflate".
func (c *tiffCodec) ParseParam(param string) error {
	switch param {
	case "none":
		c.opts.Compression = tiff.Uncompressed
	case "deflate":
		c.opts.Compression = tiff.Deflate
	default:
		return unrecognized(param)
	}
	return nil
}

func (c *tiffCodec) Compress(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &c.opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *tiffCodec) Decompress(data []byte) (image.Image, error) {
	return tiff.Decode(bytes.NewReader(data))
}
