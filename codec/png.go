package codec

import (
	"bytes"
	"image"
	"image/png"
)

var pngLevels = [...]png.CompressionLevel{
	png.NoCompression,
	png.BestSpeed,
	png.DefaultCompression,
	png.BestCompression,
}

type pngCodec struct {
	enc png.Encoder
}

func newPNG() Codec {
	return &pngCodec{enc: png.Encoder{CompressionLevel: png.DefaultCompression}}
}

func (c *pngCodec) Name() string { return "png" }

// ParseParam accepts c<0..3>, from no compression to best compression.
func (c *pngCodec) ParseParam(param string) error {
	if l, ok := intParam(param, "c", 0, len(pngLevels)-1); ok {
		c.enc.CompressionLevel = pngLevels[l]
		return nil
	}
	return unrecognized(param)
}

func (c *pngCodec) Compress(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *pngCodec) Decompress(data []byte) (image.Image, error) {
	return png.Decode(bytes.NewReader(data))
}
