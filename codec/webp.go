package codec

import (
	"bytes"
	"image"

	"github.com/HugoSmits86/nativewebp"
)

// webpCodec writes lossless VP8L. Importing this package registers the
// WebP decoder with the image package.
type webpCodec struct {
	opts nativewebp.Options
}

func newWebP() Codec { return &webpCodec{} }

func (c *webpCodec) Name() string { return "webp" }

// ParseParam accepts "ext", which wraps the bitstream in a VP8X container.
func (c *webpCodec) ParseParam(param string) error {
	if param != "ext" {
		return unrecognized(param)
	}
	c.opts.UseExtendedFormat = true
	return nil
}

func (c *webpCodec) Compress(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, &c.opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *webpCodec) Decompress(data []byte) (image.Image, error) {
	// VP8X streams from the encoder set the alpha flag without an ALPH
	// chunk, which the plain decoder rejects.
	return nativewebp.DecodeIgnoreAlphaFlag(bytes.NewReader(data))
}
