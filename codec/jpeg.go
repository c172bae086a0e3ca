package codec

import (
	"bytes"
	"image"
	"image/jpeg"
)

// DefaultJPEGQuality is the quality used when no q param is given.
const DefaultJPEGQuality = 90

type jpegCodec struct {
	quality int
}

func newJPEG() Codec { return &jpegCodec{quality: DefaultJPEGQuality} }

func (c *jpegCodec) Name() string { return "jpeg" }

// ParseParam accepts q<1..100>.
func (c *jpegCodec) ParseParam(param string) error {
	if q, ok := intParam(param, "q", 1, 100); ok {
		c.quality = q
		return nil
	}
	return unrecognized(param)
}

func (c *jpegCodec) Compress(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *jpegCodec) Decompress(data []byte) (image.Image, error) {
	return jpeg.Decode(bytes.NewReader(data))
}
