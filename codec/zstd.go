package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/klauspost/compress/zstd"
)

var errCorruptZstd = errors.New("codec: corrupt zstd stream")

// zstdCodec stores the packed 16-bit RGBA samples of an image as a single
// zstd frame behind a uvarint width/height header. It is lossless for any
// input up to 16 bits per channel.
type zstdCodec struct {
	level zstd.EncoderLevel
}

func newZstd() Codec { return &zstdCodec{level: zstd.SpeedDefault} }

func (c *zstdCodec) Name() string { return "zstd" }

// ParseParam accepts l<1..4>, from fastest to best compression.
func (c *zstdCodec) ParseParam(param string) error {
	l, ok := intParam(param, "l", int(zstd.SpeedFastest), int(zstd.SpeedBestCompression))
	if !ok {
		return unrecognized(param)
	}
	c.level = zstd.EncoderLevel(l)
	return nil
}

func (c *zstdCodec) Compress(img image.Image) ([]byte, error) {
	pix, _, err := Pack(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	hdr := binary.AppendUvarint(nil, uint64(b.Dx()))
	hdr = binary.AppendUvarint(hdr, uint64(b.Dy()))

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(pix, hdr), nil
}

func (c *zstdCodec) Decompress(data []byte) (image.Image, error) {
	w, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errCorruptZstd
	}
	data = data[n:]
	h, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errCorruptZstd
	}
	data = data[n:]
	const maxDim = 1 << 16
	if w == 0 || h == 0 || w > maxDim || h > maxDim {
		return nil, fmt.Errorf("%w: dimensions %dx%d", errCorruptZstd, w, h)
	}
	size := w * h * 8

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(size))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	pix, err := dec.DecodeAll(data, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptZstd, err)
	}
	if uint64(len(pix)) != size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errCorruptZstd, len(pix), size)
	}
	img := image.NewNRGBA64(image.Rect(0, 0, int(w), int(h)))
	copy(img.Pix, pix)
	return img, nil
}
