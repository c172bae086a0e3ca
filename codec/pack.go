package codec

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/deepteams/conform"
)

// PackedFormat is the layout produced by Pack: four non-premultiplied
// 16-bit channels, big-endian, rows tightly packed.
var PackedFormat = conform.PixelFormat{
	Channels:   4,
	Type:       conform.Uint16,
	Endianness: conform.BigEndian,
}

// Pack converts img into a packed RGBA buffer in PackedFormat. The image
// origin is moved to (0, 0).
func Pack(img image.Image) ([]byte, conform.PixelFormat, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, PackedFormat, ErrEmptyImage
	}
	if n, ok := img.(*image.NRGBA64); ok && n.Stride == 8*b.Dx() && n.Rect.Min == (image.Point{}) {
		return n.Pix[:8*b.Dx()*b.Dy()], PackedFormat, nil
	}
	dst := image.NewNRGBA64(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst.Pix, PackedFormat, nil
}
