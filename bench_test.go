package conform

import (
	"math/rand"
	"testing"
)

func benchBuffers(b *testing.B, f PixelFormat) ([]byte, []byte) {
	rng := rand.New(rand.NewSource(1))
	a := randomBuffer(rng, 640, 480, f)
	c := randomBuffer(rng, 640, 480, f)
	return a, c
}

func BenchmarkCanonicalize_RGBA8(b *testing.B) {
	f := PixelFormat{Channels: 4, Type: Uint8}
	a, _ := benchBuffers(b, f)
	b.SetBytes(int64(len(a)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Canonicalize(a, 640, 480, f); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCanonicalize_RGBAF16(b *testing.B) {
	f := PixelFormat{Channels: 4, Type: Float16, Endianness: BigEndian}
	a, _ := benchBuffers(b, f)
	b.SetBytes(int64(len(a)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Canonicalize(a, 640, 480, f); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkComparePixels_RGBA16(b *testing.B) {
	f := PixelFormat{Channels: 4, Type: Uint16, Endianness: LittleEndian}
	a, c := benchBuffers(b, f)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ComparePixels(a, c, 640, 480, f, f); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDistanceRMS_RGB8(b *testing.B) {
	f := PixelFormat{Channels: 3, Type: Uint8}
	a, c := benchBuffers(b, f)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DistanceRMS(a, c, 640, 480, f); err != nil {
			b.Fatal(err)
		}
	}
}
