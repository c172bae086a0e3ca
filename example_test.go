package conform_test

import (
	"fmt"

	"github.com/deepteams/conform"
)

func ExampleComparePixels() {
	format := conform.PixelFormat{Channels: 4, Type: conform.Uint8}
	ref := []byte{255, 255, 255, 255, 0, 0, 0, 255}
	got := []byte{255, 255, 254, 255, 0, 0, 0, 250}

	n, err := conform.ComparePixels(ref, got, 2, 1, format, format)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("differing pixels:", n)
	// Output:
	// differing pixels: 1
}

func ExampleCanonicalize() {
	format := conform.PixelFormat{Channels: 1, Type: conform.Uint16, Endianness: conform.BigEndian}
	vals, err := conform.Canonicalize([]byte{0xFF, 0xFF, 0x80, 0x00}, 2, 1, format)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.4f %.4f\n", vals[0], vals[1])
	// Output:
	// 1.0000 0.5000
}

func ExampleDistanceRMS() {
	format := conform.PixelFormat{Channels: 1, Type: conform.Uint8}
	d, _ := conform.DistanceRMS([]byte{0, 0, 0, 0}, []byte{255, 255, 0, 0}, 2, 2, format)
	fmt.Printf("%.4f\n", d)
	// Output:
	// 0.7071
}
