package pico

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

// DecodeImage decodes a JPEG or PNG photo from r. This is ambient I/O for
// the detect/render debug subcommands, not part of the training/inference
// core itself, which only ever consumes the packed GrayImage format.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("pico: decoding image: %w", err)
	}
	return img, nil
}

// ToGrayImage converts a decoded color image into the row-major 8-bit
// GrayImage the cascade format operates on, using imaging.Grayscale for the
// RGB-to-luma conversion.
func ToGrayImage(img image.Image) *GrayImage {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()

	pixels := make([]uint8, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			r, _, _, _ := gray.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pixels[y*cols+x] = uint8(r >> 8)
		}
	}
	return &GrayImage{Rows: rows, Cols: cols, Pixels: pixels}
}
