package encode

import (
	"image"

	"golang.org/x/image/draw"
)

// Preview resizes img to a size×size square with CatmullRom filtering.
// Images already at that size are returned unchanged.
func Preview(img *image.NRGBA, size int) *image.NRGBA {
	b := img.Bounds()
	if size <= 0 || (b.Dx() == size && b.Dy() == size) {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
