package lut

import (
	"image"
	"image/color"

	"skin-lut-baker/internal/mathutil"
)

// Image is a float RGBA grid stored as one flat slice for cache locality.
//
// Rows are addressed in texture space: row 0 is the bottom of the texture
// (curvature 0). The image.Image methods use top-down image coordinates, so
// At(x, 0) reads the last row.
type Image struct {
	Width  int
	Height int
	Pix    []float32 // RGBA interleaved, len = W*H*4
}

// NewImage allocates a zeroed width×height grid.
func NewImage(w, h int) *Image {
	return &Image{
		Width:  w,
		Height: h,
		Pix:    make([]float32, w*h*4),
	}
}

// Offset returns the index of the R component of (x, row) in Pix.
func (m *Image) Offset(x, row int) int {
	return (row*m.Width + x) * 4
}

// Pixel returns the color at column x, texture row.
func (m *Image) Pixel(x, row int) mathutil.RGBA {
	i := m.Offset(x, row)
	return mathutil.RGBA{m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]}
}

// SetPixel stores c at column x, texture row.
func (m *Image) SetPixel(x, row int, c mathutil.RGBA) {
	i := m.Offset(x, row)
	m.Pix[i] = c[0]
	m.Pix[i+1] = c[1]
	m.Pix[i+2] = c[2]
	m.Pix[i+3] = c[3]
}

// Row returns the Pix sub-slice holding one texture row.
func (m *Image) Row(row int) []float32 {
	i := m.Offset(0, row)
	return m.Pix[i : i+m.Width*4]
}

func (m *Image) ColorModel() color.Model { return color.NRGBA64Model }

func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// At clamps the float components to [0, 1]. No transfer curve is applied.
func (m *Image) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return color.NRGBA64{}
	}
	c := m.Pixel(x, m.Height-1-y)
	return color.NRGBA64{
		R: unorm16(c[0]),
		G: unorm16(c[1]),
		B: unorm16(c[2]),
		A: unorm16(c[3]),
	}
}

func unorm16(v float32) uint16 {
	return uint16(mathutil.Clamp01(v)*65535 + 0.5)
}
