package encode

import (
	"fmt"
	"image"
	"math"
	"strings"

	"skin-lut-baker/internal/lut"
	"skin-lut-baker/internal/mathutil"
)

// Transfer is the curve applied when quantizing to 8 bits.
type Transfer int

const (
	// Linear stores the clamped values as-is. LUTs are linear data.
	Linear Transfer = iota
	// SRGB applies the display gamma; meant for previews only.
	SRGB
)

func (t Transfer) String() string {
	if t == SRGB {
		return "srgb"
	}
	return "linear"
}

// ParseTransfer accepts "linear" or "srgb"; empty means Linear.
func ParseTransfer(s string) (Transfer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return Linear, nil
	case "srgb", "gamma":
		return SRGB, nil
	}
	return Linear, fmt.Errorf("encode: unknown transfer %q", s)
}

const srgbTableSize = 4096

// Precomputed linear-to-sRGB lookup table over [0, 1].
var linearToSRGB [srgbTableSize + 1]uint8

func init() {
	for i := range linearToSRGB {
		v := float64(i) / srgbTableSize
		var s float64
		if v <= 0.0031308 {
			s = v * 12.92
		} else {
			s = 1.055*math.Pow(v, 1/2.4) - 0.055
		}
		linearToSRGB[i] = uint8(s*255 + 0.5)
	}
}

func quantize(v float32, t Transfer) uint8 {
	v = mathutil.Clamp01(v)
	if t == SRGB {
		return linearToSRGB[int(v*srgbTableSize+0.5)]
	}
	return uint8(v*255 + 0.5)
}

// ToNRGBA converts the float grid to 8 bits in top-down image orientation.
// Alpha is always stored linearly.
func ToNRGBA(img *lut.Image, t Transfer) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		src := img.Row(img.Height - 1 - y)
		di := dst.PixOffset(0, y)
		for i := 0; i < img.Width*4; i += 4 {
			dst.Pix[di+i] = quantize(src[i], t)
			dst.Pix[di+i+1] = quantize(src[i+1], t)
			dst.Pix[di+i+2] = quantize(src[i+2], t)
			dst.Pix[di+i+3] = quantize(src[i+3], Linear)
		}
	}
	return dst
}

// FromImage converts a decoded 8/16-bit image back to a float grid,
// flipping it into texture row order.
func FromImage(src image.Image) *lut.Image {
	b := src.Bounds()
	img := lut.NewImage(b.Dx(), b.Dy())
	for y := 0; y < img.Height; y++ {
		row := img.Row(img.Height - 1 - y)
		for x := 0; x < img.Width; x++ {
			r, g, bl, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := x * 4
			if a > 0 {
				// un-premultiply
				row[i] = float32(r) / float32(a)
				row[i+1] = float32(g) / float32(a)
				row[i+2] = float32(bl) / float32(a)
			}
			row[i+3] = float32(a) / 0xffff
		}
	}
	return img
}
