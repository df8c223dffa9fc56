package lut

import (
	"github.com/chewxy/math32"

	"skin-lut-baker/internal/mathutil"
)

// Sample performs bilinear filtering with clamped UVs, the way a renderer
// reads the LUT: u follows NdotL*0.5+0.5, v follows curvature. A NaN
// coordinate reads as 0.
func (m *Image) Sample(u, v float32) mathutil.RGBA {
	u = clampUV(u)
	v = clampUV(v)

	fx := u * float32(m.Width-1)
	fy := v * float32(m.Height-1)
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	x1 := min(x0+1, m.Width-1)
	y1 := min(y0+1, m.Height-1)
	dx := fx - float32(x0)
	dy := fy - float32(y0)

	lo := m.Pixel(x0, y0).Lerp(m.Pixel(x1, y0), dx)
	hi := m.Pixel(x0, y1).Lerp(m.Pixel(x1, y1), dx)
	return lo.Lerp(hi, dy)
}

// Lookup samples the LUT for a cosine term in [-1, 1] and a vertical
// coordinate v in [0, 1].
func (m *Image) Lookup(ndotl, v float32) mathutil.RGBA {
	return m.Sample(ndotl*0.5+0.5, v)
}

func clampUV(x float32) float32 {
	if math32.IsNaN(x) {
		return 0
	}
	return mathutil.Clamp01(x)
}
