package mathutil

// RGBA is a linear float color (value type, stack-allocated).
type RGBA [4]float32

// Lerp interpolates every component towards b, t clamped to [0, 1].
func (c RGBA) Lerp(b RGBA, t float32) RGBA {
	t = Clamp01(t)
	return RGBA{
		c[0] + (b[0]-c[0])*t,
		c[1] + (b[1]-c[1])*t,
		c[2] + (b[2]-c[2])*t,
		c[3] + (b[3]-c[3])*t,
	}
}
