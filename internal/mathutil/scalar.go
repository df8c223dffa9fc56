package mathutil

import "github.com/chewxy/math32"

// Lerp returns a + (b-a)*t with t clamped to [0, 1].
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*Clamp01(t)
}

// Clamp01 clamps v to [0, 1].
func Clamp01(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Clamp clamps v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Max3 returns the largest of three values.
func Max3(a, b, c float32) float32 {
	return math32.Max(a, math32.Max(b, c))
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
