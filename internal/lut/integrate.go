package lut

import "github.com/chewxy/math32"

const (
	// DiffuseSteps is the number of intervals the ±3σ integration range is
	// split into. Both ends are sampled, so the DiffuseSteps+1 points sit
	// symmetrically around the angle. An accumulating float loop over the same
	// range yields 64 or 65 samples depending on rounding; this one is fixed.
	DiffuseSteps = 64

	// DiffuseRange is the half-width of the integration range in sigmas.
	DiffuseRange = 3.0

	// Below this sigma the integrator returns the analytic Lambert term.
	minBlurSigma = 0.001

	// Below this sigma the Gaussian collapses to a unit impulse.
	minGaussianSigma = 0.0001
)

var invSqrt2Pi = 1 / math32.Sqrt(2*math32.Pi)

// Gaussian returns the centered normal density at x.
func Gaussian(x, sigma float32) float32 {
	if sigma <= minGaussianSigma {
		if x == 0 {
			return 1
		}
		return 0
	}
	return invSqrt2Pi / sigma * math32.Exp(-(x*x)/(2*sigma*sigma))
}

// Lambert returns max(0, cos(angle)).
func Lambert(angle float32) float32 {
	return math32.Max(0, math32.Cos(angle))
}

// IntegrateDiffuse returns the Lambert term blurred across angle by a
// Gaussian of the given sigma, as a Gaussian-weighted average of
// DiffuseSteps+1 evenly spaced samples over [-3σ, +3σ].
func IntegrateDiffuse(angle, sigma float32) float32 {
	if sigma < minBlurSigma {
		return Lambert(angle)
	}

	rng := DiffuseRange * sigma
	step := rng * 2 / DiffuseSteps

	var sum, weightSum float32
	for i := 0; i <= DiffuseSteps; i++ {
		offset := -rng + float32(i)*step
		w := Gaussian(offset, sigma)
		sum += Lambert(angle+offset) * w
		weightSum += w
	}
	return sum / weightSum
}
