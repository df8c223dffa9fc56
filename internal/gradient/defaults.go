package gradient

// DefaultTop is the high-curvature ramp: a soft transition with deep red
// bleeding into the shadow.
func DefaultTop() *Gradient {
	return MustNew(Blend, []ColorKey{
		RGBKey(0, 0, 0, 0),
		RGBKey(0.15, 0, 0, 0.2),
		RGBKey(0.65, 0.15, 0.05, 0.45),
		RGBKey(0.85, 0.65, 0.55, 0.65),
		RGBKey(0.95, 0.95, 0.95, 1),
	}, OpaqueAlpha())
}

// DefaultBottom is the low-curvature ramp: sharper, keeping a narrow red band.
func DefaultBottom() *Gradient {
	return MustNew(Blend, []ColorKey{
		RGBKey(0, 0, 0, 0),
		RGBKey(0, 0, 0, 0.42),
		RGBKey(0.55, 0.05, 0.02, 0.48),
		RGBKey(0.85, 0.75, 0.7, 0.55),
		RGBKey(0.95, 0.95, 0.95, 1),
	}, OpaqueAlpha())
}
