package lut

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skin-lut-baker/internal/mathutil"
)

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	tests := []struct {
		name string
		mod  func(p *Params)
	}{
		{"width 1", func(p *Params) { p.Width = 1 }},
		{"height 0", func(p *Params) { p.Height = 0 }},
		{"negative softness", func(p *Params) { p.BaseSoftness = -0.1 }},
		{"negative spread", func(p *Params) { p.ScatterSpread = -1 }},
		{"yellowing above 1", func(p *Params) { p.ReduceYellowing = 1.5 }},
		{"zero falloff", func(p *Params) { p.CurvatureFalloff = 0 }},
		{"color above 1", func(p *Params) { p.ScatterColor[1] = 1.2 }},
		{"nan softness", func(p *Params) { p.BaseSoftness = math32.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestValidateSizeSentinel(t *testing.T) {
	assert.ErrorIs(t, ValidateSize(1, 256), ErrInvalidSize)
	assert.ErrorIs(t, ValidateSize(256, 1), ErrInvalidSize)
	assert.NoError(t, ValidateSize(2, 2))
}

func TestCurvatureAndNdotL(t *testing.T) {
	assert.Equal(t, float32(0), Curvature(0, 256, 1))
	assert.Equal(t, float32(1), Curvature(255, 256, 1))
	assert.InDelta(t, 0.25, Curvature(1, 3, 2), 1e-7)
	assert.InDelta(t, math32.Sqrt(0.5), Curvature(1, 3, 0.5), 1e-6)

	assert.Equal(t, float32(-1), NdotL(0, 256))
	assert.Equal(t, float32(1), NdotL(255, 256))
	assert.InDelta(t, 0.0039216, NdotL(128, 256), 1e-6)
}

func TestPurityMult(t *testing.T) {
	// dominant channel keeps full scatter
	assert.Equal(t, float32(1), PurityMult(0.597, 0.597, 1))
	// green of the stock color sits under the 60% threshold
	assert.Equal(t, float32(0), PurityMult(0.266, 0.597, 1))
	assert.Equal(t, float32(1), PurityMult(0.266, 0.597, 0))
	assert.InDelta(t, 0.7, PurityMult(0.266, 0.597, 0.3), 1e-6)
	// halfway between the thresholds
	assert.InDelta(t, 0.5, PurityMult(0.75, 1, 1), 1e-6)
	// black scatter color: every channel is non-dominant
	assert.InDelta(t, 0.4, PurityMult(0, 0, 0.6), 1e-6)
}

func TestDeriveRowFlat(t *testing.T) {
	p := DefaultParams()
	rp := DeriveRow(0, p, 0.597)
	for c, cp := range rp {
		assert.Equal(t, float32(0), cp.DirectSigma, "channel %d", c)
		assert.Equal(t, float32(0), cp.ScatterSigma, "channel %d", c)
		assert.Equal(t, float32(1), cp.NormFactor, "channel %d", c)
	}
	assert.InDelta(t, 0.597, rp[0].BlendWeight, 1e-6)
	assert.Equal(t, float32(0), rp[1].BlendWeight)
	assert.Equal(t, float32(0), rp[2].BlendWeight)
}

func TestDeriveRowCurved(t *testing.T) {
	p := DefaultParams()
	rp := DeriveRow(1, p, 0.597)

	assert.InDelta(t, 0.05, rp[0].DirectSigma, 1e-6)
	assert.InDelta(t, 0.05+1.5*0.597, rp[0].ScatterSigma, 1e-5)
	assert.InDelta(t, 0.05, rp[1].ScatterSigma, 1e-6)
	assert.InDelta(t, 0.05, rp[2].ScatterSigma, 1e-6)
	assert.Greater(t, rp[0].NormFactor, float32(1))
}

func TestNormalizationSelfConsistent(t *testing.T) {
	for _, p := range []Params{
		DefaultParams(),
		{Width: 2, Height: 9, BaseSoftness: 2, ScatterColor: [3]float32{1, 1, 1}, ScatterSpread: 4, ReduceYellowing: 0, CurvatureFalloff: 0.1},
		{Width: 2, Height: 9, BaseSoftness: 0, ScatterColor: [3]float32{0.2, 0.9, 0.5}, ScatterSpread: 0.5, ReduceYellowing: 0.5, CurvatureFalloff: 3},
	} {
		maxVal := mathutil.Max3(p.ScatterColor[0], p.ScatterColor[1], p.ScatterColor[2])
		for row := 0; row < p.Height; row++ {
			rp := DeriveRow(Curvature(row, p.Height, p.CurvatureFalloff), p, maxVal)
			for c, cp := range rp {
				peak := mathutil.Lerp(IntegrateDiffuse(0, cp.DirectSigma), IntegrateDiffuse(0, cp.ScatterSigma), cp.BlendWeight)
				assert.InDelta(t, 1, cp.NormFactor*peak, 1e-5, "row %d channel %d", row, c)
				assert.InDelta(t, 1, cp.Eval(0), 1e-5, "row %d channel %d", row, c)
			}
		}
	}
}
