package lut

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"skin-lut-baker/internal/mathutil"
)

// ErrInvalidSize is returned for grids narrower or shorter than two pixels;
// both axes are normalized by (n-1).
var ErrInvalidSize = errors.New("lut: width and height must be at least 2")

const (
	// Channels at or below this share of the strongest scatter channel get
	// no purity protection; at or above dominanceHigh they get full.
	dominanceLow  = 0.6
	dominanceHigh = 0.9

	// Guards for the dominance ratio and the peak normalization.
	minMaxChannel = 0.0001
	minPeak       = 0.0001
)

// Params is the immutable input of a physics-based bake.
type Params struct {
	Width  int
	Height int

	// BaseSoftness is the shadow-edge blur radius shared by all channels.
	BaseSoftness float32

	// ScatterColor tints the subsurface scatter lobe, components in [0, 1].
	ScatterColor [3]float32

	// ScatterSpread scales how far the scatter color bleeds past the terminator.
	ScatterSpread float32

	// ReduceYellowing suppresses the scatter of non-dominant channels.
	ReduceYellowing float32

	// CurvatureFalloff shapes the vertical axis: 1 linear, <1 convex, >1 concave.
	CurvatureFalloff float32
}

// DefaultParams returns the stock skin preset at 256×256.
func DefaultParams() Params {
	return Params{
		Width:            256,
		Height:           256,
		BaseSoftness:     0.05,
		ScatterColor:     [3]float32{0.597, 0.266, 0.0182},
		ScatterSpread:    1.5,
		ReduceYellowing:  1.0,
		CurvatureFalloff: 1.0,
	}
}

// Validate rejects parameters that would divide by zero or leave the
// documented domain. It never clamps.
func (p Params) Validate() error {
	if err := ValidateSize(p.Width, p.Height); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"base softness", p.BaseSoftness},
		{"scatter spread", p.ScatterSpread},
		{"reduce yellowing", p.ReduceYellowing},
		{"curvature falloff", p.CurvatureFalloff},
		{"scatter color r", p.ScatterColor[0]},
		{"scatter color g", p.ScatterColor[1]},
		{"scatter color b", p.ScatterColor[2]},
	} {
		if !mathutil.IsFinite(f.v) {
			return fmt.Errorf("lut: %s is not finite", f.name)
		}
	}
	if p.BaseSoftness < 0 {
		return fmt.Errorf("lut: base softness %g < 0", p.BaseSoftness)
	}
	if p.ScatterSpread < 0 {
		return fmt.Errorf("lut: scatter spread %g < 0", p.ScatterSpread)
	}
	if p.ReduceYellowing < 0 || p.ReduceYellowing > 1 {
		return fmt.Errorf("lut: reduce yellowing %g outside [0, 1]", p.ReduceYellowing)
	}
	if p.CurvatureFalloff <= 0 {
		return fmt.Errorf("lut: curvature falloff %g must be > 0", p.CurvatureFalloff)
	}
	for c, v := range p.ScatterColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("lut: scatter color[%d] %g outside [0, 1]", c, v)
		}
	}
	return nil
}

// ValidateSize checks the grid dimensions shared by every bake mode.
func ValidateSize(w, h int) error {
	if w < 2 || h < 2 {
		return fmt.Errorf("%w (got %dx%d)", ErrInvalidSize, w, h)
	}
	return nil
}

// ChannelParams are the per-row, per-channel lobe settings.
type ChannelParams struct {
	DirectSigma  float32
	ScatterSigma float32
	BlendWeight  float32
	NormFactor   float32
}

// Eval returns the normalized dual-lobe response at angle.
func (cp ChannelParams) Eval(angle float32) float32 {
	direct := IntegrateDiffuse(angle, cp.DirectSigma)
	scatter := IntegrateDiffuse(angle, cp.ScatterSigma)
	return mathutil.Lerp(direct, scatter, cp.BlendWeight) * cp.NormFactor
}

// RowParams caches the three channel settings of one row.
type RowParams [3]ChannelParams

// Curvature maps a texture row to t = (row/(height-1))^falloff.
func Curvature(row, height int, falloff float32) float32 {
	return math32.Pow(float32(row)/float32(height-1), falloff)
}

// NdotL maps a column to the cosine term in [-1, 1].
func NdotL(x, width int) float32 {
	return mathutil.Clamp(float32(x)/float32(width-1)*2-1, -1, 1)
}

// PurityMult returns the scatter multiplier of a channel: dominant channels
// keep 1, channels under 60% of maxVal fall towards 1-reduceYellowing.
func PurityMult(ch, maxVal, reduceYellowing float32) float32 {
	var ratio float32
	if maxVal > minMaxChannel {
		ratio = ch / maxVal
	}
	dominance := mathutil.Clamp01((ratio - dominanceLow) / (dominanceHigh - dominanceLow))
	return mathutil.Lerp(1-reduceYellowing, 1, dominance)
}

// DeriveRow computes the channel settings of a row of curvature t. maxVal is
// the largest scatter color component, computed once per bake.
func DeriveRow(t float32, p Params, maxVal float32) RowParams {
	var rp RowParams
	for c := range rp {
		ch := p.ScatterColor[c]
		purity := PurityMult(ch, maxVal, p.ReduceYellowing)

		directRadius := p.BaseSoftness
		scatterRadius := p.BaseSoftness + p.ScatterSpread*ch*purity

		cp := ChannelParams{
			DirectSigma:  t * directRadius,
			ScatterSigma: t * scatterRadius,
			BlendWeight:  mathutil.Clamp01(ch * purity),
			NormFactor:   1,
		}

		peak := mathutil.Lerp(IntegrateDiffuse(0, cp.DirectSigma), IntegrateDiffuse(0, cp.ScatterSigma), cp.BlendWeight)
		if peak > minPeak {
			cp.NormFactor = 1 / peak
		}
		rp[c] = cp
	}
	return rp
}
