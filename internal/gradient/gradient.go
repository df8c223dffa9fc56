// Package gradient evaluates keyed color ramps and bakes the artistic
// two-gradient LUT.
package gradient

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"skin-lut-baker/internal/mathutil"
)

// MaxKeys is the largest number of color or alpha keys a gradient accepts.
const MaxKeys = 8

var ErrNoKeys = errors.New("gradient: at least one color key and one alpha key required")

// Mode selects how colors between keys are computed.
type Mode int

const (
	// Blend interpolates linearly between neighbouring keys.
	Blend Mode = iota
	// Fixed holds the color of the next key at or after t.
	Fixed
)

func (m Mode) String() string {
	switch m {
	case Blend:
		return "blend"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts "blend" or "fixed"; empty means Blend.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "blend":
		return Blend, nil
	case "fixed":
		return Fixed, nil
	}
	return Blend, fmt.Errorf("gradient: unknown mode %q", s)
}

// ColorKey pins a color at a position in [0, 1].
type ColorKey struct {
	Color colorful.Color
	Time  float64
}

// AlphaKey pins an alpha value at a position in [0, 1].
type AlphaKey struct {
	Alpha float64
	Time  float64
}

// Gradient is an immutable keyed ramp. Build it with New.
type Gradient struct {
	mode   Mode
	colors []ColorKey
	alphas []AlphaKey
}

// New validates and sorts the keys. The slices are copied.
func New(mode Mode, colors []ColorKey, alphas []AlphaKey) (*Gradient, error) {
	if len(colors) == 0 || len(alphas) == 0 {
		return nil, ErrNoKeys
	}
	if len(colors) > MaxKeys || len(alphas) > MaxKeys {
		return nil, fmt.Errorf("gradient: %d color / %d alpha keys, max %d each", len(colors), len(alphas), MaxKeys)
	}
	for i, k := range colors {
		if k.Time < 0 || k.Time > 1 {
			return nil, fmt.Errorf("gradient: color key %d time %g outside [0, 1]", i, k.Time)
		}
	}
	for i, k := range alphas {
		if k.Time < 0 || k.Time > 1 {
			return nil, fmt.Errorf("gradient: alpha key %d time %g outside [0, 1]", i, k.Time)
		}
	}

	g := &Gradient{
		mode:   mode,
		colors: append([]ColorKey(nil), colors...),
		alphas: append([]AlphaKey(nil), alphas...),
	}
	sort.SliceStable(g.colors, func(i, j int) bool { return g.colors[i].Time < g.colors[j].Time })
	sort.SliceStable(g.alphas, func(i, j int) bool { return g.alphas[i].Time < g.alphas[j].Time })
	return g, nil
}

// MustNew is New for static key sets; it panics on error.
func MustNew(mode Mode, colors []ColorKey, alphas []AlphaKey) *Gradient {
	g, err := New(mode, colors, alphas)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Gradient) Mode() Mode { return g.mode }

func (g *Gradient) ColorKeys() []ColorKey { return append([]ColorKey(nil), g.colors...) }

func (g *Gradient) AlphaKeys() []AlphaKey { return append([]AlphaKey(nil), g.alphas...) }

// Evaluate returns the ramp color at t. Outside the key range the end keys
// are held.
func (g *Gradient) Evaluate(t float32) mathutil.RGBA {
	tt := float64(t)

	c := g.evalColor(tt)
	a := g.evalAlpha(tt)
	return mathutil.RGBA{float32(c.R), float32(c.G), float32(c.B), float32(a)}
}

func (g *Gradient) evalColor(t float64) colorful.Color {
	keys := g.colors
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time >= t })
	switch {
	case i == 0:
		return keys[0].Color
	case i == len(keys):
		return keys[len(keys)-1].Color
	case g.mode == Fixed:
		return keys[i].Color
	}
	lo, hi := keys[i-1], keys[i]
	return lo.Color.BlendRgb(hi.Color, span(lo.Time, hi.Time, t))
}

func (g *Gradient) evalAlpha(t float64) float64 {
	keys := g.alphas
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time >= t })
	switch {
	case i == 0:
		return keys[0].Alpha
	case i == len(keys):
		return keys[len(keys)-1].Alpha
	case g.mode == Fixed:
		return keys[i].Alpha
	}
	lo, hi := keys[i-1], keys[i]
	return lo.Alpha + (hi.Alpha-lo.Alpha)*span(lo.Time, hi.Time, t)
}

// span returns where t sits between two key times.
func span(t0, t1, t float64) float64 {
	if t1 <= t0 {
		return 1
	}
	return (t - t0) / (t1 - t0)
}

// HexKey builds a color key from a "#rrggbb" string.
func HexKey(hex string, time float64) (ColorKey, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ColorKey{}, fmt.Errorf("gradient: color %q: %w", hex, err)
	}
	return ColorKey{Color: c, Time: time}, nil
}

// RGBKey builds a color key from float components.
func RGBKey(r, g, b, time float64) ColorKey {
	return ColorKey{Color: colorful.Color{R: r, G: g, B: b}, Time: time}
}

// OpaqueAlpha is the alpha key set of a fully opaque ramp.
func OpaqueAlpha() []AlphaKey {
	return []AlphaKey{{Alpha: 1, Time: 0}, {Alpha: 1, Time: 1}}
}
