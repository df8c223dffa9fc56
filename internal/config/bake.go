package config

import (
	"errors"
	"fmt"

	"skin-lut-baker/internal/encode"
	"skin-lut-baker/internal/exr"
	"skin-lut-baker/internal/gradient"
	"skin-lut-baker/internal/lut"
)

// Gradient is the file form of a keyed ramp.
type Gradient struct {
	Mode   string     `json:"mode,omitempty" toml:"mode,omitempty" yaml:"mode,omitempty"`
	Colors []ColorKey `json:"colors" toml:"colors" yaml:"colors"`
	Alphas []AlphaKey `json:"alphas,omitempty" toml:"alphas,omitempty" yaml:"alphas,omitempty"`
}

// ColorKey takes either rgb components or a hex string.
type ColorKey struct {
	RGB  []float64 `json:"rgb,omitempty" toml:"rgb,omitempty" yaml:"rgb,omitempty,flow"`
	Hex  string    `json:"hex,omitempty" toml:"hex,omitempty" yaml:"hex,omitempty"`
	Time float64   `json:"time" toml:"time" yaml:"time"`
}

type AlphaKey struct {
	Alpha float64 `json:"alpha" toml:"alpha" yaml:"alpha"`
	Time  float64 `json:"time" toml:"time" yaml:"time"`
}

// Build converts the file form into a gradient. Missing alpha keys mean
// fully opaque.
func (g *Gradient) Build() (*gradient.Gradient, error) {
	mode, err := gradient.ParseMode(g.Mode)
	if err != nil {
		return nil, err
	}

	colors := make([]gradient.ColorKey, len(g.Colors))
	for i, k := range g.Colors {
		switch {
		case k.Hex != "":
			colors[i], err = gradient.HexKey(k.Hex, k.Time)
			if err != nil {
				return nil, err
			}
		case len(k.RGB) == 3:
			colors[i] = gradient.RGBKey(k.RGB[0], k.RGB[1], k.RGB[2], k.Time)
		default:
			return nil, fmt.Errorf("config: color key %d needs rgb[3] or hex", i)
		}
	}

	alphas := gradient.OpaqueAlpha()
	if len(g.Alphas) > 0 {
		alphas = make([]gradient.AlphaKey, len(g.Alphas))
		for i, k := range g.Alphas {
			alphas[i] = gradient.AlphaKey{Alpha: k.Alpha, Time: k.Time}
		}
	}
	return gradient.New(mode, colors, alphas)
}

// FromGradient converts a gradient into its file form.
func FromGradient(g *gradient.Gradient) *Gradient {
	out := &Gradient{Mode: g.Mode().String()}
	for _, k := range g.ColorKeys() {
		out.Colors = append(out.Colors, ColorKey{RGB: []float64{k.Color.R, k.Color.G, k.Color.B}, Time: k.Time})
	}
	for _, k := range g.AlphaKeys() {
		out.Alphas = append(out.Alphas, AlphaKey{Alpha: k.Alpha, Time: k.Time})
	}
	return out
}

// Default returns a fully populated config for the stock skin preset.
func Default() Config {
	p := lut.DefaultParams()
	color := p.ScatterColor
	meta := true
	return Config{
		Mode:             ModePhysics,
		Width:            p.Width,
		Height:           p.Height,
		BaseSoftness:     &p.BaseSoftness,
		ScatterColor:     &color,
		ScatterSpread:    &p.ScatterSpread,
		ReduceYellowing:  &p.ReduceYellowing,
		CurvatureFalloff: &p.CurvatureFalloff,
		GradientTop:      FromGradient(gradient.DefaultTop()),
		GradientBottom:   FromGradient(gradient.DefaultBottom()),
		Output:           DefaultOutput,
		PixelType:        exr.Float.String(),
		Compression:      exr.ZIPCompression.String(),
		PreviewSize:      256,
		PreviewTransfer:  encode.Linear.String(),
		WriteMeta:        &meta,
		Workers:          0,
	}
}

// Params returns the physics inputs. Call after Resolve.
func (c *Config) Params() lut.Params {
	return lut.Params{
		Width:            c.Width,
		Height:           c.Height,
		BaseSoftness:     deref(c.BaseSoftness),
		ScatterColor:     derefColor(c.ScatterColor),
		ScatterSpread:    deref(c.ScatterSpread),
		ReduceYellowing:  deref(c.ReduceYellowing),
		CurvatureFalloff: deref(c.CurvatureFalloff),
	}
}

// Gradients builds the top and bottom ramps. Call after Resolve.
func (c *Config) Gradients() (top, bottom *gradient.Gradient, err error) {
	if c.GradientTop == nil || c.GradientBottom == nil {
		return nil, nil, errors.New("config: gradient_top and gradient_bottom required")
	}
	if top, err = c.GradientTop.Build(); err != nil {
		return nil, nil, fmt.Errorf("config: gradient_top: %w", err)
	}
	if bottom, err = c.GradientBottom.Build(); err != nil {
		return nil, nil, fmt.Errorf("config: gradient_bottom: %w", err)
	}
	return top, bottom, nil
}

// SaveOptions returns the encoder settings of the main output.
func (c *Config) SaveOptions() (encode.Options, error) {
	pt, err := exr.ParsePixelType(c.PixelType)
	if err != nil {
		return encode.Options{}, err
	}
	comp, err := exr.ParseCompression(c.Compression)
	if err != nil {
		return encode.Options{}, err
	}
	o := encode.DefaultOptions()
	o.EXR.PixelType = pt
	o.EXR.Compression = comp
	return o, nil
}

// Transfer returns the preview transfer curve.
func (c *Config) Transfer() (encode.Transfer, error) {
	return encode.ParseTransfer(c.PreviewTransfer)
}

// MetaEnabled reports whether a .meta sidecar should be written.
func (c *Config) MetaEnabled() bool {
	return c.WriteMeta != nil && *c.WriteMeta
}

// Validate checks a resolved config so that a bake can be rejected before
// any work starts.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModePhysics:
		if err := c.Params().Validate(); err != nil {
			return err
		}
	case ModeGradient:
		if err := lut.ValidateSize(c.Width, c.Height); err != nil {
			return err
		}
		if _, _, err := c.Gradients(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}

	if !encode.Supported(c.Output) {
		return fmt.Errorf("config: output %q: unsupported format", c.Output)
	}
	if _, err := c.SaveOptions(); err != nil {
		return err
	}
	if c.Preview != "" {
		if !encode.Supported(c.Preview) || encode.IsHDR(c.Preview) {
			return fmt.Errorf("config: preview %q must be .png, .tga or .webp", c.Preview)
		}
		if _, err := c.Transfer(); err != nil {
			return err
		}
	}
	return nil
}

func deref(p *float32) float32 {
	if p == nil {
		return 0
	}
	return *p
}

func derefColor(p *[3]float32) [3]float32 {
	if p == nil {
		return [3]float32{}
	}
	return *p
}
