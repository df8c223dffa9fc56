package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skin-lut-baker/internal/exr"
	"skin-lut-baker/internal/gradient"
	"skin-lut-baker/internal/lut"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.json": `{"mode": "physics", "width": 64, "reduce_yellowing": 0, "scatter_color": [1, 0.5, 0.25], "output": "out/a.exr"}`,
		"a.toml": "mode = \"physics\"\nwidth = 64\nreduce_yellowing = 0.0\nscatter_color = [1.0, 0.5, 0.25]\noutput = \"out/a.exr\"\n",
		"a.yaml": "mode: physics\nwidth: 64\nreduce_yellowing: 0\nscatter_color: [1, 0.5, 0.25]\noutput: out/a.exr\n",
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, dir, name, body))
			require.NoError(t, err)
			assert.Equal(t, 64, cfg.Width)
			require.NotNil(t, cfg.ReduceYellowing)
			assert.Equal(t, float32(0), *cfg.ReduceYellowing)
			assert.Equal(t, [3]float32{1, 0.5, 0.25}, *cfg.ScatterColor)
			assert.Equal(t, filepath.Join(dir, "out", "a.exr"), cfg.Output)
			assert.Equal(t, "a", cfg.Name)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
	_, err = Load(writeFile(t, dir, "bad.json", "{"))
	assert.Error(t, err)
	_, err = Load(writeFile(t, dir, "cfg.ini", "x=1"))
	assert.Error(t, err)
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})

	assert.Equal(t, ModePhysics, cfg.Mode)
	assert.Equal(t, lut.DefaultParams(), cfg.Params())
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, "T_Pre-Integrated_Lut", cfg.Name)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.True(t, cfg.MetaEnabled())
	assert.Equal(t, 0, cfg.PreviewSize)
	require.NoError(t, cfg.Validate())

	opts, err := cfg.SaveOptions()
	require.NoError(t, err)
	assert.Equal(t, exr.Float, opts.EXR.PixelType)
	assert.Equal(t, exr.ZIPCompression, opts.EXR.Compression)
}

func TestResolveFlagsOverride(t *testing.T) {
	off := false
	soft := float32(0.3)
	cfg := Config{Width: 64, Output: "file.exr", BaseSoftness: &soft}
	cfg.Resolve(Flags{
		Mode:        "Gradient",
		Width:       128,
		Output:      "flag.png",
		PixelType:   "half",
		Preview:     "p.webp",
		WriteMeta:   &off,
		Workers:     3,
		Compression: "zips",
	})

	assert.Equal(t, ModeGradient, cfg.Mode)
	assert.Equal(t, 128, cfg.Width)
	assert.Equal(t, 256, cfg.Height)
	assert.Equal(t, "flag.png", cfg.Output)
	assert.Equal(t, "half", cfg.PixelType)
	assert.Equal(t, 256, cfg.PreviewSize)
	assert.False(t, cfg.MetaEnabled())
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, float32(0.3), cfg.Params().BaseSoftness)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		mod  func(c *Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "artistic" }},
		{"tiny grid", func(c *Config) { c.Width = 1 }},
		{"gradient tiny grid", func(c *Config) { c.Mode = ModeGradient; c.Height = 1 }},
		{"bad output", func(c *Config) { c.Output = "lut.hdr" }},
		{"bad pixel type", func(c *Config) { c.PixelType = "double" }},
		{"hdr preview", func(c *Config) { c.Preview = "p.exr" }},
		{"bad transfer", func(c *Config) { c.Preview = "p.png"; c.PreviewTransfer = "log" }},
		{"negative spread", func(c *Config) { v := float32(-1); c.ScatterSpread = &v }},
		{"bad gradient", func(c *Config) {
			c.Mode = ModeGradient
			c.GradientTop = &Gradient{Colors: []ColorKey{{Time: 0.5}}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.Resolve(Flags{})
			tt.mod(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGradientsDefault(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{Mode: ModeGradient})

	top, bottom, err := cfg.Gradients()
	require.NoError(t, err)
	assert.Equal(t, gradient.DefaultTop().Evaluate(0.3), top.Evaluate(0.3))
	assert.Equal(t, gradient.DefaultBottom().Evaluate(0.5), bottom.Evaluate(0.5))
}

func TestGradientBuildHexAndAlpha(t *testing.T) {
	g := Gradient{
		Mode: "fixed",
		Colors: []ColorKey{
			{Hex: "#ff0000", Time: 0.5},
			{RGB: []float64{0, 0, 1}, Time: 1},
		},
		Alphas: []AlphaKey{{Alpha: 0.5, Time: 0}},
	}
	built, err := g.Build()
	require.NoError(t, err)
	assert.Equal(t, gradient.Fixed, built.Mode())
	c := built.Evaluate(0.2)
	assert.Equal(t, float32(1), c[0])
	assert.Equal(t, float32(0.5), c[3])

	g.Colors[0].Hex = "#zz"
	_, err = g.Build()
	assert.Error(t, err)
}

func TestMarshalLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	def := Default()
	def.Output = filepath.Join(dir, "lut.exr")

	for _, format := range []string{"json", "toml", "yaml"} {
		t.Run(format, func(t *testing.T) {
			data, err := def.Marshal(format)
			require.NoError(t, err)
			path := writeFile(t, dir, "preset."+format, string(data))

			cfg, err := Load(path)
			require.NoError(t, err)
			cfg.Resolve(Flags{})
			require.NoError(t, cfg.Validate())
			assert.Equal(t, lut.DefaultParams(), cfg.Params())
			assert.Equal(t, def.Output, cfg.Output)

			top, _, err := cfg.Gradients()
			require.NoError(t, err)
			assert.Equal(t, gradient.DefaultTop().Evaluate(0.5), top.Evaluate(0.5))
		})
	}

	_, err := def.Marshal("xml")
	assert.Error(t, err)
}
