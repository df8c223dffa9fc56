package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Bake modes.
const (
	ModePhysics  = "physics"
	ModeGradient = "gradient"
)

// DefaultOutput is where a bake lands when nothing else is configured.
const DefaultOutput = "T_Pre-Integrated_Lut.exr"

// Config holds one bake: mode, size, physics and gradient parameters, and
// output settings. Pointer fields distinguish "unset" from a valid zero.
type Config struct {
	Name string `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Mode string `json:"mode" toml:"mode" yaml:"mode"`

	Width  int `json:"width" toml:"width" yaml:"width"`
	Height int `json:"height" toml:"height" yaml:"height"`

	// Physics settings
	BaseSoftness     *float32    `json:"base_softness,omitempty" toml:"base_softness,omitempty" yaml:"base_softness,omitempty"`
	ScatterColor     *[3]float32 `json:"scatter_color,omitempty" toml:"scatter_color,omitempty" yaml:"scatter_color,omitempty"`
	ScatterSpread    *float32    `json:"scatter_spread,omitempty" toml:"scatter_spread,omitempty" yaml:"scatter_spread,omitempty"`
	ReduceYellowing  *float32    `json:"reduce_yellowing,omitempty" toml:"reduce_yellowing,omitempty" yaml:"reduce_yellowing,omitempty"`
	CurvatureFalloff *float32    `json:"curvature_falloff,omitempty" toml:"curvature_falloff,omitempty" yaml:"curvature_falloff,omitempty"`

	// Gradient settings: top is high curvature, bottom low curvature.
	GradientTop    *Gradient `json:"gradient_top,omitempty" toml:"gradient_top,omitempty" yaml:"gradient_top,omitempty"`
	GradientBottom *Gradient `json:"gradient_bottom,omitempty" toml:"gradient_bottom,omitempty" yaml:"gradient_bottom,omitempty"`

	// Output settings
	Output          string `json:"output" toml:"output" yaml:"output"`
	PixelType       string `json:"pixel_type" toml:"pixel_type" yaml:"pixel_type"`
	Compression     string `json:"compression" toml:"compression" yaml:"compression"`
	Preview         string `json:"preview,omitempty" toml:"preview,omitempty" yaml:"preview,omitempty"`
	PreviewSize     int    `json:"preview_size,omitempty" toml:"preview_size,omitempty" yaml:"preview_size,omitempty"`
	PreviewTransfer string `json:"preview_transfer,omitempty" toml:"preview_transfer,omitempty" yaml:"preview_transfer,omitempty"`
	WriteMeta       *bool  `json:"write_meta,omitempty" toml:"write_meta,omitempty" yaml:"write_meta,omitempty"`
	Workers         int    `json:"workers" toml:"workers" yaml:"workers"`
}

// Load reads a JSON, TOML or YAML config file, chosen by extension.
// Fields not set in the file keep their zero values. Relative output paths
// are resolved against the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: %s: unknown format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.Output = resolvePath(dir, cfg.Output)
	cfg.Preview = resolvePath(dir, cfg.Preview)
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return cfg, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Marshal encodes cfg as "json", "toml" or "yaml".
func (c Config) Marshal(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "toml":
		return toml.Marshal(c)
	case "yaml", "yml":
		return yaml.Marshal(c)
	}
	return nil, fmt.Errorf("config: unknown format %q", format)
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Mode != "" {
		c.Mode = flags.Mode
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.PixelType != "" {
		c.PixelType = flags.PixelType
	}
	if flags.Compression != "" {
		c.Compression = flags.Compression
	}
	if flags.Preview != "" {
		c.Preview = flags.Preview
	}
	if flags.PreviewSize > 0 {
		c.PreviewSize = flags.PreviewSize
	}
	if flags.WriteMeta != nil {
		c.WriteMeta = flags.WriteMeta
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	d := Default()
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	c.Mode = strings.ToLower(c.Mode)
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.BaseSoftness == nil {
		c.BaseSoftness = d.BaseSoftness
	}
	if c.ScatterColor == nil {
		c.ScatterColor = d.ScatterColor
	}
	if c.ScatterSpread == nil {
		c.ScatterSpread = d.ScatterSpread
	}
	if c.ReduceYellowing == nil {
		c.ReduceYellowing = d.ReduceYellowing
	}
	if c.CurvatureFalloff == nil {
		c.CurvatureFalloff = d.CurvatureFalloff
	}
	if c.GradientTop == nil {
		c.GradientTop = d.GradientTop
	}
	if c.GradientBottom == nil {
		c.GradientBottom = d.GradientBottom
	}
	if c.Output == "" {
		c.Output = d.Output
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(c.Output), filepath.Ext(c.Output))
	}
	if c.PixelType == "" {
		c.PixelType = d.PixelType
	}
	if c.Compression == "" {
		c.Compression = d.Compression
	}
	if c.Preview != "" && c.PreviewSize <= 0 {
		c.PreviewSize = d.PreviewSize
	}
	if c.PreviewTransfer == "" {
		c.PreviewTransfer = d.PreviewTransfer
	}
	if c.WriteMeta == nil {
		c.WriteMeta = d.WriteMeta
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Mode        string
	Width       int
	Height      int
	Output      string
	PixelType   string
	Compression string
	Preview     string
	PreviewSize int
	WriteMeta   *bool
	Workers     int
}
