// Package encode persists baked grids by file extension and loads them back.
package encode

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"

	"skin-lut-baker/internal/exr"
	"skin-lut-baker/internal/lut"
)

// Options controls Save. The zero value writes FLOAT/ZIP EXR and linear LDR.
type Options struct {
	EXR      exr.Options
	Transfer Transfer
}

// DefaultOptions matches the host's float LUT import: 32-bit, ZIP.
func DefaultOptions() Options {
	return Options{EXR: exr.Options{PixelType: exr.Float, Compression: exr.ZIPCompression}}
}

// Supported reports whether path has an extension Save can write.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exr", ".png", ".tga", ".webp":
		return true
	}
	return false
}

// IsHDR reports whether path keeps float precision.
func IsHDR(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".exr")
}

// Save writes img to path, creating parent directories. The format follows
// the extension: .exr keeps floats unclamped, the others are 8-bit.
func Save(path string, img *lut.Image, opts Options) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".exr" {
		return create(path, func(w *bufio.Writer) error {
			return exr.Encode(w, img, &opts.EXR)
		})
	}
	return saveLDR(path, ToNRGBA(img, opts.Transfer))
}

// SavePreview writes an 8-bit size×size copy of img.
func SavePreview(path string, img *lut.Image, size int, t Transfer) error {
	if IsHDR(path) {
		return fmt.Errorf("encode: preview %s must be an 8-bit format", path)
	}
	return saveLDR(path, Preview(ToNRGBA(img, t), size))
}

func saveLDR(path string, ldr *image.NRGBA) error {
	return create(path, func(w *bufio.Writer) error {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png":
			return png.Encode(w, ldr)
		case ".tga":
			return tga.Encode(w, ldr)
		default:
			return nativewebp.Encode(w, ldr, nil)
		}
	})
}

func create(path string, write func(w *bufio.Writer) error) error {
	if !Supported(path) {
		return fmt.Errorf("encode: unsupported extension %q", filepath.Ext(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("encode: mkdir %s: %w", filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("encode: create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	if err := write(w); err != nil {
		f.Close()
		return fmt.Errorf("encode: write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("encode: flush %s: %w", path, err)
	}
	return f.Close()
}
