package encode

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/webp"

	"skin-lut-baker/internal/exr"
	"skin-lut-baker/internal/lut"
)

// Load reads a baked LUT back into a float grid. EXR keeps full precision;
// 8-bit formats come back as n/255.
func Load(path string) (*lut.Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("encode: read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".exr") {
		img, err := exr.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("encode: decode %s: %w", path, err)
		}
		return img, nil
	}

	// TGA has no magic number, so try it last by extension.
	var src image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		src, err = tga.Decode(bytes.NewReader(raw))
	} else {
		src, _, err = image.Decode(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, fmt.Errorf("encode: decode %s: %w", path, err)
	}
	return FromImage(src), nil
}
