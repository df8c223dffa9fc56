package gradient

import (
	"context"

	"skin-lut-baker/internal/lut"
)

// Generate bakes the gradient LUT: each column evaluates both ramps at
// x/(w-1) and each row blends bottom towards top by row/(h-1).
func Generate(ctx context.Context, top, bottom *Gradient, w, h int, opts lut.Options) (*lut.Image, error) {
	if err := lut.ValidateSize(w, h); err != nil {
		return nil, err
	}

	img := lut.NewImage(w, h)
	err := lut.ForEachRow(ctx, h, opts, func(row int) {
		tY := float32(row) / float32(h-1)
		for x := 0; x < w; x++ {
			tX := float32(x) / float32(w-1)
			img.SetPixel(x, row, bottom.Evaluate(tX).Lerp(top.Evaluate(tX), tY))
		}
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}
