package lut

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"

	"skin-lut-baker/internal/mathutil"
)

// Options controls how a bake is scheduled. The output never depends on it.
type Options struct {
	// Workers is the number of row goroutines; <= 1 runs on the caller.
	Workers int

	// Progress, if set, is called after each finished row. It may be called
	// from several goroutines at once.
	Progress func(done, total int)
}

// Generate bakes the physics-based LUT described by p.
func Generate(ctx context.Context, p Params, opts Options) (*Image, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	img := NewImage(p.Width, p.Height)
	maxVal := mathutil.Max3(p.ScatterColor[0], p.ScatterColor[1], p.ScatterColor[2])

	err := ForEachRow(ctx, p.Height, opts, func(row int) {
		rp := DeriveRow(Curvature(row, p.Height, p.CurvatureFalloff), p, maxVal)
		fillRow(img, row, rp)
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func fillRow(img *Image, row int, rp RowParams) {
	pix := img.Row(row)
	for x := 0; x < img.Width; x++ {
		angle := math32.Acos(NdotL(x, img.Width))
		i := x * 4
		for c := range rp {
			pix[i+c] = rp[c].Eval(angle)
		}
		pix[i+3] = 1
	}
}

// ForEachRow calls fn for every row in [0, rows) using a worker pool. fn must
// only touch state owned by its row. Cancellation is checked between rows.
func ForEachRow(ctx context.Context, rows int, opts Options, fn func(row int)) error {
	var done atomic.Int64
	report := func() {
		n := done.Add(1)
		if opts.Progress != nil {
			opts.Progress(int(n), rows)
		}
	}

	if opts.Workers <= 1 {
		for row := 0; row < rows; row++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(row)
			report()
		}
		return ctx.Err()
	}

	rowChan := make(chan int, opts.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rowChan {
				if ctx.Err() != nil {
					continue
				}
				fn(row)
				report()
			}
		}()
	}

send:
	for row := 0; row < rows; row++ {
		select {
		case <-ctx.Done():
			break send
		case rowChan <- row:
		}
	}
	close(rowChan)

	wg.Wait()
	return ctx.Err()
}
