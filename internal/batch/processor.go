package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"skin-lut-baker/internal/config"
	"skin-lut-baker/internal/encode"
	"skin-lut-baker/internal/gradient"
	"skin-lut-baker/internal/importer"
	"skin-lut-baker/internal/lut"
)

// Config holds the shared settings of a batch run.
type Config struct {
	Workers  int
	Log      logrus.FieldLogger
	Interval time.Duration // progress log period, default 2s
}

// Result holds the outcome of baking one job.
type Result struct {
	Name    string
	Mode    string
	Output  string
	Preview string
	GUID    string
	Width   int
	Height  int
	Params  *lut.Params
	Success bool
	Error   string
	Elapsed time.Duration
}

// Run bakes all jobs using a worker pool. Each job must already be resolved.
// A failed job does not stop the others.
func Run(ctx context.Context, cfg Config, jobs []config.Config) []Result {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	total := len(jobs)
	results := make([]Result, total)
	if total == 0 {
		return results
	}

	jobWorkers := max(1, min(cfg.Workers, total))
	rowWorkers := max(1, cfg.Workers/jobWorkers)

	var totalRows, doneRows atomic.Int64
	for _, j := range jobs {
		totalRows.Add(int64(j.Height))
	}
	progress := func(int, int) { doneRows.Add(1) }

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := doneRows.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.WithFields(logrus.Fields{
						"rows": fmt.Sprintf("%d/%d", p, totalRows.Load()),
						"rate": fmt.Sprintf("%.1f rows/sec", float64(p)/elapsed),
					}).Info("baking")
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, jobWorkers*2)
	var wg sync.WaitGroup

	for w := 0; w < jobWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = Bake(ctx, log, jobs[idx], lut.Options{Workers: rowWorkers, Progress: progress})
				entry := log.WithField("name", results[idx].Name)
				if results[idx].Success {
					entry.WithFields(logrus.Fields{
						"output":  results[idx].Output,
						"elapsed": results[idx].Elapsed.Round(time.Millisecond),
					}).Info("baked")
				} else {
					entry.WithField("error", results[idx].Error).Error("bake failed")
				}
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

// Bake validates, generates and persists one resolved job. Resolved
// inputs and encoder choices are logged at debug level.
func Bake(ctx context.Context, log logrus.FieldLogger, job config.Config, opts lut.Options) Result {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("name", job.Name)
	start := time.Now()
	res := Result{
		Name:    job.Name,
		Mode:    job.Mode,
		Output:  job.Output,
		Preview: job.Preview,
		Width:   job.Width,
		Height:  job.Height,
	}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Elapsed = time.Since(start)
		return res
	}

	if err := job.Validate(); err != nil {
		return fail(err)
	}

	var img *lut.Image
	var err error
	switch job.Mode {
	case config.ModePhysics:
		p := job.Params()
		res.Params = &p
		log.WithFields(logrus.Fields{
			"size":        fmt.Sprintf("%dx%d", p.Width, p.Height),
			"softness":    p.BaseSoftness,
			"scatter":     p.ScatterColor,
			"spread":      p.ScatterSpread,
			"yellowing":   p.ReduceYellowing,
			"falloff":     p.CurvatureFalloff,
			"row_workers": opts.Workers,
		}).Debug("physics params")
		img, err = lut.Generate(ctx, p, opts)
	case config.ModeGradient:
		var top, bottom *gradient.Gradient
		top, bottom, err = job.Gradients()
		if err == nil {
			log.WithFields(logrus.Fields{
				"size":   fmt.Sprintf("%dx%d", job.Width, job.Height),
				"top":    top.Mode(),
				"bottom": bottom.Mode(),
			}).Debug("gradient params")
			img, err = gradient.Generate(ctx, top, bottom, job.Width, job.Height, opts)
		}
	}
	if err != nil {
		return fail(err)
	}

	saveOpts, err := job.SaveOptions()
	if err != nil {
		return fail(err)
	}
	if encode.IsHDR(job.Output) {
		log.WithFields(logrus.Fields{
			"pixel_type":  saveOpts.EXR.PixelType,
			"compression": saveOpts.EXR.Compression,
		}).Debug("writing EXR")
	} else {
		log.WithField("transfer", saveOpts.Transfer).Debug("writing 8-bit")
	}
	if err := encode.Save(job.Output, img, saveOpts); err != nil {
		return fail(err)
	}

	if job.Preview != "" {
		t, err := job.Transfer()
		if err != nil {
			return fail(err)
		}
		if err := encode.SavePreview(job.Preview, img, job.PreviewSize, t); err != nil {
			return fail(err)
		}
	}

	if job.MetaEnabled() {
		guid, err := importer.Write(job.Output, importer.LUTSettings())
		if err != nil {
			return fail(err)
		}
		res.GUID = guid
		log.WithField("guid", guid).Debug("import settings written")
	}

	res.Success = true
	res.Elapsed = time.Since(start)
	return res
}
