package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"skin-lut-baker/internal/batch"
	"skin-lut-baker/internal/config"
)

var (
	bakeCmd = &cobra.Command{
		Use:   "bake [config files...]",
		Short: "Bake one LUT per config file (or the stock preset when none is given)",
		Long: `Bake reads JSON, TOML or YAML config files and writes one LUT for each.
The output format follows the extension: .exr keeps 32-bit (or half) floats,
.png, .tga and .webp are 8-bit. Flags override the matching config values.`,
		RunE: runBake,
	}
	bakeFlags    config.Flags
	bakeMeta     bool
	manifestPath string
)

func init() {
	f := bakeCmd.Flags()
	f.StringVar(&bakeFlags.Mode, "mode", "", "bake mode: physics or gradient")
	f.IntVar(&bakeFlags.Width, "width", 0, "output width in pixels (default 256)")
	f.IntVar(&bakeFlags.Height, "height", 0, "output height in pixels (default 256)")
	f.StringVarP(&bakeFlags.Output, "output", "o", "", "output file (default "+config.DefaultOutput+")")
	f.StringVar(&bakeFlags.PixelType, "pixel-type", "", "EXR channel type: float or half")
	f.StringVar(&bakeFlags.Compression, "compression", "", "EXR compression: zip, zips or none")
	f.StringVar(&bakeFlags.Preview, "preview", "", "also write an 8-bit preview (.png, .tga, .webp)")
	f.IntVar(&bakeFlags.PreviewSize, "preview-size", 0, "preview edge in pixels (default 256)")
	f.BoolVar(&bakeMeta, "meta", true, "write a .meta import sidecar next to the output")
	f.IntVarP(&bakeFlags.Workers, "workers", "w", 0, "worker goroutines (default: largest config value, else NumCPU)")
	f.StringVar(&manifestPath, "manifest", "", "write a JSON manifest of all bakes to this path")
}

func runBake(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("meta") {
		bakeFlags.WriteMeta = &bakeMeta
	}
	if len(args) > 1 && (bakeFlags.Output != "" || bakeFlags.Preview != "") {
		return errors.New("--output and --preview need a single config file")
	}

	var jobs []config.Config
	if len(args) == 0 {
		var cfg config.Config
		cfg.Resolve(bakeFlags)
		jobs = append(jobs, cfg)
	}
	for _, path := range args {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg.Resolve(bakeFlags)
		jobs = append(jobs, cfg)
	}

	workers := batchWorkers(jobs)
	logrus.WithFields(logrus.Fields{
		"jobs":    len(jobs),
		"workers": workers,
	}).Info("skin LUT bake")

	start := time.Now()
	results := batch.Run(cmd.Context(), batch.Config{Workers: workers, Log: logrus.StandardLogger()}, jobs)

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	logrus.WithFields(logrus.Fields{
		"baked":   fmt.Sprintf("%d/%d", len(results)-failed, len(results)),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("done")

	if manifestPath != "" {
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			logrus.WithError(err).Warn("manifest write failed")
		} else {
			logrus.WithField("path", manifestPath).Info("manifest written")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d bakes failed", failed, len(results))
	}
	return nil
}

// batchWorkers returns the largest worker count of the resolved jobs.
func batchWorkers(jobs []config.Config) int {
	var n int
	for _, j := range jobs {
		n = max(n, j.Workers)
	}
	return n
}
