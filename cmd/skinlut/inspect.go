package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"skin-lut-baker/internal/encode"
	"skin-lut-baker/internal/lut"
	"skin-lut-baker/internal/mathutil"
)

var (
	inspectCmd = &cobra.Command{
		Use:   "inspect <image>",
		Short: "Print size, channel statistics and samples of a baked LUT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := encode.Load(args[0])
			if err != nil {
				return err
			}
			for _, f := range []float64{sampleU, sampleV, sampleNdotL} {
				if !mathutil.IsFinite(float32(f)) {
					return fmt.Errorf("inspect: sample coordinate %v is not finite", f)
				}
			}
			out := cmd.OutOrStdout()
			printStats(out, args[0], img)
			flags := cmd.Flags()
			switch {
			case flags.Changed("ndotl"):
				c := img.Lookup(float32(sampleNdotL), float32(sampleV))
				fmt.Fprintf(out, "lookup ndotl=%.4f v=%.4f: %s\n", sampleNdotL, sampleV, formatRGBA(c))
			case flags.Changed("u") || flags.Changed("v"):
				c := img.Sample(float32(sampleU), float32(sampleV))
				fmt.Fprintf(out, "sample u=%.4f v=%.4f: %s\n", sampleU, sampleV, formatRGBA(c))
			}
			return nil
		},
	}
	sampleU, sampleV, sampleNdotL float64
)

func init() {
	inspectCmd.Flags().Float64Var(&sampleU, "u", 0.5, "horizontal sample coordinate (NdotL*0.5+0.5)")
	inspectCmd.Flags().Float64Var(&sampleV, "v", 0.5, "vertical sample coordinate (curvature axis)")
	inspectCmd.Flags().Float64Var(&sampleNdotL, "ndotl", 0, "sample at this cosine term in [-1, 1] instead of --u")
}

// ChannelStats summarizes one channel of a grid.
type ChannelStats struct {
	Min, Max, Mean float64
}

func channelStats(img *lut.Image) [4]ChannelStats {
	var stats [4]ChannelStats
	vals := make([]float64, img.Width*img.Height)
	for c := range stats {
		for i := range vals {
			vals[i] = float64(img.Pix[i*4+c])
		}
		stats[c] = ChannelStats{
			Min:  floats.Min(vals),
			Max:  floats.Max(vals),
			Mean: stat.Mean(vals, nil),
		}
	}
	return stats
}

func printStats(w io.Writer, path string, img *lut.Image) {
	fmt.Fprintf(w, "%s: %dx%d\n", path, img.Width, img.Height)
	for c, s := range channelStats(img) {
		fmt.Fprintf(w, "  %c  min=%.6f max=%.6f mean=%.6f\n", "RGBA"[c], s.Min, s.Max, s.Mean)
	}
}

func formatRGBA(c mathutil.RGBA) string {
	return fmt.Sprintf("R=%.6f G=%.6f B=%.6f A=%.6f", c[0], c[1], c[2], c[3])
}
