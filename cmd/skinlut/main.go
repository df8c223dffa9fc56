package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "skinlut",
		Short: "Bake pre-integrated skin scattering lookup tables",
		Long: `skinlut bakes the 2D lookup table used by pre-integrated skin shading:
NdotL along X, surface curvature along Y. The physics mode blurs the Lambert
term with a per-channel Gaussian dual-lobe model; the gradient mode blends two
authored color ramps.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	verbose bool
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(bakeCmd, defaultsCmd, inspectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logrus.WithError(err).Error("skinlut failed")
		os.Exit(1)
	}
}
