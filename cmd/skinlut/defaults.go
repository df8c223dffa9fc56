package main

import (
	"github.com/spf13/cobra"

	"skin-lut-baker/internal/config"
)

var (
	defaultsCmd = &cobra.Command{
		Use:   "defaults",
		Short: "Print the stock preset as a config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Default().Marshal(defaultsFormat)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	defaultsFormat string
)

func init() {
	defaultsCmd.Flags().StringVarP(&defaultsFormat, "format", "f", "json", "json, toml or yaml")
}
