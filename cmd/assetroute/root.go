package main

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "assetroute.yaml"

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "assetroute [command] [flags]",
		Short:         "Serve files through template routed namespaces",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML configuration")

	cmd.AddCommand(
		newServeCmd(&configPath),
		newResolveCmd(&configPath),
	)

	return cmd
}
