// SPDX-License-Identifier: MIT
package cmd

import (
	"os"

	"dspgraph/internal/config"
	"dspgraph/pkg/build"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ParseArgs builds the root command, wires its flags onto a loaded
// Config, and executes it. The returned Config reflects both the
// loaded file (or its defaults) and any flag overrides.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	var configPath string
	cfg, err := config.LoadConfig("")
	if err != nil {
		return nil, err
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "A modular block-rate signal-processing graph engine",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				loaded, err := config.LoadConfig(configPath)
				if err != nil {
					return err
				}
				overrides := map[string]string{}
				cmd.Flags().Visit(func(f *pflag.Flag) {
					overrides[f.Name] = f.Value.String()
				})
				*cfg = *loaded
				for name, val := range overrides {
					if err := cmd.Flags().Set(name, val); err != nil {
						return err
					}
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "live"
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "list"
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().IntVar(&cfg.Graph.BlockSize, "block-size", cfg.Graph.BlockSize,
		"Block size, in samples, the scheduler processes per step")
	rootCmd.PersistentFlags().Float64Var(&cfg.Graph.SampleRate, "sample-rate", cfg.Graph.SampleRate,
		"Sample rate, in Hertz")
	rootCmd.PersistentFlags().StringVar(&cfg.Graph.Backend, "backend", cfg.Graph.Backend,
		"Audio backend: default, jack, alsa, or wasapi")
	rootCmd.PersistentFlags().StringVar(&cfg.Graph.Device, "device", cfg.Graph.Device,
		"Output device selector: default, index(n), or name(substring)")
	rootCmd.PersistentFlags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfg.DiagnosticsAddr, "diagnostics-addr", cfg.DiagnosticsAddr,
		"Address to serve the live magnitude-spectrum websocket on (empty disables it)")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return cfg, nil
}
