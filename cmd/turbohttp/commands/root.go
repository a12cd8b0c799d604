package commands

import (
	"github.com/spf13/cobra"

	"github.com/yshengliao/turbohttp/config"
)

type globalFlags struct {
	configPath string
	envFile    string
}

// Execute runs the turbohttp CLI
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "turbohttp",
		Short: "TurboHTTP - a minimal web framework demo server",
		Long: `TurboHTTP routes requests by path template to function or class
handlers, runs them through a middleware chain and serves static files and
templates alongside.

This CLI runs the demo application and inspects its configuration.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file path")

	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newRoutesCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))

	return rootCmd
}

// loadConfig reads defaults, the YAML file, the dotenv file and the
// TURBOHTTP_ environment in that order. Missing files are skipped.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg := &config.Config{}
	loader := config.NewBofryLoader().
		WithYAMLFile(flags.configPath).
		WithDotEnvFile(flags.envFile)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
