package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

var (
	configFilename string
	debug          bool
	verbose        bool
)

var (
	logger        fecom.SlogLogger
	configuration fecom.Configuration
	opts          fecom.Options
)

var rootCmd = &cobra.Command{
	Use:               "fecom",
	Short:             "Write, read and map SuperNEMO commissioning events",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	logger = NewLogger(os.Stdout, os.Stderr, slog.LevelDebug)

	rootCmd.PersistentFlags().StringVar(&configFilename, "config", "", "configuration file path (JSON, or TOML with a .toml extension)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	configuration, err = fecom.LoadConfiguration(configFilename)
	if err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	if verbose && configuration.Priority < fecom.PrioInformation {
		configuration.Priority = fecom.PrioInformation
	}
	if debug && configuration.Priority < fecom.PrioDebug {
		configuration.Priority = fecom.PrioDebug
	}
	opts = configuration.Options(logger)

	resolver, err := fecom.NewPathResolver(configuration.EnvFiles...)
	if err != nil {
		return err
	}
	if configuration.FileIn, err = resolver.Resolve(configuration.FileIn); err != nil {
		return fmt.Errorf("resolving file_in: %w", err)
	}
	if configuration.FileOut, err = resolver.Resolve(configuration.FileOut); err != nil {
		return fmt.Errorf("resolving file_out: %w", err)
	}

	if opts.Enabled(fecom.PrioInformation) {
		if configFilename != "" {
			logger.Info(fmt.Sprintf("Reading configuration file: %s", configFilename), "main")
		}
		printConfiguration(configuration, logger)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
