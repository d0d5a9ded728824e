package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrisync/agrisync/pkg/errors"
	"github.com/agrisync/agrisync/pkg/ingest"
	"github.com/agrisync/agrisync/pkg/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "agrisync",
	Short: "Agrisync - NGSI-LD Smart Data Model ingestion",
	Long:  `Agrisync converts agricultural records into NGSI-LD Smart Data Model entities, validates them and manages the delegation policies that govern access to them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel == "" && logFormat == "" {
			logging.ConfigureFromEnv()
			return
		}
		configureLogging(logging.DefaultConfig())
	},
	SilenceUsage: true,
}

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Generate a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return errors.New(errors.ErrCodeMissingConfig, "--config is required")
		}
		config := ingest.DefaultFileConfig()
		if err := ingest.SaveFileConfig(config, configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated configuration file at: %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateConfigCmd)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json)")
}

// configureLogging applies the --log-* flags on top of config.
func configureLogging(config *logging.Config) {
	if logLevel != "" {
		config.Level = logging.LogLevel(logLevel)
	}
	if logFormat != "" {
		config.Format = logging.LogFormat(logFormat)
	}
	logging.Configure(config)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
