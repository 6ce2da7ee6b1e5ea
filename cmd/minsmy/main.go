package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/common"
)

var (
	// Command-line flags
	configFiles []string
	overrides   common.FlagOverrides
	formats     string

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:           "minsmy",
	Short:         "Sales report generator with AI narrative",
	Long:          `Minsmy reads a sales export, computes team and salesperson metrics, renders charts and asks a language model for an analyst narrative, then writes the report as Markdown and PDF.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (can be specified multiple times, later files override earlier ones)")

	runCmd.Flags().StringVarP(&overrides.InputPath, "input", "i", "", "Sales CSV file (overrides config)")
	runCmd.Flags().StringVarP(&overrides.OutputDir, "output", "o", "", "Output directory (overrides config)")
	runCmd.Flags().StringVar(&overrides.Location, "location", "", "Location shown in the report (overrides config)")
	runCmd.Flags().StringVar(&formats, "format", "", "Comma separated output formats: markdown,pdf (overrides config)")
	runCmd.Flags().StringVar(&overrides.Provider, "provider", "", "Narrative provider: gemini or claude (overrides config)")
	runCmd.Flags().StringVar(&overrides.Model, "model", "", "Model for the selected provider (overrides config)")
	runCmd.Flags().BoolVar(&overrides.NoEconomic, "no-economic", false, "Skip the IPCA and SELIC context")
	runCmd.Flags().BoolVar(&overrides.NoCache, "no-cache", false, "Do not read or write the indicator cache")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration in order: defaults, config files, .env,
// environment, then flags. It auto-discovers minsmy.toml when no file is given.
func loadConfig() error {
	if len(configFiles) == 0 {
		if _, err := os.Stat("minsmy.toml"); err == nil {
			configFiles = append(configFiles, "minsmy.toml")
		} else if _, err := os.Stat("deployments/local/minsmy.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/minsmy.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	overrides.Formats = common.SplitList(formats)
	common.ApplyFlagOverrides(config, overrides)

	if err := config.Validate(); err != nil {
		return err
	}
	if config.Input.Path == "" {
		return fmt.Errorf("no input file: pass --input or set input.path")
	}

	logger = common.InitLogger(config)
	return nil
}

func main() {
	defer common.RecoverWithCrashFile()

	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error().Err(err).Msg("Run failed")
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
