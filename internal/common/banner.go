package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the resolved
// configuration without secrets.
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Minsmy", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("input", config.Input.Path).
		Str("output_dir", config.Report.OutputDir).
		Strs("formats", config.Report.Formats).
		Str("provider", string(config.LLM.DefaultProvider)).
		Bool("economic", config.Economic.Enabled).
		Bool("cache", config.Cache.Enabled).
		Msg("Configuration loaded")
}
