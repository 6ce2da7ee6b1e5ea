package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig_IsValid(t *testing.T) {
	config := NewDefaultConfig()

	require.NoError(t, config.Validate())
	assert.Equal(t, ";", config.Input.Separator)
	assert.Equal(t, ",", config.Input.DecimalSeparator)
	assert.Equal(t, "Concluída", config.Input.CompletedStatus)
	assert.Equal(t, 24, config.Economic.Months)
	assert.Equal(t, LLMProviderGemini, config.LLM.DefaultProvider)
	assert.True(t, config.WantsFormat("PDF"))
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
[report]
location = "Blumenau, SC, Brasil"
top_n = 3

[input]
separator = ","
`), 0644))
	require.NoError(t, os.WriteFile(override, []byte(`
[report]
top_n = 7
`), 0644))

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, "Blumenau, SC, Brasil", config.Report.Location)
	assert.Equal(t, 7, config.Report.TopN)
	assert.Equal(t, ",", config.Input.Separator)
	// untouched defaults survive
	assert.Equal(t, ",", config.Input.DecimalSeparator)
}

func TestLoadFromFiles_Errors(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[report\nlocation="), 0644))
	_, err = LoadFromFiles(bad)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MINSMY_REPORT_FORMATS", "markdown")
	t.Setenv("MINSMY_ECONOMIC_ENABLED", "false")
	t.Setenv("MINSMY_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	t.Setenv("MINSMY_CLAUDE_API_KEY", "")

	config := NewDefaultConfig()
	applyEnvOverrides(config)

	assert.Equal(t, []string{"markdown"}, config.Report.Formats)
	assert.False(t, config.Economic.Enabled)
	assert.Equal(t, "google-key", config.Gemini.APIKey)
	assert.Equal(t, "anthropic-key", config.Claude.APIKey)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	ApplyFlagOverrides(config, FlagOverrides{
		InputPath:  "vendas.csv",
		Provider:   "claude",
		Model:      "claude-opus-4-1",
		NoEconomic: true,
	})

	assert.Equal(t, "vendas.csv", config.Input.Path)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)
	assert.Equal(t, "claude-opus-4-1", config.Claude.Model)
	assert.Equal(t, "gemini-2.5-flash", config.Gemini.Model)
	assert.False(t, config.Economic.Enabled)
	assert.True(t, config.Cache.Enabled)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown format", func(c *Config) { c.Report.Formats = []string{"docx"} }},
		{"no formats", func(c *Config) { c.Report.Formats = nil }},
		{"long separator", func(c *Config) { c.Input.Separator = ";;" }},
		{"unknown provider", func(c *Config) { c.LLM.DefaultProvider = "openai" }},
		{"bad timeout", func(c *Config) { c.Gemini.Timeout = "soon" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"zero months", func(c *Config) { c.Economic.Months = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestParseDurationOr(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseDurationOr("30s", time.Minute))
	assert.Equal(t, time.Minute, ParseDurationOr("", time.Minute))
	assert.Equal(t, time.Minute, ParseDurationOr("nope", time.Minute))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"markdown", "pdf"}, SplitList(" markdown, ,pdf "))
	assert.Nil(t, SplitList(""))
}

func TestNewStamp(t *testing.T) {
	at := time.Date(2026, 10, 19, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "2026-10-19_14-05-09", NewStamp(at))
	assert.Contains(t, NewRunID(), "run_")
}
