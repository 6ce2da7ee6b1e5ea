package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment" validate:"oneof=development production"`
	Input       InputConfig    `toml:"input"`
	Report      ReportConfig   `toml:"report"`
	Economic    EconomicConfig `toml:"economic"`
	Cache       CacheConfig    `toml:"cache"`
	Logging     LoggingConfig  `toml:"logging"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Claude      ClaudeConfig   `toml:"claude"`
	LLM         LLMConfig      `toml:"llm"`
}

// InputConfig describes the sales export format
type InputConfig struct {
	Path             string `toml:"path"`
	Separator        string `toml:"separator" validate:"len=1"`         // CSV field separator (default: ";")
	DecimalSeparator string `toml:"decimal_separator" validate:"len=1"` // Decimal mark in numeric cells (default: ",")
	CompletedStatus  string `toml:"completed_status" validate:"required"`
	ReturnedStatus   string `toml:"returned_status" validate:"required"`
	PhysicalChannel  string `toml:"physical_channel" validate:"required"`
}

// ReportConfig controls the generated report
type ReportConfig struct {
	OutputDir    string   `toml:"output_dir" validate:"required"`
	Title        string   `toml:"title" validate:"required"`
	Location     string   `toml:"location" validate:"required"`
	Formats      []string `toml:"formats" validate:"min=1,dive,oneof=markdown pdf"`
	TopN         int      `toml:"top_n" validate:"gte=1"`          // Entries per summary ranking (default: 5)
	ChartTopN    int      `toml:"chart_top_n" validate:"gte=1"`    // Bars per ranking chart (default: 10)
	ChartWidth   int      `toml:"chart_width" validate:"gte=320"`  // Chart width in pixels (default: 1024)
	ChartHeight  int      `toml:"chart_height" validate:"gte=240"` // Chart height in pixels (default: 576)
	AppendixKeys bool     `toml:"appendix"`                        // Append charts no heading referenced
}

// EconomicConfig configures the central bank time series source
type EconomicConfig struct {
	Enabled     bool   `toml:"enabled"`
	BaseURL     string `toml:"base_url" validate:"omitempty,url"`
	Months      int    `toml:"months" validate:"gte=1,lte=120"`
	IPCASeries  int    `toml:"ipca_series" validate:"gte=1"`
	SELICSeries int    `toml:"selic_series" validate:"gte=1"`
	Timeout     string `toml:"timeout"`    // HTTP timeout as duration string (default: "30s")
	RateLimit   string `toml:"rate_limit"` // Minimum interval between requests (default: "200ms")
}

// CacheConfig configures the Badger-backed indicator cache
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	TTL     string `toml:"ttl"` // Cached series lifetime (default: "12h")
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`       // Default: "gemini-2.5-flash"
	Timeout     string  `toml:"timeout"`     // Request timeout as duration string (default: "5m")
	Temperature float32 `toml:"temperature"` // Default: 0.3
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`      // Default: "claude-sonnet-4-5"
	MaxTokens   int     `toml:"max_tokens"` // Default: 8192
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the narrative provider
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Input: InputConfig{
			Separator:        ";",
			DecimalSeparator: ",",
			CompletedStatus:  "Concluída",
			ReturnedStatus:   "Devolvida",
			PhysicalChannel:  "Física",
		},
		Report: ReportConfig{
			OutputDir:    "./results",
			Title:        "Relatório de Análise de Vendas",
			Location:     "Jaraguá do Sul, SC, Brasil",
			Formats:      []string{"markdown", "pdf"},
			TopN:         5,
			ChartTopN:    10,
			ChartWidth:   1024,
			ChartHeight:  576,
			AppendixKeys: true,
		},
		Economic: EconomicConfig{
			Enabled:     true,
			BaseURL:     "https://api.bcb.gov.br/dados/serie",
			Months:      24,
			IPCASeries:  433,
			SELICSeries: 432,
			Timeout:     "30s",
			RateLimit:   "200ms",
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "./data/cache",
			TTL:     "12h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Timeout:     "5m",
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-5",
			MaxTokens:   8192,
			Timeout:     "5m",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> .env -> env
// Later files override earlier files. A missing .env file is not an error.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env never overrides variables already set in the process environment
	_ = godotenv.Load()

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MINSMY_ENV"); env != "" {
		config.Environment = env
	}

	// Input
	if path := os.Getenv("MINSMY_INPUT_PATH"); path != "" {
		config.Input.Path = path
	}
	if sep := os.Getenv("MINSMY_INPUT_SEPARATOR"); sep != "" {
		config.Input.Separator = sep
	}
	if sep := os.Getenv("MINSMY_INPUT_DECIMAL_SEPARATOR"); sep != "" {
		config.Input.DecimalSeparator = sep
	}

	// Report
	if dir := os.Getenv("MINSMY_REPORT_OUTPUT_DIR"); dir != "" {
		config.Report.OutputDir = dir
	}
	if location := os.Getenv("MINSMY_REPORT_LOCATION"); location != "" {
		config.Report.Location = location
	}
	if formats := os.Getenv("MINSMY_REPORT_FORMATS"); formats != "" {
		config.Report.Formats = SplitList(formats)
	}

	// Economic
	if enabled := os.Getenv("MINSMY_ECONOMIC_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Economic.Enabled = b
		}
	}
	if baseURL := os.Getenv("MINSMY_ECONOMIC_BASE_URL"); baseURL != "" {
		config.Economic.BaseURL = baseURL
	}
	if months := os.Getenv("MINSMY_ECONOMIC_MONTHS"); months != "" {
		if m, err := strconv.Atoi(months); err == nil {
			config.Economic.Months = m
		}
	}

	// Cache
	if enabled := os.Getenv("MINSMY_CACHE_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Cache.Enabled = b
		}
	}
	if path := os.Getenv("MINSMY_CACHE_PATH"); path != "" {
		config.Cache.Path = path
	}

	// Logging
	if level := os.Getenv("MINSMY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("MINSMY_LOG_OUTPUT"); output != "" {
		config.Logging.Output = SplitList(output)
	}

	// Gemini (GOOGLE_API_KEY is the name used by the Google SDKs)
	if apiKey := os.Getenv("MINSMY_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("MINSMY_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("MINSMY_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if temperature := os.Getenv("MINSMY_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude
	if apiKey := os.Getenv("MINSMY_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	} else if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("MINSMY_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("MINSMY_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if m, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = m
		}
	}

	if provider := os.Getenv("MINSMY_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// FlagOverrides carries command-line values; zero values are ignored
type FlagOverrides struct {
	InputPath  string
	OutputDir  string
	Location   string
	Formats    []string
	Provider   string
	Model      string
	NoEconomic bool
	NoCache    bool
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, flags FlagOverrides) {
	if flags.InputPath != "" {
		config.Input.Path = flags.InputPath
	}
	if flags.OutputDir != "" {
		config.Report.OutputDir = flags.OutputDir
	}
	if flags.Location != "" {
		config.Report.Location = flags.Location
	}
	if len(flags.Formats) > 0 {
		config.Report.Formats = flags.Formats
	}
	if flags.Provider != "" {
		config.LLM.DefaultProvider = LLMProvider(flags.Provider)
	}
	if flags.Model != "" {
		switch config.LLM.DefaultProvider {
		case LLMProviderClaude:
			config.Claude.Model = flags.Model
		default:
			config.Gemini.Model = flags.Model
		}
	}
	if flags.NoEconomic {
		config.Economic.Enabled = false
	}
	if flags.NoCache {
		config.Cache.Enabled = false
	}
}

// Validate checks the configuration using go-playground/validator tags and
// the duration fields that tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"economic.timeout":    c.Economic.Timeout,
		"economic.rate_limit": c.Economic.RateLimit,
		"cache.ttl":           c.Cache.TTL,
		"gemini.timeout":      c.Gemini.Timeout,
		"claude.timeout":      c.Claude.Timeout,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", name, err)
		}
	}
	return nil
}

// WantsFormat reports whether the report format is enabled
func (c *Config) WantsFormat(format string) bool {
	for _, f := range c.Report.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ParseDurationOr parses a duration string, returning fallback when empty or invalid
func ParseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// SplitList splits a comma separated list, trimming blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
