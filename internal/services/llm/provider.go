package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/common"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// ErrMissingAPIKey is returned when the selected provider has no API key.
var ErrMissingAPIKey = errors.New("API key not configured")

// ProviderFactory creates provider clients lazily and routes each request
// to the provider its model names. Every request is a single upstream call.
type ProviderFactory struct {
	geminiConfig *common.GeminiConfig
	claudeConfig *common.ClaudeConfig
	llmConfig    *common.LLMConfig
	logger       arbor.ILogger
	geminiClient *genai.Client
	claudeClient anthropic.Client
	claudeReady  bool
}

// Compile-time assertion
var _ interfaces.LLMService = (*ProviderFactory)(nil)

// NewProviderFactory creates a new provider factory
func NewProviderFactory(
	geminiConfig *common.GeminiConfig,
	claudeConfig *common.ClaudeConfig,
	llmConfig *common.LLMConfig,
	logger arbor.ILogger,
) *ProviderFactory {
	return &ProviderFactory{
		geminiConfig: geminiConfig,
		claudeConfig: claudeConfig,
		llmConfig:    llmConfig,
		logger:       logger,
	}
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-sonnet-4-5" -> Claude
// - "claude/claude-sonnet-4-5" -> Claude (with prefix)
// - "gemini-2.5-flash" -> Gemini
// - "gemini/gemini-2.5-flash" -> Gemini (with prefix)
// - Empty string -> uses default provider from config
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	if model == "" {
		return f.defaultProvider()
	}

	model = strings.ToLower(model)

	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini/") || strings.HasPrefix(model, "google/") {
		return ProviderGemini
	}

	if strings.HasPrefix(model, "claude-") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini-") {
		return ProviderGemini
	}

	return f.defaultProvider()
}

func (f *ProviderFactory) defaultProvider() ProviderType {
	if f.llmConfig != nil && f.llmConfig.DefaultProvider == common.LLMProviderClaude {
		return ProviderClaude
	}
	return ProviderGemini
}

// NormalizeModel removes provider prefix from model name if present
func (f *ProviderFactory) NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// GetDefaultModel returns the default model for a provider
func (f *ProviderFactory) GetDefaultModel(provider ProviderType) string {
	switch provider {
	case ProviderClaude:
		return f.claudeConfig.Model
	default:
		return f.geminiConfig.Model
	}
}

// GenerateContent generates content using the provider the model selects.
// The call is bounded by the provider's configured timeout.
func (f *ProviderFactory) GenerateContent(ctx context.Context, request *interfaces.ContentRequest) (*interfaces.ContentResponse, error) {
	if request == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	provider := f.DetectProvider(request.Model)
	model := f.NormalizeModel(request.Model)
	if model == "" {
		model = f.GetDefaultModel(provider)
	}

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("message_count", len(request.Messages)).
		Msg("Generating content with provider")

	start := time.Now()
	var resp *interfaces.ContentResponse
	var err error
	switch provider {
	case ProviderClaude:
		ctx, cancel := context.WithTimeout(ctx, common.ParseDurationOr(f.claudeConfig.Timeout, 5*time.Minute))
		defer cancel()
		resp, err = f.generateWithClaude(ctx, request, model)
	default:
		ctx, cancel := context.WithTimeout(ctx, common.ParseDurationOr(f.geminiConfig.Timeout, 5*time.Minute))
		defer cancel()
		resp, err = f.generateWithGemini(ctx, request, model)
	}
	if err != nil {
		return nil, err
	}

	f.logger.Info().
		Str("provider", resp.Provider).
		Str("model", resp.Model).
		Int("chars", len(resp.Text)).
		Dur("elapsed", time.Since(start)).
		Msg("Content generated")
	return resp, nil
}

// Close closes all provider clients
func (f *ProviderFactory) Close() error {
	f.geminiClient = nil
	f.claudeClient = anthropic.Client{}
	f.claudeReady = false
	return nil
}
