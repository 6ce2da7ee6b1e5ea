package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// ErrEmptyNarrative is the degradation cause when the model returns no text.
var ErrEmptyNarrative = errors.New("model returned an empty narrative")

// Service asks the language model for the report narrative. It makes one
// call and never retries; any failure becomes a fallback narrative.
type Service struct {
	llm    interfaces.LLMService
	model  string
	logger arbor.ILogger
}

// NewService creates the service. model may be empty to use the provider
// default; llm may be nil, in which case every request degrades.
func NewService(llm interfaces.LLMService, model string, logger arbor.ILogger) *Service {
	return &Service{llm: llm, model: model, logger: logger}
}

// Request returns the model's narrative, or a non-empty fallback with
// Degraded set when the call fails.
func (s *Service) Request(ctx context.Context, summary string, c Context) models.Narrative {
	if s.llm == nil {
		return s.fallback(summary, errors.New("no language model configured"))
	}

	resp, err := s.llm.GenerateContent(ctx, &interfaces.ContentRequest{
		Model:             s.model,
		SystemInstruction: SystemPrompt,
		Messages: []interfaces.Message{
			{Role: "user", Content: BuildTaskPrompt(summary, c)},
		},
	})
	if err != nil {
		return s.fallback(summary, err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return s.fallback(summary, ErrEmptyNarrative)
	}

	s.logger.Info().
		Str("provider", resp.Provider).
		Str("model", resp.Model).
		Msg("Narrative received")

	return models.Narrative{
		Text:     resp.Text,
		Provider: resp.Provider,
		Model:    resp.Model,
	}
}

func (s *Service) fallback(summary string, cause error) models.Narrative {
	s.logger.Warn().Err(cause).Msg("Narrative request failed, using fallback text")
	return models.Narrative{
		Text:     FallbackText(summary, cause),
		Degraded: true,
		Cause:    cause.Error(),
	}
}

// FallbackText is shown instead of the model's analysis. It reports the
// cause and repeats the computed summary, nothing else.
func FallbackText(summary string, cause error) string {
	var b strings.Builder
	b.WriteString("**AVISO: ANÁLISE DA IA INDISPONÍVEL**\n\n")
	b.WriteString("Não foi possível obter a análise do modelo de linguagem. ")
	b.WriteString("Verifique a configuração do provedor e a chave da API.\n\n")
	if cause != nil {
		fmt.Fprintf(&b, "Causa: %s\n\n", cause.Error())
	}
	b.WriteString("Os gráficos deste relatório foram gerados normalmente a partir dos dados.\n\n")
	if strings.TrimSpace(summary) != "" {
		b.WriteString("**RESUMO DOS DADOS QUANTITATIVOS**\n\n```\n")
		b.WriteString(strings.TrimSpace(summary))
		b.WriteString("\n```\n")
	}
	return b.String()
}
