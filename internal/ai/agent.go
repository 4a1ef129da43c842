package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go-sales-agent/internal/apperror"
	"go-sales-agent/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const opGenerate = "the language model"

// Agent sends one system + user prompt pair to Gemini per call. No chat history is kept.
type Agent struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
	maxTokens int32
	logger    *slog.Logger
}

func NewAgent(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Agent, error) {
	if !cfg.Enabled() {
		return nil, apperror.Configuration("ai", "no language model API key configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, apperror.Upstream(opGenerate, "could not create client", err)
	}
	return &Agent{
		client:    client,
		modelName: cfg.Model,
		timeout:   cfg.Timeout,
		maxTokens: int32(cfg.MaxOutputTokens),
		logger:    logger,
	}, nil
}

func (a *Agent) Close() error {
	return a.client.Close()
}

// Generate returns the model's text answer to userPrompt under systemPrompt.
func (a *Agent) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	model := a.client.GenerativeModel(a.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.SetMaxOutputTokens(a.maxTokens)

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", apperror.Upstream(opGenerate, "request timed out", err)
		}
		return "", apperror.Upstream(opGenerate, "generation failed", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", apperror.Parse(opGenerate, "response had no text", nil)
	}
	a.logger.Debug("language model answered",
		"model", a.modelName,
		"duration", time.Since(start),
		"chars", len(text),
	)
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}
