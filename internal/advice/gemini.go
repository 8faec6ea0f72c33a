package advice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when config leaves it unset.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey indicates no Gemini API key was provided.
var ErrMissingAPIKey = errors.New("advice api key is not set")

// GeminiConfig configures the Gemini-backed advisor.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiAdvisor sends one prompt-completion request per call to Gemini.
type GeminiAdvisor struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeminiAdvisor constructs a Gemini client for advice generation.
func NewGeminiAdvisor(ctx context.Context, cfg GeminiConfig, logger *slog.Logger) (*GeminiAdvisor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	model := strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if model == "" {
		model = DefaultModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	return &GeminiAdvisor{client: client, model: model, timeout: cfg.Timeout, logger: logger}, nil
}

// Model returns the resolved Gemini model name.
func (g *GeminiAdvisor) Model() string {
	return g.model
}

// Advise returns the generated advice text, or FallbackText when the response has none.
func (g *GeminiAdvisor) Advise(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}

	text := TextFromResponse(resp)
	if g.logger != nil {
		g.logger.Debug("advice generated",
			"model", g.model,
			"latency_ms", time.Since(started).Milliseconds(),
			"length", len(text),
		)
	}
	return text, nil
}

// TextFromResponse reads candidates[0].content.parts[0].text with a fixed fallback.
func TextFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return FallbackText
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return FallbackText
	}
	part := candidate.Content.Parts[0]
	if part == nil || part.Text == "" {
		return FallbackText
	}
	return part.Text
}
