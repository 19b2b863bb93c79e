package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"loteriadash/internal/config"
)

// DefaultGeminiEndpoint is the public Generative Language API host
const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/"

// GeminiConfig configures the Gemini client
type GeminiConfig struct {
	APIKey          string
	Model           string
	Endpoint        string
	Timeout         time.Duration
	Temperature     float64
	MaxOutputTokens int64

	// HTTPClient defaults to a client without its own timeout; the
	// per-call context carries the deadline.
	HTTPClient *http.Client
}

// GeminiConfigFrom maps the application config section
func GeminiConfigFrom(cfg config.NarrativeConfig) GeminiConfig {
	return GeminiConfig{
		APIKey:          cfg.APIKey,
		Model:           cfg.Model,
		Endpoint:        cfg.Endpoint,
		Timeout:         cfg.Timeout,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
}

// GeminiGenerator calls the v1beta generateContent REST method
type GeminiGenerator struct {
	client *http.Client
	url    string
	cfg    GeminiConfig
	logger *slog.Logger
}

// Wire format of generateContent, limited to the fields used here
type (
	geminiPart struct {
		Text string `json:"text,omitempty"`
	}
	geminiContent struct {
		Role  string       `json:"role,omitempty"`
		Parts []geminiPart `json:"parts"`
	}
	geminiGenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int64   `json:"maxOutputTokens,omitempty"`
	}
	geminiRequest struct {
		Contents         []geminiContent        `json:"contents"`
		GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	}
	geminiCandidate struct {
		Content      *geminiContent `json:"content,omitempty"`
		FinishReason string         `json:"finishReason,omitempty"`
	}
	geminiResponse struct {
		Candidates     []geminiCandidate `json:"candidates"`
		PromptFeedback *struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
	}
)

// NewGemini creates the client. A missing API key is ErrNotConfigured.
func NewGemini(_ context.Context, cfg GeminiConfig, logger *slog.Logger) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultNarrativeModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultGeminiEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &GeminiGenerator{
		client: client,
		url:    strings.TrimRight(cfg.Endpoint, "/") + "/v1beta/" + modelResource(cfg.Model) + ":generateContent",
		cfg:    cfg,
		logger: logger.With(slog.String("component", "gemini"), slog.String("model", cfg.Model)),
	}, nil
}

func modelResource(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

// Generate sends one user turn and joins the text parts of the first candidate
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.cfg.Temperature,
			MaxOutputTokens: g.cfg.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WarnContext(ctx, "gemini request failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		attrs := []any{slog.Duration("duration", time.Since(start))}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			attrs = append(attrs, slog.Int("status", apiErr.Code), slog.String("message", apiErr.Message))
		}
		g.logger.WarnContext(ctx, "gemini returned an error", attrs...)
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	text, err := responseText(&decoded)
	if err != nil {
		g.logger.WarnContext(ctx, "gemini returned no usable text", slog.String("error", err.Error()))
		return "", err
	}

	g.logger.DebugContext(ctx, "gemini response received",
		slog.Int("prompt_bytes", len(prompt)),
		slog.Int("response_bytes", len(text)),
		slog.Duration("duration", time.Since(start)))
	return text, nil
}

func responseText(resp *geminiResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		if candidate.FinishReason == "SAFETY" {
			return "", fmt.Errorf("%w: %s", ErrBlocked, candidate.FinishReason)
		}
		return "", ErrEmptyResponse
	}
	return text, nil
}
