package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"loteriadash/internal/infrastructure"
	"loteriadash/internal/narrative"
)

// ContextSource supplies the bounded dataset digest. DatasetService satisfies it.
type ContextSource interface {
	Context(ctx context.Context) (string, error)
}

// Narrative is one generated text
type Narrative struct {
	Kind        narrative.Kind `json:"kind"`
	Text        string         `json:"text"`
	Model       string         `json:"model,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	DurationMS  int64          `json:"duration_ms"`
}

// NarrativeService turns the dataset digest into prompts and sends them to
// the generator. Calls are rate limited and never retried.
type NarrativeService struct {
	generator narrative.Generator
	source    ContextSource
	limiter   *rate.Limiter
	model     string
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NarrativeConfig tunes the service
type NarrativeConfig struct {
	Model string
	RPS   float64
	Burst int
}

// NewNarrativeService creates the service. A nil generator behaves as unconfigured.
func NewNarrativeService(generator narrative.Generator, source ContextSource, cfg NarrativeConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *NarrativeService {
	if logger == nil {
		logger = slog.Default()
	}
	if generator == nil {
		generator = narrative.Unconfigured{}
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &NarrativeService{
		generator: generator,
		source:    source,
		limiter:   rate.NewLimiter(limit, burst),
		model:     cfg.Model,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "narrative_service")),
	}
}

// Configured reports whether a real generator is wired in
func (s *NarrativeService) Configured() bool {
	_, unconfigured := s.generator.(narrative.Unconfigured)
	return !unconfigured
}

// Ask answers a free-form question about the dataset
func (s *NarrativeService) Ask(ctx context.Context, question string) (Narrative, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Narrative{}, datasetError(fmt.Errorf("%w: question is empty", ErrInvalidInput))
	}
	return s.withContext(ctx, narrative.KindAsk, func(digest string) string {
		return narrative.AskPrompt(digest, question)
	})
}

// Insights lists five observations about the dataset
func (s *NarrativeService) Insights(ctx context.Context) (Narrative, error) {
	return s.withContext(ctx, narrative.KindInsights, narrative.InsightsPrompt)
}

// Report writes the executive narrative report
func (s *NarrativeService) Report(ctx context.Context) (Narrative, error) {
	return s.withContext(ctx, narrative.KindReport, narrative.ReportPrompt)
}

// Suggestions proposes further analyses
func (s *NarrativeService) Suggestions(ctx context.Context) (Narrative, error) {
	return s.withContext(ctx, narrative.KindSuggestions, narrative.SuggestionsPrompt)
}

// Explain describes a metric in plain language. It does not need the dataset.
func (s *NarrativeService) Explain(ctx context.Context, metric string, value float64, detail string) (Narrative, error) {
	metric = strings.TrimSpace(metric)
	if metric == "" {
		return Narrative{}, datasetError(fmt.Errorf("%w: metric is empty", ErrInvalidInput))
	}
	return s.generate(ctx, narrative.KindExplain, narrative.ExplainPrompt(metric, value, detail))
}

func (s *NarrativeService) withContext(ctx context.Context, kind narrative.Kind, build func(string) string) (Narrative, error) {
	if !s.Configured() {
		return Narrative{}, narrativeError(narrative.ErrNotConfigured)
	}
	digest, err := s.source.Context(ctx)
	if err != nil {
		return Narrative{}, err
	}
	return s.generate(ctx, kind, build(digest))
}

func (s *NarrativeService) generate(ctx context.Context, kind narrative.Kind, prompt string) (Narrative, error) {
	ctx, span := otel.Tracer("loteriadash.services").Start(ctx, "narrative.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("narrative.kind", string(kind)),
		attribute.Int("narrative.prompt_bytes", len(prompt)),
	)

	if !s.limiter.Allow() {
		err := fmt.Errorf("%w: rate limit exceeded", ErrNarrativeUnavailable)
		infrastructure.RecordNarrativeCall(ctx, s.metrics, string(kind), 0, err)
		s.logger.WarnContext(ctx, "narrative request rate limited", slog.String("kind", string(kind)))
		return Narrative{}, narrativeError(err)
	}

	start := time.Now()
	text, err := s.generator.Generate(ctx, prompt)
	elapsed := time.Since(start)
	infrastructure.RecordNarrativeCall(ctx, s.metrics, string(kind), elapsed, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "narrative generation failed",
			slog.String("kind", string(kind)),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()))
		return Narrative{}, narrativeError(err)
	}

	s.logger.InfoContext(ctx, "narrative generated",
		slog.String("kind", string(kind)),
		slog.Int("chars", len(text)),
		slog.Duration("duration", elapsed))

	return Narrative{
		Kind:        kind,
		Text:        text,
		Model:       s.model,
		GeneratedAt: time.Now().UTC(),
		DurationMS:  elapsed.Milliseconds(),
	}, nil
}
