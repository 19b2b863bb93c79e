package narrative

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned when no API key is available
	ErrNotConfigured = errors.New("narrative generator not configured")
	// ErrEmptyResponse is returned when the model answers without text
	ErrEmptyResponse = errors.New("narrative generator returned no text")
	// ErrBlocked is returned when the provider refuses the prompt or the answer
	ErrBlocked = errors.New("narrative generation blocked by provider")
)

// Generator turns a prompt into free text. Implementations may be slow,
// may fail and are not deterministic.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Unconfigured is the generator used when no API key is set. Every call
// fails with ErrNotConfigured.
type Unconfigured struct{}

// Generate always returns ErrNotConfigured
func (Unconfigured) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
