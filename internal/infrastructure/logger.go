package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"loteriadash/internal/config"
)

// redacted replaces secret attribute values in every log line
const redacted = "[REDACTED]"

// secretKeys are attribute names whose values never reach the log output
var secretKeys = map[string]bool{
	"api_key":        true,
	"apikey":         true,
	"key":            true,
	"authorization":  true,
	"x-goog-api-key": true,
}

// logSink owns the process logger and the file it may be writing to
type logSink struct {
	once   sync.Once
	logger *slog.Logger
	mu     sync.Mutex
	file   *os.File
}

var sink = &logSink{}

// contextKey is a type for context keys
type contextKey string

const (
	// TraceIDContextKey is the key for storing trace ID in context
	TraceIDContextKey contextKey = "trace_id"
	// RequestIDContextKey is an alias for TraceIDContextKey
	RequestIDContextKey = TraceIDContextKey
)

// InitializeLogger creates the process logger once and installs it as the
// slog default. A relative log file path is resolved against baseDir.
func InitializeLogger(cfg config.LoggingConfig, baseDir string) (*slog.Logger, error) {
	var err error
	sink.once.Do(func() {
		var out io.Writer
		out, err = sink.open(cfg, baseDir)
		if err != nil {
			return
		}
		sink.logger = NewLogger(out, cfg.Format, &slog.HandlerOptions{
			AddSource: cfg.Development,
			Level:     parseLogLevel(cfg.Level),
		})
		slog.SetDefault(sink.logger)
	})
	return sink.logger, err
}

// GetLogger returns the process logger, or the slog default before
// InitializeLogger has run.
func GetLogger() *slog.Logger {
	if sink.logger == nil {
		return slog.Default()
	}
	return sink.logger
}

// open picks the writer for the configured output: console, file or both
func (s *logSink) open(cfg config.LoggingConfig, baseDir string) (io.Writer, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return os.Stdout, nil
	}

	path := cfg.FilePath
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	s.mu.Lock()
	s.file = f
	s.mu.Unlock()

	if output == "both" {
		return io.MultiWriter(os.Stdout, f), nil
	}
	return f, nil
}

// NewLogger builds a trace-aware logger writing to w. CLI commands and tests
// use it directly; the server goes through InitializeLogger. Secret
// attributes are redacted unless opts brings its own ReplaceAttr.
func NewLogger(w io.Writer, format string, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	if opts.ReplaceAttr == nil {
		opts.ReplaceAttr = redactSecrets
	}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&traceHandler{Handler: handler})
}

func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	if secretKeys[strings.ToLower(a.Key)] && a.Value.Kind() == slog.KindString && a.Value.String() != "" {
		return slog.String(a.Key, redacted)
	}
	return a
}

// traceHandler injects trace_id from the context into every record
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel maps config levels to slog. Unknown levels fall back to info.
func parseLogLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(TraceIDContextKey).(string)
	return traceID
}

// CloseLogFile closes the log file opened by InitializeLogger, if any
func CloseLogFile() error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	if sink.file == nil {
		return nil
	}
	err := sink.file.Close()
	sink.file = nil
	return err
}

// ResetLoggerForTesting drops the process logger so the next
// InitializeLogger call builds a fresh one.
func ResetLoggerForTesting() {
	CloseLogFile()
	sink = &logSink{}
}
