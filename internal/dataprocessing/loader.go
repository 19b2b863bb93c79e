package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"loteriadash/internal/files"
	"loteriadash/internal/infrastructure"
	"loteriadash/pkg/contracts/domain"
)

// Loader reads the draw history from a flat file and turns it into a
// validated, feature-enriched table. It holds no state between loads.
type Loader struct {
	discovery *files.Discovery
	dir       string
	name      string
	logger    *slog.Logger
	metrics   *infrastructure.BusinessMetrics
}

// NewLoader creates a loader for the file name inside dir
func NewLoader(dir, name string, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		discovery: files.NewDiscovery(""),
		dir:       dir,
		name:      name,
		logger:    logger.With(slog.String("component", "dataset_loader")),
		metrics:   metrics,
	}
}

// Resolve locates the dataset file without reading it
func (l *Loader) Resolve() (files.FileInfo, error) {
	return l.discovery.Resolve(l.dir, l.name)
}

// Load resolves, parses and normalizes the dataset. Malformed rows are
// dropped and counted in the report; a missing file or a missing column
// role fails the whole load.
func (l *Loader) Load(ctx context.Context) (*domain.Table, domain.LoadReport, error) {
	ctx, span := otel.Tracer("loteriadash.dataset").Start(ctx, "dataset.load")
	defer span.End()

	start := time.Now()
	table, report, err := l.load(ctx)
	report.Duration = time.Since(start)

	infrastructure.RecordDatasetLoad(ctx, l.metrics, report.SourcePath, report.Duration,
		report.OutputRows, report.DroppedByReason(), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("dir", l.dir),
			slog.String("file", l.name),
			slog.String("error", err.Error()))
		return nil, report, err
	}

	span.SetAttributes(
		attribute.String("dataset.source", report.SourcePath),
		attribute.Int("dataset.rows_in", report.InputRows),
		attribute.Int("dataset.rows_out", report.OutputRows),
	)

	attrs := []any{
		slog.String("source", report.SourcePath),
		slog.Int("input_rows", report.InputRows),
		slog.Int("output_rows", report.OutputRows),
		slog.Int("dropped_rows", report.DroppedRows()),
		slog.Duration("duration", report.Duration),
	}
	if report.DroppedRows() > 0 {
		attrs = append(attrs, slog.Any("dropped_by_reason", report.DroppedByReason()))
		l.logger.WarnContext(ctx, "dataset loaded with dropped rows", attrs...)
	} else {
		l.logger.InfoContext(ctx, "dataset loaded", attrs...)
	}

	return table, report, nil
}

func (l *Loader) load(ctx context.Context) (*domain.Table, domain.LoadReport, error) {
	report := domain.LoadReport{LoadedAt: time.Now()}

	info, err := l.Resolve()
	if err != nil {
		return nil, report, err
	}
	report.SourcePath = info.Path
	report.SourceModTime = info.ModTime
	report.SourceSize = info.Size

	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	raw, err := ParseFile(info.Path)
	if err != nil {
		return nil, report, fmt.Errorf("parse %s: %w", info.Path, err)
	}
	report.Format = raw.Format

	table, err := Normalize(raw, info.Path, &report)
	if err != nil {
		return nil, report, fmt.Errorf("normalize %s: %w", info.Path, err)
	}
	return table, report, nil
}

// Normalize turns a raw table into a sorted, enriched table and fills the
// row accounting of report.
func Normalize(raw *RawTable, source string, report *domain.LoadReport) (*domain.Table, error) {
	mapping, ignored, err := resolveColumns(raw.Headers)
	if err != nil {
		return nil, err
	}

	draws, dropped := normalizeRows(raw, mapping)

	report.InputRows = len(raw.Rows)
	report.OutputRows = len(draws)
	report.Dropped = dropped
	report.IgnoredColumns = ignored
	report.Missing = MissingValues(raw)
	report.ColumnMapping = make(map[string]string, len(mapping))
	for role, idx := range mapping {
		report.ColumnMapping[role] = raw.Headers[idx]
	}

	return domain.NewTable(draws, source), nil
}
