package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"loteriadash/internal/files"
	"loteriadash/pkg/contracts/domain"
)

// ErrUnknownFormat is returned for export formats other than csv and xlsx
var ErrUnknownFormat = errors.New("unknown export format")

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ContentType returns the MIME type of an export format
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ParseFormat normalizes a user supplied format, defaulting to csv
func ParseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FileName returns the download name of an export taken at t
func FileName(format string, t time.Time) string {
	return fmt.Sprintf("sorteos_enriquecidos_%s.%s", t.Format("20060102"), format)
}

// Write encodes the table in the given format
func Write(w io.Writer, format string, table *domain.Table, report *domain.LoadReport) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatXLSX:
		return WriteXLSX(w, table, report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Exporter writes exports into the reports directory
type Exporter struct {
	files  *files.Manager
	logger *slog.Logger
	now    func() time.Time
}

// NewExporter creates an exporter writing through the file manager
func NewExporter(manager *files.Manager, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		files:  manager,
		logger: logger.With(slog.String("component", "exporter")),
		now:    time.Now,
	}
}

// Export writes the table to the reports directory and returns the path
func (e *Exporter) Export(ctx context.Context, format string, table *domain.Table, report *domain.LoadReport) (string, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := e.files.ReportPath(FileName(format, e.now()))
	start := time.Now()
	if err := e.files.WriteAtomic(path, func(w io.Writer) error {
		return Write(w, format, table, report)
	}); err != nil {
		e.logger.ErrorContext(ctx, "export failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("export %s: %w", format, err)
	}

	e.logger.InfoContext(ctx, "dataset exported",
		slog.String("format", format),
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Duration("duration", time.Since(start)))
	return path, nil
}
