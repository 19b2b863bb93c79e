package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"loteriadash/internal/charts"
	"loteriadash/internal/dataprocessing"
	"loteriadash/internal/exporter"
	"loteriadash/internal/infrastructure"
	api "loteriadash/pkg/contracts/api/v1"
	"loteriadash/pkg/contracts/domain"
	"loteriadash/pkg/contracts/events"
)

// Records pagination defaults
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// EventPublisher pushes dataset lifecycle events. websocket.Hub satisfies it.
type EventPublisher interface {
	PublishDataset(ctx context.Context, msgType events.MessageType, event events.DatasetEvent)
}

// DatasetService owns the dataset cache and answers every read of the
// enriched table: summaries, records, statistics, charts and exports.
type DatasetService struct {
	cache      *dataprocessing.Cache
	summarizer *dataprocessing.Summarizer
	exporter   *exporter.Exporter
	renderer   *charts.Renderer
	chartOpts  charts.Options
	chartsDir  string
	publisher  EventPublisher
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
}

// DatasetOption configures a DatasetService
type DatasetOption func(*DatasetService)

// WithPublisher sends reload and invalidation events to p
func WithPublisher(p EventPublisher) DatasetOption {
	return func(s *DatasetService) { s.publisher = p }
}

// WithExporter enables exports to the reports directory
func WithExporter(e *exporter.Exporter) DatasetOption {
	return func(s *DatasetService) { s.exporter = e }
}

// WithCharts sets the chart options and the directory rendered charts are saved to
func WithCharts(opts charts.Options, dir string) DatasetOption {
	return func(s *DatasetService) {
		s.chartOpts = opts
		s.chartsDir = dir
	}
}

// WithMetrics records chart renders
func WithMetrics(m *infrastructure.BusinessMetrics) DatasetOption {
	return func(s *DatasetService) { s.metrics = m }
}

// NewDatasetService creates the service around an existing cache
func NewDatasetService(cache *dataprocessing.Cache, summarizer *dataprocessing.Summarizer, logger *slog.Logger, opts ...DatasetOption) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	if summarizer == nil {
		summarizer = dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig())
	}
	s := &DatasetService{
		cache:      cache,
		summarizer: summarizer,
		renderer:   charts.NewRenderer(),
		chartOpts:  charts.DefaultOptions(),
		logger:     logger.With(slog.String("component", "dataset_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DatasetSummary is the header of the dashboard page
type DatasetSummary struct {
	Summary  domain.ContextSummary `json:"summary"`
	Columns  []domain.Description  `json:"columns"`
	Report   domain.LoadReport     `json:"report"`
	Filtered bool                  `json:"filtered"`
}

// RecordsPage is one page of draws
type RecordsPage struct {
	Records    []domain.Draw `json:"records"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// Table returns the cached table, loading it when needed
func (s *DatasetService) Table(ctx context.Context) (*domain.Table, error) {
	table, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "dataset unavailable", slog.String("error", err.Error()))
		return nil, datasetError(err)
	}
	return table, nil
}

// Filtered returns the rows matching c
func (s *DatasetService) Filtered(ctx context.Context, c dataprocessing.Criteria) (*domain.Table, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.Filter(table, c), nil
}

// Report returns the load report of the cached table
func (s *DatasetService) Report(ctx context.Context) (domain.LoadReport, error) {
	if _, err := s.Table(ctx); err != nil {
		return domain.LoadReport{}, err
	}
	report, _ := s.cache.Report()
	return report, nil
}

// Summary describes the (optionally filtered) table
func (s *DatasetService) Summary(ctx context.Context, c dataprocessing.Criteria) (DatasetSummary, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return DatasetSummary{}, err
	}
	report, _ := s.cache.Report()

	out := DatasetSummary{
		Summary:  s.summarizer.Build(table),
		Report:   report,
		Filtered: !c.IsZero(),
		Columns:  []domain.Description{},
	}
	if table.Len() > 0 {
		cols, err := dataprocessing.DescribeColumns(table)
		if err != nil {
			return DatasetSummary{}, datasetError(err)
		}
		out.Columns = cols
	}
	return out, nil
}

// Context returns the bounded text digest sent to the narrative generator
func (s *DatasetService) Context(ctx context.Context) (string, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return "", err
	}
	return s.summarizer.Context(table), nil
}

// Criteria converts request filters into dataprocessing criteria
func Criteria(f api.FilterRequest, r api.DateRangeRequest) (dataprocessing.Criteria, error) {
	c := dataprocessing.Criteria{
		Years:     f.Years,
		NumberMin: f.NumberMin,
		NumberMax: f.NumberMax,
		SeriesMin: f.SeriesMin,
		SeriesMax: f.SeriesMax,
	}
	var err error
	if r.From != "" {
		if c.From, err = time.Parse(domain.DateLayout, r.From); err != nil {
			return c, datasetError(fmt.Errorf("%w: from %q is not a date", ErrInvalidInput, r.From))
		}
	}
	if r.To != "" {
		if c.To, err = time.Parse(domain.DateLayout, r.To); err != nil {
			return c, datasetError(fmt.Errorf("%w: to %q is not a date", ErrInvalidInput, r.To))
		}
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return c, datasetError(fmt.Errorf("%w: range ends before it starts", ErrInvalidInput))
	}
	return c, nil
}

// Records returns a page of filtered draws in draw order, or reversed for desc
func (s *DatasetService) Records(ctx context.Context, q api.RecordsQuery) (RecordsPage, error) {
	c, err := Criteria(q.FilterRequest, q.DateRangeRequest)
	if err != nil {
		return RecordsPage{}, datasetError(err)
	}
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return RecordsPage{}, err
	}

	page := q.PaginationRequest
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = DefaultPageSize
	}
	page.PageSize = min(page.PageSize, MaxPageSize)

	rows := table.Rows()
	if q.Order == "desc" {
		rows = slices.Clone(rows)
		slices.Reverse(rows)
	}

	total := len(rows)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)

	return RecordsPage{
		Records:    rows[start:end],
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: (total + page.PageSize - 1) / page.PageSize,
	}, nil
}

// Reload drops the cache and loads the source again. Subscribers are told
// about the outcome either way.
func (s *DatasetService) Reload(ctx context.Context) (domain.LoadReport, error) {
	ctx, span := otel.Tracer("loteriadash.services").Start(ctx, "dataset.reload")
	defer span.End()

	table, err := s.cache.Refresh(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.publish(ctx, events.MessageTypeDatasetError, events.DatasetEvent{Error: err.Error()})
		s.logger.ErrorContext(ctx, "dataset reload failed", slog.String("error", err.Error()))
		return domain.LoadReport{}, datasetError(err)
	}

	report, _ := s.cache.Report()
	span.SetAttributes(attribute.Int("dataset.rows", table.Len()))
	s.publish(ctx, events.MessageTypeDatasetReloaded, events.DatasetEvent{
		SourcePath: report.SourcePath,
		Rows:       table.Len(),
		Dropped:    report.DroppedByReason(),
	})
	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.String("source", report.SourcePath),
		slog.Int("rows", table.Len()),
		slog.Int("dropped", report.DroppedRows()))
	return report, nil
}

// SourceChanged is the watcher callback: the cache is already invalidated,
// subscribers learn that the next read reloads.
func (s *DatasetService) SourceChanged(path, reason string) {
	ctx := context.Background()
	s.logger.Info("dataset source changed",
		slog.String("path", path),
		slog.String("reason", reason))
	s.publish(ctx, events.MessageTypeDatasetInvalidated, events.DatasetEvent{
		SourcePath: path,
		Reason:     reason,
	})
}

func (s *DatasetService) publish(ctx context.Context, msgType events.MessageType, event events.DatasetEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishDataset(ctx, msgType, event)
}

// LoadedAt reports when the cached table was loaded, zero when nothing is cached
func (s *DatasetService) LoadedAt() time.Time {
	return s.cache.LoadedAt()
}

// Outliers computes the IQR fences of a numeric column
func (s *DatasetService) Outliers(ctx context.Context, c dataprocessing.Criteria, column string) (domain.OutlierReport, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return domain.OutlierReport{}, err
	}
	report, err := dataprocessing.Outliers(table, column)
	return report, datasetError(err)
}

// GroupStats aggregates value by the groupBy column
func (s *DatasetService) GroupStats(ctx context.Context, c dataprocessing.Criteria, q api.GroupStatsQuery) (domain.GroupStatsResult, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return domain.GroupStatsResult{}, err
	}
	result, err := dataprocessing.GroupStats(table, q.GroupBy, q.Value)
	return result, datasetError(err)
}

// Frequencies counts distinct values of a column. top > 0 keeps the most frequent only.
func (s *DatasetService) Frequencies(ctx context.Context, c dataprocessing.Criteria, column string, top int) ([]domain.Frequency, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return nil, err
	}
	var freq []domain.Frequency
	if top > 0 {
		freq, err = dataprocessing.TopFrequencies(table, column, top)
	} else {
		freq, err = dataprocessing.Frequencies(table, column)
	}
	return freq, datasetError(err)
}

// Trend fits a linear trend of a column against time
func (s *DatasetService) Trend(ctx context.Context, c dataprocessing.Criteria, column string) (domain.TrendResult, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return domain.TrendResult{}, err
	}
	result, err := dataprocessing.LinearTrend(table, column)
	return result, datasetError(err)
}

// Missing returns the null counts of the raw source, before rows were dropped
func (s *DatasetService) Missing(ctx context.Context) ([]domain.MissingValue, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}
	if report.Missing == nil {
		return []domain.MissingValue{}, nil
	}
	return report.Missing, nil
}

// Uniformity runs a chi-square test of a categorical column against a uniform distribution
func (s *DatasetService) Uniformity(ctx context.Context, c dataprocessing.Criteria, column string) (domain.UniformityTest, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return domain.UniformityTest{}, err
	}
	result, err := dataprocessing.Uniformity(table, column)
	return result, datasetError(err)
}

// Normality runs Shapiro-Wilk on a numeric column
func (s *DatasetService) Normality(ctx context.Context, c dataprocessing.Criteria, column string) (domain.NormalityTest, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return domain.NormalityTest{}, err
	}
	result, err := dataprocessing.Normality(table, column)
	return result, datasetError(err)
}

// Autocorrelation computes the lag correlations of a column in draw order
func (s *DatasetService) Autocorrelation(ctx context.Context, c dataprocessing.Criteria, column string, maxLag int) (domain.Autocorrelation, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return domain.Autocorrelation{}, err
	}
	result, err := dataprocessing.ColumnAutocorrelation(table, column, maxLag)
	return result, datasetError(err)
}

// Describe returns descriptive statistics. No columns means the base numeric columns.
func (s *DatasetService) Describe(ctx context.Context, c dataprocessing.Criteria, columns ...string) ([]domain.Description, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return nil, err
	}
	result, err := dataprocessing.DescribeColumns(table, columns...)
	return result, datasetError(err)
}

// Charts builds every catalog chart. Failed views carry their own error.
func (s *DatasetService) Charts(ctx context.Context, c dataprocessing.Criteria) ([]charts.Result, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return nil, err
	}
	results := charts.BuildAll(ctx, table, s.chartOpts)
	for _, r := range results {
		if r.Err != nil {
			s.logger.WarnContext(ctx, "chart failed",
				slog.String("chart", r.Name),
				slog.String("error", r.Err.Error()))
		}
	}
	return results, nil
}

// Chart builds one chart by name
func (s *DatasetService) Chart(ctx context.Context, c dataprocessing.Criteria, name string) (domain.ChartConfig, error) {
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return domain.ChartConfig{}, err
	}
	cfg, err := charts.Build(name, table, s.chartOpts)
	if err != nil {
		infrastructure.RecordChartRender(ctx, s.metrics, name, "json", err)
		return domain.ChartConfig{}, datasetError(err)
	}
	infrastructure.RecordChartRender(ctx, s.metrics, name, "json", nil)
	return cfg, nil
}

// ChartPNG renders one chart as PNG into w
func (s *DatasetService) ChartPNG(ctx context.Context, c dataprocessing.Criteria, name string, w io.Writer) error {
	cfg, err := s.Chart(ctx, c, name)
	if err != nil {
		return err
	}
	err = s.renderer.RenderPNG(cfg, w)
	infrastructure.RecordChartRender(ctx, s.metrics, name, "png", err)
	if err != nil {
		return datasetError(fmt.Errorf("render %s: %w", name, err))
	}
	return nil
}

// SaveCharts renders the whole catalog into the charts directory. It returns
// the written paths and the per-chart failures.
func (s *DatasetService) SaveCharts(ctx context.Context) (map[string]string, map[string]error, error) {
	if s.chartsDir == "" {
		return nil, nil, fmt.Errorf("%w: no charts directory configured", ErrInvalidInput)
	}
	results, err := s.Charts(ctx, dataprocessing.Criteria{})
	if err != nil {
		return nil, nil, err
	}
	written, failed := s.renderer.RenderAll(ctx, results, s.chartsDir)
	for name := range written {
		infrastructure.RecordChartRender(ctx, s.metrics, name, "png", nil)
	}
	for name, ferr := range failed {
		infrastructure.RecordChartRender(ctx, s.metrics, name, "png", ferr)
	}
	s.logger.InfoContext(ctx, "charts saved",
		slog.String("dir", s.chartsDir),
		slog.Int("written", len(written)),
		slog.Int("failed", len(failed)))
	return written, failed, nil
}

// WriteExport streams the enriched table in the given format
func (s *DatasetService) WriteExport(ctx context.Context, w io.Writer, format string, c dataprocessing.Criteria) error {
	format, err := exporter.ParseFormat(format)
	if err != nil {
		return datasetError(err)
	}
	table, err := s.Filtered(ctx, c)
	if err != nil {
		return err
	}
	report, _ := s.cache.Report()
	if err := exporter.Write(w, format, table, &report); err != nil {
		return datasetError(err)
	}
	return nil
}

// Export writes the enriched table to the reports directory and returns the path
func (s *DatasetService) Export(ctx context.Context, format string) (string, error) {
	if s.exporter == nil {
		return "", datasetError(fmt.Errorf("%w: exports are not configured", ErrInvalidInput))
	}
	table, err := s.Table(ctx)
	if err != nil {
		return "", err
	}
	report, _ := s.cache.Report()
	path, err := s.exporter.Export(ctx, format, table, &report)
	if err != nil {
		return "", datasetError(err)
	}
	return path, nil
}
