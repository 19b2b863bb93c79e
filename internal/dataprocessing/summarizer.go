package dataprocessing

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"loteriadash/pkg/contracts/domain"
)

// Summarizer builds the bounded context handed to the narrative generator
type Summarizer struct {
	logger   *slog.Logger
	maxBytes int
	topN     int
	sample   int
}

// SummarizerConfig holds configuration options for the Summarizer
type SummarizerConfig struct {
	MaxBytes   int // cap on the formatted context
	TopN       int // ranked numbers and series to include
	SampleRows int // leading rows included verbatim
}

// DefaultSummarizerConfig returns the configuration used by the dashboard
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{MaxBytes: 4096, TopN: 5, SampleRows: 3}
}

// NewSummarizer creates a summarizer
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultSummarizerConfig()
	if config.MaxBytes <= 0 {
		config.MaxBytes = def.MaxBytes
	}
	if config.TopN <= 0 {
		config.TopN = def.TopN
	}
	if config.SampleRows < 0 {
		config.SampleRows = def.SampleRows
	}
	return &Summarizer{
		logger:   logger.With(slog.String("component", "summarizer")),
		maxBytes: config.MaxBytes,
		topN:     config.TopN,
		sample:   config.SampleRows,
	}
}

// MaxBytes returns the cap applied by Format
func (s *Summarizer) MaxBytes() int {
	return s.maxBytes
}

// Build computes the context summary. It is deterministic for a given table.
func (s *Summarizer) Build(table *domain.Table) domain.ContextSummary {
	rows := table.Rows()
	summary := domain.ContextSummary{TotalDraws: len(rows)}
	if len(rows) == 0 {
		return summary
	}

	first, last := table.DateRange()
	summary.FirstDate = first.Format(domain.DateLayout)
	summary.LastDate = last.Format(domain.DateLayout)

	numbers := make([]float64, len(rows))
	series := make([]float64, len(rows))
	numberCounts := make(map[int]int)
	seriesCounts := make(map[int]int)
	perYear := make(map[int]int)
	perWeekday := make(map[int]int)

	for i, d := range rows {
		numbers[i] = float64(d.WinningNumber)
		series[i] = float64(d.Series)
		numberCounts[d.WinningNumber]++
		seriesCounts[d.Series]++
		perYear[d.Year]++
		perWeekday[d.DayOfWeek]++
		if d.Even == 1 {
			summary.EvenCount++
		} else {
			summary.OddCount++
		}
	}

	summary.MeanNumber = stat.Mean(numbers, nil)
	summary.MedianNumber = Quantile(sortedCopy(numbers), 0.5)
	summary.MeanSeries = stat.Mean(series, nil)
	summary.MedianSeries = Quantile(sortedCopy(series), 0.5)
	summary.UniqueNumbers = len(numberCounts)
	summary.UniqueSeries = len(seriesCounts)
	summary.TopNumbers = rankCounts(numberCounts, s.topN)
	summary.TopSeries = rankCounts(seriesCounts, s.topN)

	for year, count := range perYear {
		summary.Years = append(summary.Years, year)
		summary.MaxDrawsPerYear = max(summary.MaxDrawsPerYear, count)
	}
	slices.Sort(summary.Years)
	summary.AvgDrawsPerYear = float64(len(rows)) / float64(len(perYear))

	bestDay := 0
	for day := range DayNames {
		if perWeekday[day] > perWeekday[bestDay] {
			bestDay = day
		}
	}
	summary.TopWeekday = DayNames[bestDay]

	n := min(s.sample, len(rows))
	summary.Sample = rows[:n]
	return summary
}

func rankCounts(counts map[int]int, n int) []domain.RankedValue {
	out := make([]domain.RankedValue, 0, len(counts))
	for v, c := range counts {
		out = append(out, domain.RankedValue{Value: v, Count: c})
	}
	slices.SortFunc(out, func(a, b domain.RankedValue) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Format renders the summary as Spanish plain text, truncated to MaxBytes
// on a line boundary.
func (s *Summarizer) Format(summary domain.ContextSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total de sorteos: %d\n", summary.TotalDraws)
	if summary.TotalDraws == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "Rango de fechas: %s a %s\n", summary.FirstDate, summary.LastDate)
	fmt.Fprintf(&b, "Años cubiertos: %s\n", joinInts(summary.Years))
	fmt.Fprintf(&b, "Número ganador: media %.2f, mediana %.1f, %d valores únicos\n",
		summary.MeanNumber, summary.MedianNumber, summary.UniqueNumbers)
	fmt.Fprintf(&b, "Serie: media %.2f, mediana %.1f, %d valores únicos\n",
		summary.MeanSeries, summary.MedianSeries, summary.UniqueSeries)
	fmt.Fprintf(&b, "Paridad: %d pares, %d impares\n", summary.EvenCount, summary.OddCount)
	fmt.Fprintf(&b, "Números más frecuentes: %s\n", formatRanked(summary.TopNumbers))
	fmt.Fprintf(&b, "Series más frecuentes: %s\n", formatRanked(summary.TopSeries))
	fmt.Fprintf(&b, "Sorteos por año: promedio %.1f, máximo %d\n", summary.AvgDrawsPerYear, summary.MaxDrawsPerYear)
	fmt.Fprintf(&b, "Día más común: %s\n", summary.TopWeekday)
	if len(summary.Sample) > 0 {
		b.WriteString("Primeros registros:\n")
		for _, d := range summary.Sample {
			fmt.Fprintf(&b, "- %s sorteo %d: número %04d, serie %d\n",
				d.Date.Format(domain.DateLayout), d.DrawSequence, d.WinningNumber, d.Series)
		}
	}
	return truncateLines(b.String(), s.maxBytes)
}

// Context builds and formats the summary in one step
func (s *Summarizer) Context(table *domain.Table) string {
	text := s.Format(s.Build(table))
	s.logger.Debug("context summary built",
		slog.Int("rows", table.Len()),
		slog.Int("bytes", len(text)))
	return text
}

func truncateLines(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := strings.LastIndexByte(text[:limit], '\n')
	if cut <= 0 {
		return strings.ToValidUTF8(text[:limit], "")
	}
	return text[:cut+1]
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func formatRanked(values []domain.RankedValue) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d (%d veces)", v.Value, v.Count)
	}
	return strings.Join(parts, ", ")
}
