package charts

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"loteriadash/internal/dataprocessing"
	"loteriadash/pkg/contracts/domain"
)

// ErrUnknownChart is returned for names outside the catalog
var ErrUnknownChart = errors.New("unknown chart")

// Default color palette for chart series
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Options tunes the catalog builders
type Options struct {
	TopN       int // bars in the top-numbers and top-series charts
	NumberBins int // histogram bins over [0, 10000)
	SeriesBin  int // histogram bin width for series
}

// DefaultOptions returns the dashboard defaults
func DefaultOptions() Options {
	return Options{TopN: 10, NumberBins: 20, SeriesBin: 50}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.TopN <= 0 {
		o.TopN = def.TopN
	}
	if o.NumberBins <= 0 {
		o.NumberBins = def.NumberBins
	}
	if o.SeriesBin <= 0 {
		o.SeriesBin = def.SeriesBin
	}
	return o
}

type builderFunc func(*domain.Table, Options) domain.ChartConfig

type entry struct {
	name  string
	title string
	build builderFunc
}

// catalog order is the dashboard order
var catalog = []entry{
	{"number-distribution", "Distribución de números ganadores", numberDistribution},
	{"parity", "Números pares vs impares", parity},
	{"top-numbers", "Números más frecuentes", topNumbers},
	{"first-digit", "Frecuencia del primer dígito", firstDigit},
	{"last-digit", "Frecuencia del último dígito", lastDigit},
	{"draws-per-year", "Sorteos por año", drawsPerYear},
	{"series-distribution", "Distribución de series", seriesDistribution},
	{"top-series", "Series más frecuentes", topSeries},
	{"series-per-year", "Serie por año", seriesPerYear},
	{"draws-over-time", "Número ganador en el tiempo", drawsOverTime},
	{"weekday", "Sorteos por día de la semana", weekday},
	{"month-year-heatmap", "Sorteos por mes y año", monthYearHeatmap},
	{"yearly-mean-number", "Número ganador promedio por año", yearlyMeanNumber},
	{"number-vs-series", "Número ganador vs serie", numberVsSeries},
}

// Names lists the catalog in dashboard order
func Names() []string {
	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.name
	}
	return names
}

func lookup(name string) (entry, bool) {
	for _, e := range catalog {
		if e.name == name {
			return e, true
		}
	}
	return entry{}, false
}

// Build produces the named chart from the table
func Build(name string, table *domain.Table, opts Options) (domain.ChartConfig, error) {
	e, ok := lookup(name)
	if !ok {
		return domain.ChartConfig{}, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	if table.Len() == 0 {
		return domain.ChartConfig{}, fmt.Errorf("%w: chart %q has no rows to draw", domain.ErrInsufficientData, name)
	}

	cfg := e.build(table, opts.withDefaults())
	cfg.Name = e.name
	cfg.Title = e.title
	cfg.ShowGrid = cfg.Type != domain.ChartPie
	cfg.Colors = assignColors(max(len(cfg.Series), len(firstSeries(cfg))))
	for i := range cfg.Series {
		cfg.Series[i].Color = defaultColors[i%len(defaultColors)]
	}
	return cfg, nil
}

func firstSeries(cfg domain.ChartConfig) []domain.ChartPoint {
	if len(cfg.Series) == 0 {
		return nil
	}
	return cfg.Series[0].Data
}

func assignColors(count int) []string {
	if count <= 0 {
		return nil
	}
	colors := make([]string, count)
	for i := range colors {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

func single(name string, points []domain.ChartPoint) []domain.ChartSeries {
	return []domain.ChartSeries{{Name: name, Data: points}}
}

func countPoints(labels []string, counts map[string]int) []domain.ChartPoint {
	points := make([]domain.ChartPoint, len(labels))
	for i, l := range labels {
		points[i] = domain.ChartPoint{Label: l, X: float64(i), Value: float64(counts[l])}
	}
	return points
}

func numberDistribution(t *domain.Table, o Options) domain.ChartConfig {
	width := 10000 / o.NumberBins
	counts := make([]int, o.NumberBins)
	for _, d := range t.Rows() {
		counts[min(d.WinningNumber/width, o.NumberBins-1)]++
	}
	points := make([]domain.ChartPoint, o.NumberBins)
	for i, c := range counts {
		lo := i * width
		points[i] = domain.ChartPoint{
			Label: fmt.Sprintf("%d-%d", lo, lo+width),
			X:     float64(lo) + float64(width)/2,
			Value: float64(c),
		}
	}
	return domain.ChartConfig{
		Type:   domain.ChartHist,
		XAxis:  "Número ganador",
		YAxis:  "Frecuencia",
		Series: single("Sorteos", points),
	}
}

func parity(t *domain.Table, _ Options) domain.ChartConfig {
	counts := map[string]int{}
	for _, d := range t.Rows() {
		if d.Even == 1 {
			counts["Par"]++
		} else {
			counts["Impar"]++
		}
	}
	return domain.ChartConfig{
		Type:       domain.ChartPie,
		Series:     single("Paridad", countPoints([]string{"Par", "Impar"}, counts)),
		ShowLegend: true,
	}
}

func topFrequencies(t *domain.Table, column string, n int) []domain.ChartPoint {
	freq, err := dataprocessing.TopFrequencies(t, column, n)
	if err != nil {
		return nil
	}
	points := make([]domain.ChartPoint, len(freq))
	for i, f := range freq {
		points[i] = domain.ChartPoint{Label: f.Value, X: float64(i), Value: float64(f.Count)}
	}
	return points
}

func topNumbers(t *domain.Table, o Options) domain.ChartConfig {
	return domain.ChartConfig{
		Type:   domain.ChartBar,
		XAxis:  "Número ganador",
		YAxis:  "Veces",
		Series: single("Frecuencia", topFrequencies(t, domain.ColNumero, o.TopN)),
	}
}

func topSeries(t *domain.Table, o Options) domain.ChartConfig {
	return domain.ChartConfig{
		Type:   domain.ChartBar,
		XAxis:  "Serie",
		YAxis:  "Veces",
		Series: single("Frecuencia", topFrequencies(t, domain.ColSerie, o.TopN)),
	}
}

func digitChart(t *domain.Table, pick func(domain.Draw) int, axis string) domain.ChartConfig {
	counts := map[string]int{}
	for _, d := range t.Rows() {
		counts[strconv.Itoa(pick(d))]++
	}
	labels := make([]string, 10)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return domain.ChartConfig{
		Type:   domain.ChartBar,
		XAxis:  axis,
		YAxis:  "Frecuencia",
		Series: single("Sorteos", countPoints(labels, counts)),
	}
}

func firstDigit(t *domain.Table, _ Options) domain.ChartConfig {
	return digitChart(t, func(d domain.Draw) int { return d.FirstDigit }, "Primer dígito")
}

func lastDigit(t *domain.Table, _ Options) domain.ChartConfig {
	return digitChart(t, func(d domain.Draw) int { return d.LastDigit }, "Último dígito")
}

func yearLabels(t *domain.Table) []string {
	years := dataprocessing.Years(t)
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}
	return labels
}

func drawsPerYear(t *domain.Table, _ Options) domain.ChartConfig {
	counts := map[string]int{}
	for _, d := range t.Rows() {
		counts[strconv.Itoa(d.Year)]++
	}
	return domain.ChartConfig{
		Type:   domain.ChartBar,
		XAxis:  "Año",
		YAxis:  "Sorteos",
		Series: single("Sorteos", countPoints(yearLabels(t), counts)),
	}
}

func seriesDistribution(t *domain.Table, o Options) domain.ChartConfig {
	maxSeries := 0
	for _, d := range t.Rows() {
		maxSeries = max(maxSeries, d.Series)
	}
	bins := maxSeries/o.SeriesBin + 1
	counts := make([]int, bins)
	for _, d := range t.Rows() {
		counts[d.Series/o.SeriesBin]++
	}
	points := make([]domain.ChartPoint, bins)
	for i, c := range counts {
		lo := i * o.SeriesBin
		points[i] = domain.ChartPoint{
			Label: fmt.Sprintf("%d-%d", lo, lo+o.SeriesBin),
			X:     float64(lo) + float64(o.SeriesBin)/2,
			Value: float64(c),
		}
	}
	return domain.ChartConfig{
		Type:   domain.ChartHist,
		XAxis:  "Serie",
		YAxis:  "Frecuencia",
		Series: single("Sorteos", points),
	}
}

func weekday(t *domain.Table, _ Options) domain.ChartConfig {
	counts := map[string]int{}
	for _, d := range t.Rows() {
		counts[d.DayName]++
	}
	return domain.ChartConfig{
		Type:   domain.ChartBar,
		XAxis:  "Día de la semana",
		YAxis:  "Sorteos",
		Series: single("Sorteos", countPoints(dataprocessing.DayNames[:], counts)),
	}
}

// monthYearHeatmap has one series per year and one point per month
func monthYearHeatmap(t *domain.Table, _ Options) domain.ChartConfig {
	counts := map[int]*[13]int{}
	for _, d := range t.Rows() {
		row, ok := counts[d.Year]
		if !ok {
			row = &[13]int{}
			counts[d.Year] = row
		}
		row[d.Month]++
	}

	years := dataprocessing.Years(t)
	series := make([]domain.ChartSeries, 0, len(years))
	for _, y := range years {
		points := make([]domain.ChartPoint, 12)
		for m := 1; m <= 12; m++ {
			points[m-1] = domain.ChartPoint{
				Label: dataprocessing.MonthNames[m],
				X:     float64(m),
				Value: float64(counts[y][m]),
			}
		}
		series = append(series, domain.ChartSeries{Name: strconv.Itoa(y), Data: points})
	}
	return domain.ChartConfig{
		Type:   domain.ChartHeatmap,
		XAxis:  "Mes",
		YAxis:  "Año",
		Series: series,
	}
}

func yearlyMeanNumber(t *domain.Table, _ Options) domain.ChartConfig {
	byYear := map[int][]float64{}
	for _, d := range t.Rows() {
		byYear[d.Year] = append(byYear[d.Year], float64(d.WinningNumber))
	}
	years := dataprocessing.Years(t)
	points := make([]domain.ChartPoint, len(years))
	for i, y := range years {
		points[i] = domain.ChartPoint{
			Label: strconv.Itoa(y),
			X:     float64(y),
			Value: round2(stat.Mean(byYear[y], nil)),
		}
	}
	return domain.ChartConfig{
		Type:   domain.ChartLine,
		XAxis:  "Año",
		YAxis:  "Promedio",
		Series: single("Número promedio", points),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// seriesPerYear draws the mean and median series of each year
func seriesPerYear(t *domain.Table, _ Options) domain.ChartConfig {
	byYear := map[int][]float64{}
	for _, d := range t.Rows() {
		byYear[d.Year] = append(byYear[d.Year], float64(d.Series))
	}
	years := dataprocessing.Years(t)
	mean := make([]domain.ChartPoint, len(years))
	median := make([]domain.ChartPoint, len(years))
	for i, y := range years {
		values := byYear[y]
		slices.Sort(values)
		label := strconv.Itoa(y)
		mean[i] = domain.ChartPoint{Label: label, X: float64(y), Value: round2(stat.Mean(values, nil))}
		median[i] = domain.ChartPoint{Label: label, X: float64(y), Value: round2(dataprocessing.Quantile(values, 0.5))}
	}
	return domain.ChartConfig{
		Type:  domain.ChartLine,
		XAxis: "Año",
		YAxis: "Serie",
		Series: []domain.ChartSeries{
			{Name: "Serie promedio", Data: mean},
			{Name: "Serie mediana", Data: median},
		},
		ShowLegend: true,
	}
}

// drawsOverTime plots every winning number against days since the first
// draw. A least squares trend line is added when the table supports one.
func drawsOverTime(t *domain.Table, _ Options) domain.ChartConfig {
	first, last := t.DateRange()
	rows := t.Rows()
	points := make([]domain.ChartPoint, len(rows))
	for i, d := range rows {
		points[i] = domain.ChartPoint{
			Label: d.Date.Format(domain.DateLayout),
			X:     d.Date.Sub(first).Hours() / 24,
			Value: float64(d.WinningNumber),
		}
	}
	series := single("Número ganador", points)

	if trend, err := dataprocessing.LinearTrend(t, domain.ColNumero); err == nil {
		span := last.Sub(first).Hours() / 24
		series = append(series, domain.ChartSeries{
			Name: "Tendencia (" + trend.Direction + ")",
			Data: []domain.ChartPoint{
				{Label: first.Format(domain.DateLayout), X: 0, Value: round2(trend.Intercept)},
				{Label: last.Format(domain.DateLayout), X: span, Value: round2(trend.Intercept + trend.Slope*span)},
			},
		})
	}
	return domain.ChartConfig{
		Type:       domain.ChartLine,
		XAxis:      "Días desde el primer sorteo",
		YAxis:      "Número ganador",
		Series:     series,
		ShowLegend: true,
	}
}

func numberVsSeries(t *domain.Table, _ Options) domain.ChartConfig {
	rows := t.Rows()
	points := make([]domain.ChartPoint, len(rows))
	for i, d := range rows {
		points[i] = domain.ChartPoint{X: float64(d.WinningNumber), Value: float64(d.Series)}
	}
	slices.SortStableFunc(points, func(a, b domain.ChartPoint) int {
		return cmp.Compare(a.X, b.X)
	})
	return domain.ChartConfig{
		Type:   domain.ChartScatter,
		XAxis:  "Número ganador",
		YAxis:  "Serie",
		Series: single("Sorteos", points),
	}
}
