package dataprocessing

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"loteriadash/pkg/contracts/domain"
)

// SignificanceLevel is the alpha used by every test in this package
const SignificanceLevel = 0.05

// Quantile returns the p-quantile of sorted data by linear interpolation
// between closest ranks (h = (n-1)p). This is the pandas and numpy default;
// gonum's LinearInterp uses a different plotting position.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if hi >= n {
		hi = n - 1
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func sortedCopy(values []float64) []float64 {
	s := slices.Clone(values)
	slices.Sort(s)
	return s
}

// OutlierBounds applies the 1.5×IQR rule
func OutlierBounds(values []float64) domain.OutlierReport {
	report := domain.OutlierReport{Count: len(values)}
	if len(values) == 0 {
		return report
	}

	sorted := sortedCopy(values)
	report.Q1 = Quantile(sorted, 0.25)
	report.Q3 = Quantile(sorted, 0.75)
	report.IQR = report.Q3 - report.Q1
	report.LowerBound = report.Q1 - 1.5*report.IQR
	report.UpperBound = report.Q3 + 1.5*report.IQR

	for _, v := range values {
		if v < report.LowerBound || v > report.UpperBound {
			report.Outliers++
		}
	}
	report.OutlierShare = percentage(report.Outliers, len(values))
	return report
}

// Outliers runs OutlierBounds on a numeric column
func Outliers(table *domain.Table, column string) (domain.OutlierReport, error) {
	values, err := table.Column(column)
	if err != nil {
		return domain.OutlierReport{}, err
	}
	report := OutlierBounds(values)
	report.Column = column
	return report, nil
}

// Describe computes count, mean, sample std, min, quartiles and max
func Describe(values []float64) domain.Description {
	d := domain.Description{Count: len(values)}
	if len(values) == 0 {
		return d
	}
	sorted := sortedCopy(values)
	d.Mean = stat.Mean(values, nil)
	d.Std = sampleStd(values)
	d.Min = sorted[0]
	d.Q1 = Quantile(sorted, 0.25)
	d.Median = Quantile(sorted, 0.5)
	d.Q3 = Quantile(sorted, 0.75)
	d.Max = sorted[len(sorted)-1]
	return d
}

// DescribeColumns describes each numeric column
func DescribeColumns(table *domain.Table, columns ...string) ([]domain.Description, error) {
	if len(columns) == 0 {
		columns = []string{domain.ColSorteo, domain.ColNumero, domain.ColSerie}
	}
	out := make([]domain.Description, 0, len(columns))
	for _, col := range columns {
		values, err := table.Column(col)
		if err != nil {
			return nil, err
		}
		d := Describe(values)
		d.Column = col
		out = append(out, d)
	}
	return out, nil
}

// sample standard deviation; zero below two observations so the result
// stays JSON encodable
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// groupable lists the keys GroupStats accepts
var groupable = map[string]bool{}

func init() {
	for _, c := range domain.CategoricalColumns {
		groupable[c] = true
	}
}

// groupRank orders group labels naturally: months and weekdays by calendar,
// ranges by bucket, numbers numerically.
func groupRank(d domain.Draw, key string) float64 {
	switch key {
	case domain.ColMesNombre:
		return float64(d.Month)
	case domain.ColDiaSemanaNombre:
		return float64(d.DayOfWeek)
	case domain.ColRangoNumero:
		return float64(slices.Index(NumberRanges, d.NumberRange))
	case domain.ColRangoSerie:
		return float64(slices.Index(SeriesRanges, d.SeriesRange))
	}
	v, _ := d.Numeric(key)
	return v
}

// GroupStats aggregates a numeric column by a categorical key
func GroupStats(table *domain.Table, key, value string) (domain.GroupStatsResult, error) {
	result := domain.GroupStatsResult{GroupBy: key, Value: value}
	if !groupable[key] {
		return result, fmt.Errorf("%w: cannot group by %q", domain.ErrUnknownColumn, key)
	}
	if _, ok := (domain.Draw{}).Numeric(value); !ok {
		return result, fmt.Errorf("%w: %q is not numeric", domain.ErrUnknownColumn, value)
	}

	type bucket struct {
		rank   float64
		values []float64
	}
	buckets := make(map[string]*bucket)
	for _, d := range table.Rows() {
		label, err := d.Cell(key)
		if err != nil {
			return result, err
		}
		b, ok := buckets[label]
		if !ok {
			b = &bucket{rank: groupRank(d, key)}
			buckets[label] = b
		}
		v, _ := d.Numeric(value)
		b.values = append(b.values, v)
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	slices.SortFunc(labels, func(a, b string) int {
		if c := cmp.Compare(buckets[a].rank, buckets[b].rank); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	result.Groups = make([]domain.GroupStat, 0, len(labels))
	for _, label := range labels {
		values := buckets[label].values
		sorted := sortedCopy(values)
		result.Groups = append(result.Groups, domain.GroupStat{
			Key:    label,
			Count:  len(values),
			Mean:   stat.Mean(values, nil),
			Median: Quantile(sorted, 0.5),
			Std:    sampleStd(values),
			Min:    floats.Min(values),
			Max:    floats.Max(values),
		})
	}
	return result, nil
}

// Frequencies counts each distinct value of a column, most frequent first.
// Ties are broken by ascending value.
func Frequencies(table *domain.Table, column string) ([]domain.Frequency, error) {
	counts := make(map[string]int)
	for _, d := range table.Rows() {
		cell, err := d.Cell(column)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownColumn, column)
		}
		counts[cell]++
	}
	if table.Len() == 0 {
		if _, err := (domain.Draw{}).Cell(column); err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownColumn, column)
		}
	}

	out := make([]domain.Frequency, 0, len(counts))
	for value, count := range counts {
		out = append(out, domain.Frequency{
			Value:      value,
			Count:      count,
			Percentage: percentage(count, table.Len()),
		})
	}
	slices.SortFunc(out, func(a, b domain.Frequency) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return compareValues(a.Value, b.Value)
	})
	return out, nil
}

func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(a, b)
}

// TopFrequencies returns the first n entries of Frequencies
func TopFrequencies(table *domain.Table, column string, n int) ([]domain.Frequency, error) {
	freq, err := Frequencies(table, column)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(freq) > n {
		freq = freq[:n]
	}
	return freq, nil
}

// LinearTrend fits value = intercept + slope·days, where days counts from
// the first draw. The p-value is the two-sided Student t test of the slope.
func LinearTrend(table *domain.Table, column string) (domain.TrendResult, error) {
	result := domain.TrendResult{Column: column, Direction: domain.TrendFlat, PValue: 1}

	ys, err := table.Column(column)
	if err != nil {
		return result, err
	}
	n := len(ys)
	result.N = n
	if n < 3 {
		return result, fmt.Errorf("%w: trend needs at least 3 rows, got %d", domain.ErrInsufficientData, n)
	}

	first, _ := table.DateRange()
	xs := make([]float64, n)
	for i, d := range table.Rows() {
		xs[i] = d.Date.Sub(first).Hours() / 24
	}
	if floats.Max(xs) == floats.Min(xs) {
		return result, fmt.Errorf("%w: all draws share one date", domain.ErrInsufficientData)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	result.Intercept = alpha
	result.Slope = beta
	result.RSquared = stat.RSquared(xs, ys, nil, alpha, beta)
	if math.IsNaN(result.RSquared) {
		result.RSquared = 0
	}
	result.PValue = slopePValue(xs, ys, alpha, beta)
	result.Significant = result.PValue < SignificanceLevel

	switch {
	case !result.Significant:
	case beta > 0:
		result.Direction = domain.TrendIncreasing
	case beta < 0:
		result.Direction = domain.TrendDecreasing
	}
	return result, nil
}

func slopePValue(xs, ys []float64, alpha, beta float64) float64 {
	n := float64(len(xs))
	meanX := stat.Mean(xs, nil)

	var sse, sxx float64
	for i := range xs {
		r := ys[i] - (alpha + beta*xs[i])
		sse += r * r
		dx := xs[i] - meanX
		sxx += dx * dx
	}
	se := math.Sqrt(sse / (n - 2) / sxx)
	if se == 0 {
		if beta == 0 {
			return 1
		}
		return 0
	}

	t := math.Abs(beta / se)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 2}
	return 2 * dist.Survival(t)
}

var nullTokens = map[string]bool{"": true, "nan": true, "null": true, "na": true, "n/a": true, "none": true}

// IsNullCell reports whether a raw cell counts as missing
func IsNullCell(cell string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(cell))]
}

// MissingValues reports null cells per raw column, in header order
func MissingValues(raw *RawTable) []domain.MissingValue {
	out := make([]domain.MissingValue, len(raw.Headers))
	for i, h := range raw.Headers {
		missing := 0
		for _, row := range raw.Rows {
			if IsNullCell(row[i]) {
				missing++
			}
		}
		out[i] = domain.MissingValue{
			Column:     h,
			Missing:    missing,
			Percentage: percentage(missing, len(raw.Rows)),
		}
	}
	return out
}
