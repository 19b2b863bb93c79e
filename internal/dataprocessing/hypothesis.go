package dataprocessing

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"loteriadash/pkg/contracts/domain"
)

// ChiSquareUniform tests observed counts against equal expected counts
func ChiSquareUniform(categories []string, observed []float64) (domain.UniformityTest, error) {
	result := domain.UniformityTest{Categories: categories, Observed: observed, PValue: 1}
	k := len(observed)
	if k < 2 || len(categories) != k {
		return result, fmt.Errorf("%w: chi-square needs at least 2 categories", domain.ErrInsufficientData)
	}

	var total float64
	for _, o := range observed {
		total += o
	}
	if total == 0 {
		return result, fmt.Errorf("%w: no observations", domain.ErrInsufficientData)
	}

	expected := total / float64(k)
	var chi float64
	for _, o := range observed {
		d := o - expected
		chi += d * d / expected
	}

	result.Expected = expected
	result.ChiSquare = chi
	result.DoF = k - 1
	result.PValue = distuv.ChiSquared{K: float64(k - 1)}.Survival(chi)
	result.Uniform = result.PValue >= SignificanceLevel
	return result, nil
}

// uniformDomains lists the categories a column is expected to spread over
// evenly when draws are fair.
var uniformDomains = map[string][]string{
	domain.ColUltimoDigito: digitLabels(0, 9),
	domain.ColPrimerDigito: digitLabels(1, 9),
	domain.ColNumeroPar:    {"0", "1"},
	domain.ColRangoNumero:  NumberRanges,
}

func digitLabels(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for d := from; d <= to; d++ {
		out = append(out, strconv.Itoa(d))
	}
	return out
}

// UniformityColumns lists the columns accepted by Uniformity
func UniformityColumns() []string {
	return []string{domain.ColUltimoDigito, domain.ColPrimerDigito, domain.ColNumeroPar, domain.ColRangoNumero}
}

// Uniformity runs ChiSquareUniform over a column's fixed category domain.
// Values outside the domain (a first digit of 0) are reported in Extra.
func Uniformity(table *domain.Table, column string) (domain.UniformityTest, error) {
	categories, ok := uniformDomains[column]
	if !ok {
		return domain.UniformityTest{Column: column}, fmt.Errorf("%w: no uniform domain for %q", domain.ErrUnknownColumn, column)
	}

	index := make(map[string]int, len(categories))
	for i, c := range categories {
		index[c] = i
	}
	observed := make([]float64, len(categories))
	outside := 0
	for _, d := range table.Rows() {
		cell, _ := d.Cell(column)
		if i, ok := index[cell]; ok {
			observed[i]++
		} else {
			outside++
		}
	}

	result, err := ChiSquareUniform(categories, observed)
	result.Column = column
	if outside > 0 {
		result.Extra = map[string]any{"outside_domain": outside}
	}
	return result, err
}

// Shapiro-Wilk polynomial coefficients (Royston 1995, AS R94)
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// Sample size limits of the Royston approximation
const (
	ShapiroMinN = 3
	ShapiroMaxN = 5000
)

func poly(c []float64, x float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}

// ShapiroWilk tests values for normality
func ShapiroWilk(values []float64) (domain.NormalityTest, error) {
	n := len(values)
	result := domain.NormalityTest{N: n, PValue: 1}
	if n < ShapiroMinN || n > ShapiroMaxN {
		return result, fmt.Errorf("%w: shapiro-wilk needs %d to %d values, got %d",
			domain.ErrInsufficientData, ShapiroMinN, ShapiroMaxN, n)
	}

	x := sortedCopy(values)
	if x[n-1]-x[0] < 1e-19 {
		return result, fmt.Errorf("%w: all values are identical", domain.ErrInsufficientData)
	}

	a := shapiroCoefficients(n)

	mean := stat.Mean(x, nil)
	var ss, num float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	for i := 1; i <= n/2; i++ {
		num += a[i] * (x[n-i] - x[i-1])
	}
	w := num * num / ss
	if w > 1 {
		w = 1
	}
	result.W = w
	result.PValue = shapiroPValue(w, n)
	result.Normal = result.PValue >= SignificanceLevel
	return result, nil
}

// shapiroCoefficients returns a[1..n/2]; index 0 is unused
func shapiroCoefficients(n int) []float64 {
	nn2 := n / 2
	a := make([]float64, nn2+1)
	if n == 3 {
		a[1] = math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	m := make([]float64, nn2+1)
	var summ2 float64
	for i := 1; i <= nn2; i++ {
		m[i] = distuv.UnitNormal.Quantile((float64(i) - 0.375) / (an + 0.25))
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)

	a1 := poly(swC1, rsn) - m[1]/ssumm2
	first := 2
	var fac float64
	if n > 5 {
		first = 3
		a2 := -m[2]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[1]*m[1] - 2*m[2]*m[2]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[2] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[1]*m[1]) / (1 - 2*a1*a1))
	}
	a[1] = a1
	for i := first; i <= nn2; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func shapiroPValue(w float64, n int) float64 {
	if w >= 1 {
		return 1
	}
	if n == 3 {
		const pi6, stqr = 6 / math.Pi, math.Pi / 3
		p := pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		return math.Max(p, 0)
	}

	an := float64(n)
	y := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		mu = poly(swC3, an)
		sigma = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		mu = poly(swC5, xx)
		sigma = math.Exp(poly(swC6, xx))
	}
	return distuv.UnitNormal.Survival((y - mu) / sigma)
}

// Normality runs ShapiroWilk on a numeric column. Tables larger than the
// approximation limit are tested on their most recent rows.
func Normality(table *domain.Table, column string) (domain.NormalityTest, error) {
	values, err := table.Column(column)
	if err != nil {
		return domain.NormalityTest{Column: column}, err
	}
	if len(values) > ShapiroMaxN {
		values = values[len(values)-ShapiroMaxN:]
	}
	result, err := ShapiroWilk(values)
	result.Column = column
	return result, err
}

// AutocorrelationBound is the 95% white noise bound for n observations
func AutocorrelationBound(n int) float64 {
	if n == 0 {
		return 0
	}
	return 1.96 / math.Sqrt(float64(n))
}

// Autocorrelation computes the sample autocorrelation for lags 1..maxLag
func Autocorrelation(values []float64, maxLag int) (domain.Autocorrelation, error) {
	n := len(values)
	result := domain.Autocorrelation{N: n, Bound: AutocorrelationBound(n)}
	if n < 2 {
		return result, fmt.Errorf("%w: autocorrelation needs at least 2 values", domain.ErrInsufficientData)
	}
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 1 {
		return result, fmt.Errorf("invalid max lag %d", maxLag)
	}

	mean := stat.Mean(values, nil)
	var denom float64
	for _, v := range values {
		d := v - mean
		denom += d * d
	}
	if denom == 0 {
		return result, fmt.Errorf("%w: series is constant", domain.ErrInsufficientData)
	}

	result.Lags = make([]domain.LagCorrelation, 0, maxLag)
	for lag := 1; lag <= maxLag; lag++ {
		var num float64
		for t := 0; t < n-lag; t++ {
			num += (values[t] - mean) * (values[t+lag] - mean)
		}
		r := num / denom
		result.Lags = append(result.Lags, domain.LagCorrelation{
			Lag:         lag,
			Value:       r,
			Significant: math.Abs(r) > result.Bound,
		})
	}
	return result, nil
}

// ColumnAutocorrelation runs Autocorrelation on a numeric column in draw order
func ColumnAutocorrelation(table *domain.Table, column string, maxLag int) (domain.Autocorrelation, error) {
	values, err := table.Column(column)
	if err != nil {
		return domain.Autocorrelation{Column: column}, err
	}
	result, err := Autocorrelation(values, maxLag)
	result.Column = column
	return result, err
}
