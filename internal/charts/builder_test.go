package charts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loteriadash/internal/dataprocessing"
	"loteriadash/pkg/contracts/domain"
)

func draw(date string, seq, number, series int) domain.Draw {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return domain.Draw{
		Date:          d,
		DrawSequence:  seq,
		WinningNumber: number,
		Series:        series,
		Features:      dataprocessing.DeriveFeatures(d, number, series),
	}
}

func sampleTable() *domain.Table {
	return domain.NewTable([]domain.Draw{
		draw("2020-01-03", 1, 1111, 10),
		draw("2020-01-10", 2, 2222, 120),
		draw("2020-02-14", 3, 1111, 250),
		draw("2021-03-05", 4, 9999, 310),
		draw("2021-03-12", 5, 40, 55),
	}, "memory")
}

func seriesValues(cfg domain.ChartConfig) map[string]float64 {
	out := map[string]float64{}
	for _, p := range cfg.Series[0].Data {
		out[p.Label] = p.Value
	}
	return out
}

func TestBuild_EveryCatalogChart(t *testing.T) {
	table := sampleTable()
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			cfg, err := Build(name, table, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, name, cfg.Name)
			assert.NotEmpty(t, cfg.Title)
			assert.NotEmpty(t, cfg.Series)
			assert.NotEmpty(t, cfg.Colors)
			for _, s := range cfg.Series {
				assert.NotEmpty(t, s.Color)
			}
		})
	}
}

func TestBuild_UnknownAndEmpty(t *testing.T) {
	_, err := Build("pastel", sampleTable(), DefaultOptions())
	assert.ErrorIs(t, err, ErrUnknownChart)

	_, err = Build("parity", domain.NewTable(nil, "memory"), DefaultOptions())
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestBuild_Parity(t *testing.T) {
	cfg, err := Build("parity", sampleTable(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, domain.ChartPie, cfg.Type)
	assert.False(t, cfg.ShowGrid)
	assert.Equal(t, map[string]float64{"Par": 2, "Impar": 3}, seriesValues(cfg))
}

func TestBuild_TopNumbers(t *testing.T) {
	cfg, err := Build("top-numbers", sampleTable(), Options{TopN: 2})
	require.NoError(t, err)

	points := cfg.Series[0].Data
	require.Len(t, points, 2)
	assert.Equal(t, "1111", points[0].Label)
	assert.Equal(t, 2.0, points[0].Value)
}

func TestBuild_NumberDistribution(t *testing.T) {
	cfg, err := Build("number-distribution", sampleTable(), Options{NumberBins: 4})
	require.NoError(t, err)

	values := seriesValues(cfg)
	assert.Equal(t, 4.0, values["0-2500"])
	assert.Equal(t, 1.0, values["7500-10000"])

	total := 0.0
	for _, v := range values {
		total += v
	}
	assert.Equal(t, 5.0, total)
}

func TestBuild_DigitsCoverAllTen(t *testing.T) {
	cfg, err := Build("last-digit", sampleTable(), DefaultOptions())
	require.NoError(t, err)

	values := seriesValues(cfg)
	assert.Len(t, values, 10)
	assert.Equal(t, 2.0, values["1"])
	assert.Equal(t, 1.0, values["0"])
	assert.Equal(t, 0.0, values["5"])
}

func TestBuild_MonthYearHeatmap(t *testing.T) {
	cfg, err := Build("month-year-heatmap", sampleTable(), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, cfg.Series, 2)
	assert.Equal(t, "2020", cfg.Series[0].Name)
	assert.Len(t, cfg.Series[0].Data, 12)
	assert.Equal(t, "Enero", cfg.Series[0].Data[0].Label)
	assert.Equal(t, 2.0, cfg.Series[0].Data[0].Value)
	assert.Equal(t, 2.0, cfg.Series[1].Data[2].Value)
}

func TestBuild_YearlyMean(t *testing.T) {
	cfg, err := Build("yearly-mean-number", sampleTable(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"2020": 1481.33, "2021": 5019.5}, seriesValues(cfg))
}

func TestBuild_SeriesPerYear(t *testing.T) {
	cfg, err := Build("series-per-year", sampleTable(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, domain.ChartLine, cfg.Type)
	require.Len(t, cfg.Series, 2)
	assert.Equal(t, map[string]float64{"2020": 126.67, "2021": 182.5}, seriesValues(cfg))

	median := cfg.Series[1].Data
	require.Len(t, median, 2)
	assert.Equal(t, 120.0, median[0].Value)
	assert.Equal(t, 182.5, median[1].Value)
}

func TestBuild_DrawsOverTime(t *testing.T) {
	table := sampleTable()
	cfg, err := Build("draws-over-time", table, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, cfg.Series, 2)
	draws := cfg.Series[0].Data
	require.Len(t, draws, 5)
	assert.Equal(t, "2020-01-03", draws[0].Label)
	assert.Equal(t, 0.0, draws[0].X)
	assert.Equal(t, 7.0, draws[1].X)
	assert.Equal(t, 40.0, draws[4].Value)

	trend, err := dataprocessing.LinearTrend(table, domain.ColNumero)
	require.NoError(t, err)
	line := cfg.Series[1].Data
	require.Len(t, line, 2)
	assert.Equal(t, draws[4].X, line[1].X)
	assert.InDelta(t, trend.Intercept, line[0].Value, 0.01)
	assert.InDelta(t, trend.Intercept+trend.Slope*line[1].X, line[1].Value, 0.01)
	assert.Contains(t, cfg.Series[1].Name, trend.Direction)
}

func TestBuild_DrawsOverTimeWithoutTrend(t *testing.T) {
	table := domain.NewTable([]domain.Draw{draw("2020-01-03", 1, 1111, 10)}, "memory")
	cfg, err := Build("draws-over-time", table, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, cfg.Series, 1)
}

func TestBuild_ScatterSortedByNumber(t *testing.T) {
	cfg, err := Build("number-vs-series", sampleTable(), DefaultOptions())
	require.NoError(t, err)

	points := cfg.Series[0].Data
	require.Len(t, points, 5)
	assert.Equal(t, 40.0, points[0].X)
	assert.Equal(t, 9999.0, points[4].X)
	assert.Equal(t, 310.0, points[4].Value)
}

func TestBuildAll_IsolatesFailures(t *testing.T) {
	results := BuildAll(context.Background(), domain.NewTable(nil, "memory"), DefaultOptions())

	require.Len(t, results, len(Names()))
	for _, r := range results {
		assert.ErrorIs(t, r.Err, domain.ErrInsufficientData, r.Name)
		assert.NotEmpty(t, r.Error())
	}

	results = BuildAll(context.Background(), sampleTable(), DefaultOptions())
	for i, r := range results {
		assert.Equal(t, Names()[i], r.Name)
		assert.NoError(t, r.Err)
		assert.Empty(t, r.Error())
	}
}
