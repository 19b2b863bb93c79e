package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loteriadash/pkg/contracts/domain"
)

func TestChiSquareUniform(t *testing.T) {
	even, err := ChiSquareUniform([]string{"a", "b", "c", "d"}, []float64{10, 10, 10, 10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, even.ChiSquare)
	assert.Equal(t, 3, even.DoF)
	assert.InDelta(t, 1, even.PValue, 1e-12)
	assert.True(t, even.Uniform)

	skewed, err := ChiSquareUniform([]string{"a", "b"}, []float64{20, 0})
	require.NoError(t, err)
	assert.Equal(t, 20.0, skewed.ChiSquare)
	assert.Equal(t, 10.0, skewed.Expected)
	assert.InDelta(t, 7.74e-6, skewed.PValue, 1e-7)
	assert.False(t, skewed.Uniform)
}

func TestChiSquareUniform_Invalid(t *testing.T) {
	_, err := ChiSquareUniform([]string{"a"}, []float64{1})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = ChiSquareUniform([]string{"a", "b"}, []float64{0, 0})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestUniformity(t *testing.T) {
	var draws []domain.Draw
	for i := 0; i < 100; i++ {
		draws = append(draws, domain.Draw{Date: day(2020, time.January, 1).AddDate(0, 0, i), WinningNumber: i})
	}
	table := makeTable(draws...)

	last, err := Uniformity(table, domain.ColUltimoDigito)
	require.NoError(t, err)
	assert.Len(t, last.Categories, 10)
	assert.Equal(t, 10.0, last.Expected)
	assert.True(t, last.Uniform)

	first, err := Uniformity(table, domain.ColPrimerDigito)
	require.NoError(t, err)
	assert.Len(t, first.Categories, 9)
	assert.Equal(t, map[string]any{"outside_domain": 1}, first.Extra)

	_, err = Uniformity(table, domain.ColSerie)
	assert.ErrorIs(t, err, domain.ErrUnknownColumn)
}

func TestShapiroWilk(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		w      float64
		p      float64
	}{
		{"three values", []float64{1, 2, 4}, 0.96429, 0.63689},
		{"evenly spaced", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, 0.96038, 0.55137},
		{"small sample", []float64{2, 4, 4.5, 5, 5.5, 6, 7, 9}, 0.98694, 0.98887},
		{"right skewed", []float64{148, 154, 158, 160, 161, 162, 166, 170, 182, 195, 236}, 0.78881, 0.00670},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ShapiroWilk(tt.values)
			require.NoError(t, err)
			assert.InDelta(t, tt.w, result.W, 1e-4)
			assert.InDelta(t, tt.p, result.PValue, 1e-4)
			assert.Equal(t, tt.p >= SignificanceLevel, result.Normal)
		})
	}
}

func TestShapiroWilk_Extremes(t *testing.T) {
	perfect, err := ShapiroWilk([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1, perfect.W, 1e-12)
	assert.InDelta(t, 1, perfect.PValue, 1e-6)

	outlier, err := ShapiroWilk([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 50})
	require.NoError(t, err)
	assert.Less(t, outlier.PValue, 1e-4)
	assert.False(t, outlier.Normal)

	_, err = ShapiroWilk([]float64{1, 2})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = ShapiroWilk([]float64{4, 4, 4, 4})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestAutocorrelation(t *testing.T) {
	acf, err := Autocorrelation([]float64{1, 2, 1, 2, 1, 2}, 2)
	require.NoError(t, err)

	assert.InDelta(t, 0.8002, acf.Bound, 1e-4)
	require.Len(t, acf.Lags, 2)
	assert.InDelta(t, -0.8333, acf.Lags[0].Value, 1e-4)
	assert.True(t, acf.Lags[0].Significant)
	assert.InDelta(t, 0.6667, acf.Lags[1].Value, 1e-4)
	assert.False(t, acf.Lags[1].Significant)
}

func TestAutocorrelation_Limits(t *testing.T) {
	acf, err := Autocorrelation([]float64{1, 3, 2}, 10)
	require.NoError(t, err)
	assert.Len(t, acf.Lags, 2)

	_, err = Autocorrelation([]float64{1}, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = Autocorrelation([]float64{2, 2, 2}, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}
