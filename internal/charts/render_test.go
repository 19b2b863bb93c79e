package charts

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loteriadash/pkg/contracts/domain"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderPNG_EveryCatalogChart(t *testing.T) {
	r := NewRenderer()
	for _, res := range BuildAll(context.Background(), sampleTable(), DefaultOptions()) {
		t.Run(res.Name, func(t *testing.T) {
			require.NoError(t, res.Err)

			var buf bytes.Buffer
			require.NoError(t, r.RenderPNG(res.Config, &buf))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestRenderPNG_Errors(t *testing.T) {
	r := NewRenderer()

	err := r.RenderPNG(domain.ChartConfig{Name: "vacio", Type: domain.ChartBar}, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	err = r.RenderPNG(domain.ChartConfig{
		Name:   "raro",
		Type:   "radar",
		Series: []domain.ChartSeries{{Name: "a", Data: []domain.ChartPoint{{Value: 1}}}},
	}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unsupported chart type")
}

func TestRenderPNG_FlatHeatmap(t *testing.T) {
	cfg := domain.ChartConfig{
		Name: "plano",
		Type: domain.ChartHeatmap,
		Series: []domain.ChartSeries{
			{Name: "2020", Data: []domain.ChartPoint{{Label: "Enero", Value: 1}, {Label: "Febrero", Value: 1}}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, NewRenderer().RenderPNG(cfg, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderAll(t *testing.T) {
	dir := t.TempDir()
	results := []Result{
		{Name: "bien", Config: domain.ChartConfig{
			Type:   domain.ChartBar,
			Series: []domain.ChartSeries{{Name: "s", Data: []domain.ChartPoint{{Label: "a", Value: 2}}}},
		}},
		{Name: "mal", Err: domain.ErrInsufficientData},
	}

	paths, failures := NewRenderer().RenderAll(context.Background(), results, dir)

	require.Contains(t, paths, "bien")
	assert.Equal(t, filepath.Join(dir, "bien.png"), paths["bien"])
	_, err := os.Stat(paths["bien"])
	assert.NoError(t, err)
	assert.ErrorIs(t, failures["mal"], domain.ErrInsufficientData)
}

func TestParseHex(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF}, parseHex("#10B981"))
	assert.Equal(t, color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF}, parseHex(""))
	assert.Equal(t, color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF}, parseHex("verde"))
}
