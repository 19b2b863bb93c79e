package charts

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"loteriadash/pkg/contracts/domain"
)

// Renderer draws chart configs as PNG images with gonum/plot
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a renderer with the dashboard image size
func NewRenderer() *Renderer {
	return &Renderer{Width: 10 * vg.Inch, Height: 6 * vg.Inch}
}

// RenderPNG draws cfg into w. Pie charts are drawn as share bars since
// gonum/plot has no pie plotter.
func (r *Renderer) RenderPNG(cfg domain.ChartConfig, w io.Writer) error {
	p, err := r.plot(cfg)
	if err != nil {
		return fmt.Errorf("render %s: %w", cfg.Name, err)
	}

	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", cfg.Name, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Name, err)
	}
	return nil
}

func (r *Renderer) plot(cfg domain.ChartConfig) (*plot.Plot, error) {
	if len(cfg.Series) == 0 {
		return nil, fmt.Errorf("%w: chart has no series", domain.ErrInsufficientData)
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = cfg.XAxis
	p.Y.Label.Text = cfg.YAxis
	if cfg.ShowGrid {
		p.Add(plotter.NewGrid())
	}

	var err error
	switch cfg.Type {
	case domain.ChartBar, domain.ChartHist:
		err = addBars(p, cfg, false)
	case domain.ChartPie:
		p.Y.Label.Text = "%"
		err = addBars(p, cfg, true)
	case domain.ChartLine:
		err = addLines(p, cfg)
	case domain.ChartScatter:
		err = addScatter(p, cfg)
	case domain.ChartHeatmap:
		err = addHeatmap(p, cfg)
	default:
		err = fmt.Errorf("unsupported chart type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	if cfg.ShowLegend {
		p.Legend.Top = true
	}
	return p, nil
}

func addBars(p *plot.Plot, cfg domain.ChartConfig, shares bool) error {
	s := cfg.Series[0]
	values := make(plotter.Values, len(s.Data))
	labels := make([]string, len(s.Data))
	var total float64
	for _, pt := range s.Data {
		total += pt.Value
	}
	for i, pt := range s.Data {
		values[i] = pt.Value
		if shares && total > 0 {
			values[i] = pt.Value / total * 100
		}
		labels[i] = pt.Label
	}

	width := vg.Points(20)
	if len(values) > 20 {
		width = vg.Points(10)
	}
	bars, err := plotter.NewBarChart(values, width)
	if err != nil {
		return err
	}
	bars.Color = parseHex(s.Color)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	if cfg.ShowLegend {
		p.Legend.Add(s.Name, bars)
	}
	return nil
}

func addLines(p *plot.Plot, cfg domain.ChartConfig) error {
	for _, s := range cfg.Series {
		points := make(plotter.XYs, len(s.Data))
		for i, pt := range s.Data {
			points[i] = plotter.XY{X: pt.X, Y: pt.Value}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return err
		}
		line.Color = parseHex(s.Color)
		line.Width = vg.Points(2)
		p.Add(line)
		if cfg.ShowLegend {
			p.Legend.Add(s.Name, line)
		}
	}
	return nil
}

func addScatter(p *plot.Plot, cfg domain.ChartConfig) error {
	for _, s := range cfg.Series {
		points := make(plotter.XYs, len(s.Data))
		for i, pt := range s.Data {
			points[i] = plotter.XY{X: pt.X, Y: pt.Value}
		}
		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = parseHex(s.Color)
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
	}
	return nil
}

// seriesGrid exposes series × points as a heat map grid. Columns are points,
// rows are series.
type seriesGrid struct {
	series []domain.ChartSeries
}

func (g seriesGrid) Dims() (c, r int) { return len(g.series[0].Data), len(g.series) }
func (g seriesGrid) Z(c, r int) float64 {
	if c >= len(g.series[r].Data) {
		return 0
	}
	return g.series[r].Data[c].Value
}
func (g seriesGrid) X(c int) float64 { return float64(c) }
func (g seriesGrid) Y(r int) float64 { return float64(r) }

func addHeatmap(p *plot.Plot, cfg domain.ChartConfig) error {
	grid := seriesGrid{series: cfg.Series}
	if c, _ := grid.Dims(); c == 0 {
		return fmt.Errorf("%w: heat map has no columns", domain.ErrInsufficientData)
	}

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	cols, _ := grid.Dims()
	xLabels := make([]string, cols)
	for i, pt := range cfg.Series[0].Data {
		xLabels[i] = pt.Label
	}
	yLabels := make([]string, len(cfg.Series))
	for i, s := range cfg.Series {
		yLabels[i] = s.Name
	}
	p.NominalX(xLabels...)
	p.NominalY(yLabels...)
	return nil
}

// parseHex converts "#RRGGBB" to a color, falling back to the first palette entry
func parseHex(hex string) color.Color {
	if hex == "" {
		hex = defaultColors[0]
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(hex, "#")) != 6 {
		return color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}
