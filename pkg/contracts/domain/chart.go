package domain

// ChartType identifies how a chart is drawn
type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartLine    ChartType = "line"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
	ChartHeatmap ChartType = "heatmap"
	ChartHist    ChartType = "histogram"
)

// ChartConfig is a renderer-neutral chart description. The dashboard draws
// it client-side; the PNG renderer draws it with gonum/plot.
type ChartConfig struct {
	Name       string        `json:"name"`
	Type       ChartType     `json:"type"`
	Title      string        `json:"title"`
	XAxis      string        `json:"x_axis"`
	YAxis      string        `json:"y_axis"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"show_legend"`
	ShowGrid   bool          `json:"show_grid"`
}

// ChartSeries is one named series of points
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint carries either a category label or an X coordinate
type ChartPoint struct {
	Label string  `json:"label,omitempty"`
	X     float64 `json:"x,omitempty"`
	Value float64 `json:"value"`
}

// Points returns the total number of points across series
func (c ChartConfig) Points() int {
	n := 0
	for _, s := range c.Series {
		n += len(s.Data)
	}
	return n
}
