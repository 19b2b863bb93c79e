// Package charts turns a draw table into renderer-neutral chart configs and
// draws them as PNG images.
//
// The catalog is fixed and ordered the way the dashboard shows it:
//
//	cfg, err := charts.Build("top-numbers", table, charts.DefaultOptions())
//	err = charts.NewRenderer().RenderPNG(cfg, w)
//
// Views are independent. BuildAll reports a failure per view instead of
// failing the whole page.
package charts
