package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"loteriadash/internal/dataprocessing"
	"loteriadash/internal/exporter"
	"loteriadash/internal/services"
	api "loteriadash/pkg/contracts/api/v1"
)

// filterFlags mirrors the table filters of the dashboard
type filterFlags struct {
	from, to             string
	years                []int
	numberMin, numberMax int
	seriesMin, seriesMax int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "first draw date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last draw date (YYYY-MM-DD)")
	cmd.Flags().IntSliceVar(&f.years, "year", nil, "keep these years (repeatable or comma separated)")
	cmd.Flags().IntVar(&f.numberMin, "number-min", -1, "lowest winning number")
	cmd.Flags().IntVar(&f.numberMax, "number-max", -1, "highest winning number")
	cmd.Flags().IntVar(&f.seriesMin, "series-min", -1, "lowest series")
	cmd.Flags().IntVar(&f.seriesMax, "series-max", -1, "highest series")
}

func optional(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}

func (f *filterFlags) criteria() (dataprocessing.Criteria, error) {
	return services.Criteria(api.FilterRequest{
		Years:     f.years,
		NumberMin: optional(f.numberMin),
		NumberMax: optional(f.numberMax),
		SeriesMin: optional(f.seriesMin),
		SeriesMax: optional(f.seriesMax),
	}, api.DateRangeRequest{From: f.from, To: f.to})
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the dataset file and report dropped rows",
		Long: `Validate checks that the data directory holds the dataset in a supported
format, loads it and reports how many rows were dropped and why.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			if _, err := e.validator.ValidateDataDirectory(e.paths.DataDir); err != nil {
				return err
			}
			if err := e.validator.ValidateDatasetFile(e.paths.DatasetPath(e.cfg.Dataset.FileName)); err != nil {
				// The loader also matches the name case-insensitively
				e.logger.Debug("exact dataset path not usable", "error", err.Error())
			}

			report, err := e.dataset.Report(cmd.Context())
			if err != nil {
				return err
			}
			if e.out.json() {
				return e.out.writeJSON(report)
			}

			t := e.out.newTable("Dataset", nil)
			t.AppendRows([]table.Row{
				{"source", report.SourcePath},
				{"format", report.Format},
				{"input rows", report.InputRows},
				{"output rows", report.OutputRows},
				{"dropped rows", report.DroppedRows()},
			})
			reasons := report.DroppedByReason()
			keys := make([]string, 0, len(reasons))
			for k := range reasons {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				t.AppendRow(table.Row{"  " + k, reasons[k]})
			}
			if len(report.IgnoredColumns) > 0 {
				t.AppendRow(table.Row{"ignored columns", strings.Join(report.IgnoredColumns, ", ")})
			}
			t.Render()
			return nil
		},
	}
}

func newSummaryCommand() *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the headline metrics of the draw history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			c, err := filters.criteria()
			if err != nil {
				return err
			}
			summary, err := e.dataset.Summary(cmd.Context(), c)
			if err != nil {
				return err
			}
			if e.out.json() {
				return e.out.writeJSON(summary)
			}

			s := summary.Summary
			t := e.out.newTable("Resumen", nil)
			t.AppendRows([]table.Row{
				{"sorteos", s.TotalDraws},
				{"primer sorteo", s.FirstDate},
				{"último sorteo", s.LastDate},
				{"media número", formatFloat(s.MeanNumber)},
				{"mediana número", formatFloat(s.MedianNumber)},
				{"media serie", formatFloat(s.MeanSeries)},
				{"números únicos", s.UniqueNumbers},
				{"series únicas", s.UniqueSeries},
				{"pares / impares", fmt.Sprintf("%d / %d", s.EvenCount, s.OddCount)},
				{"sorteos por año", formatFloat(s.AvgDrawsPerYear)},
				{"día más frecuente", s.TopWeekday},
			})
			t.Render()

			if len(s.TopNumbers) > 0 {
				top := e.out.newTable("Números más frecuentes", table.Row{"número", "veces"})
				for _, r := range s.TopNumbers {
					top.AppendRow(table.Row{fmt.Sprintf("%04d", r.Value), r.Count})
				}
				top.Render()
			}
			if summary.Report.DroppedRows() > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d rows dropped while loading (run 'loteriactl validate' for details)\n",
					summary.Report.DroppedRows())
			}
			return nil
		},
	}
	filters.register(cmd)
	return cmd
}

func newExportCommand() *cobra.Command {
	var (
		filters filterFlags
		format  string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the enriched draw table to CSV or Excel",
		Long: `Export writes the enriched table. Without filters or --out the file is
written atomically to the reports directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			format, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}
			c, err := filters.criteria()
			if err != nil {
				return err
			}

			var path string
			if c.IsZero() && out == "" {
				if path, err = e.dataset.Export(cmd.Context(), format); err != nil {
					return err
				}
			} else {
				path = out
				if path == "" {
					path = e.paths.GetReportPath(exporter.FileName(format, time.Now()))
				}
				if path, err = writeExport(cmd, e, path, format, c); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", path)
			return nil
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: reports directory)")
	return cmd
}

func writeExport(cmd *cobra.Command, e *env, path, format string, c dataprocessing.Criteria) (string, error) {
	if err := e.validator.ValidateOutputDirectory(filepath.Dir(path)); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := e.dataset.WriteExport(cmd.Context(), f, format, c); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

func newChartsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "charts",
		Short: "Render every dashboard chart as PNG into the charts directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			if err := e.validator.ValidateOutputDirectory(e.paths.ChartsDir); err != nil {
				return err
			}
			written, failed, err := e.dataset.SaveCharts(cmd.Context())
			if err != nil {
				return err
			}

			type chartFile struct {
				Name  string `json:"name"`
				Path  string `json:"path,omitempty"`
				Error string `json:"error,omitempty"`
			}
			var result []chartFile
			for name, path := range written {
				result = append(result, chartFile{Name: name, Path: path})
			}
			for name, ferr := range failed {
				result = append(result, chartFile{Name: name, Error: ferr.Error()})
			}
			sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

			rows := make([]table.Row, 0, len(result))
			for _, r := range result {
				status := r.Path
				if r.Error != "" {
					status = "error: " + r.Error
				}
				rows = append(rows, table.Row{r.Name, status})
			}
			if err := e.out.table(result, "Charts", table.Row{"chart", "file"}, rows); err != nil {
				return err
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d charts failed", len(failed), len(result))
			}
			return nil
		},
	}
}
