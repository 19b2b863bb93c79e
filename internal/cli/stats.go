package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"loteriadash/internal/dataprocessing"
	api "loteriadash/pkg/contracts/api/v1"
	"loteriadash/pkg/contracts/domain"
)

const defaultMaxLag = 20

type statsFlags struct {
	filters filterFlags
	column  string
	columns []string
	top     int
	maxLag  int
	groupBy string
	value   string
}

// columnOr returns the --column flag or the default of the statistic
func (f *statsFlags) columnOr(def string) string {
	if f.column != "" {
		return f.column
	}
	return def
}

type statsRunner func(cmd *cobra.Command, e *env, c dataprocessing.Criteria, f *statsFlags) error

var statsKinds = map[string]statsRunner{
	"outliers":        runOutliers,
	"groups":          runGroups,
	"frequencies":     runFrequencies,
	"trend":           runTrend,
	"missing":         runMissing,
	"uniformity":      runUniformity,
	"normality":       runNormality,
	"autocorrelation": runAutocorrelation,
	"describe":        runDescribe,
}

func statsKindNames() []string {
	return []string{"outliers", "groups", "frequencies", "trend", "missing",
		"uniformity", "normality", "autocorrelation", "describe"}
}

func newStatsCommand() *cobra.Command {
	f := &statsFlags{}
	cmd := &cobra.Command{
		Use:   "stats <kind>",
		Short: "Run a statistic over the (filtered) draw table",
		Long: fmt.Sprintf(`Stats runs one of the dashboard statistics.

Kinds: %s

Examples:
  loteriactl stats frequencies --column número --top 10
  loteriactl stats groups --group-by año --value serie
  loteriactl stats uniformity --column ultimo_digito --year 2023`, strings.Join(statsKindNames(), ", ")),
		ValidArgs: statsKindNames(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			if f.maxLag < 0 || f.maxLag > 100 {
				return fmt.Errorf("--max-lag must be at most 100, got %d", f.maxLag)
			}
			c, err := f.filters.criteria()
			if err != nil {
				return err
			}
			return statsKinds[args[0]](cmd, e, c, f)
		},
	}

	f.filters.register(cmd)
	cmd.Flags().StringVarP(&f.column, "column", "c", "", "column to analyse")
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "columns to describe")
	cmd.Flags().IntVar(&f.top, "top", 0, "keep the most frequent values only")
	cmd.Flags().IntVar(&f.maxLag, "max-lag", defaultMaxLag, "largest autocorrelation lag")
	cmd.Flags().StringVar(&f.groupBy, "group-by", domain.ColAnio, "grouping column")
	cmd.Flags().StringVar(&f.value, "value", domain.ColNumero, "aggregated numeric column")

	_ = cmd.RegisterFlagCompletionFunc("column", columnCompletion)
	return cmd
}

// columnCompletion narrows --column to the fixed-domain columns for uniformity
func columnCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 && args[0] == "uniformity" {
		return dataprocessing.UniformityColumns(), cobra.ShellCompDirectiveNoFileComp
	}
	return domain.Columns, cobra.ShellCompDirectiveNoFileComp
}

func runOutliers(cmd *cobra.Command, e *env, c dataprocessing.Criteria, f *statsFlags) error {
	r, err := e.dataset.Outliers(cmd.Context(), c, f.columnOr(domain.ColNumero))
	if err != nil {
		return err
	}
	return e.out.fields(r, "Atípicos (IQR) · "+r.Column)
}

func runGroups(cmd *cobra.Command, e *env, c dataprocessing.Criteria, f *statsFlags) error {
	r, err := e.dataset.GroupStats(cmd.Context(), c, api.GroupStatsQuery{GroupBy: f.groupBy, Value: f.value})
	if err != nil {
		return err
	}
	rows := make([]table.Row, 0, len(r.Groups))
	for _, g := range r.Groups {
		rows = append(rows, table.Row{g.Key, g.Count, formatFloat(g.Mean), formatFloat(g.Median),
			formatFloat(g.Std), formatFloat(g.Min), formatFloat(g.Max)})
	}
	return e.out.table(r, fmt.Sprintf("%s por %s", r.Value, r.GroupBy),
		table.Row{r.GroupBy, "n", "media", "mediana", "std", "min", "max"}, rows)
}

func runFrequencies(cmd *cobra.Command, e *env, c dataprocessing.Criteria, f *statsFlags) error {
	column := f.columnOr(domain.ColNumero)
	r, err := e.dataset.Frequencies(cmd.Context(), c, column, f.top)
	if err != nil {
		return err
	}
	rows := make([]table.Row, 0, len(r))
	for _, fr := range r {
		rows = append(rows, table.Row{fr.Value, fr.Count, formatFloat(fr.Percentage)})
	}
	return e.out.table(r, "Frecuencias · "+column, table.Row{column, "veces", "%"}, rows)
}

func runTrend(cmd *cobra.Command, e *env, c dataprocessing.Criteria, f *statsFlags) error {
	r, err := e.dataset.Trend(cmd.Context(), c, f.columnOr(domain.ColNumero))
	if err != nil {
		return err
	}
	return e.out.fields(r, "Tendencia · "+r.Column)
}

func runMissing(cmd *cobra.Command, e *env, _ dataprocessing.Criteria, _ *statsFlags) error {
	r, err := e.dataset.Missing(cmd.Context())
	if err != nil {
		return err
	}
	rows := make([]table.Row, 0, len(r))
	for _, m := range r {
		rows = append(rows, table.Row{m.Column, m.Missing, formatFloat(m.Percentage)})
	}
	return e.out.table(r, "Valores faltantes", table.Row{"columna", "faltantes", "%"}, rows)
}

func runUniformity(cmd *cobra.Command, e *env, c dataprocessing.Criteria, f *statsFlags) error {
	r, err := e.dataset.Uniformity(cmd.Context(), c, f.columnOr(domain.ColUltimoDigito))
	if err != nil {
		return err
	}
	if e.out.json() {
		return e.out.writeJSON(r)
	}
	rows := make([]table.Row, 0, len(r.Categories))
	for i, cat := range r.Categories {
		rows = append(rows, table.Row{cat, formatFloat(r.Observed[i]), formatFloat(r.Expected)})
	}
	if err := e.out.table(r, "Uniformidad · "+r.Column, table.Row{r.Column, "observado", "esperado"}, rows); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "chi²=%s gl=%d p=%s uniforme=%t\n",
		formatFloat(r.ChiSquare), r.DoF, formatFloat(r.PValue), r.Uniform)
	return err
}

func runNormality(cmd *cobra.Command, e *env, c dataprocessing.Criteria, f *statsFlags) error {
	r, err := e.dataset.Normality(cmd.Context(), c, f.columnOr(domain.ColNumero))
	if err != nil {
		return err
	}
	return e.out.fields(r, "Shapiro-Wilk · "+r.Column)
}

func runAutocorrelation(cmd *cobra.Command, e *env, c dataprocessing.Criteria, f *statsFlags) error {
	maxLag := f.maxLag
	if maxLag == 0 {
		maxLag = defaultMaxLag
	}
	r, err := e.dataset.Autocorrelation(cmd.Context(), c, f.columnOr(domain.ColNumero), maxLag)
	if err != nil {
		return err
	}
	rows := make([]table.Row, 0, len(r.Lags))
	for _, l := range r.Lags {
		mark := "no"
		if l.Significant {
			mark = "sí"
		}
		rows = append(rows, table.Row{l.Lag, formatFloat(l.Value), mark})
	}
	title := fmt.Sprintf("Autocorrelación · %s (n=%d, ±%s)", r.Column, r.N, formatFloat(r.Bound))
	return e.out.table(r, title, table.Row{"lag", "acf", "sig"}, rows)
}

func runDescribe(cmd *cobra.Command, e *env, c dataprocessing.Criteria, f *statsFlags) error {
	r, err := e.dataset.Describe(cmd.Context(), c, f.columns...)
	if err != nil {
		return err
	}
	rows := make([]table.Row, 0, len(r))
	for _, d := range r {
		rows = append(rows, table.Row{d.Column, d.Count, formatFloat(d.Mean), formatFloat(d.Std),
			formatFloat(d.Min), formatFloat(d.Q1), formatFloat(d.Median), formatFloat(d.Q3), formatFloat(d.Max)})
	}
	return e.out.table(r, "Descripción",
		table.Row{"columna", "n", "media", "std", "min", "25%", "50%", "75%", "max"}, rows)
}
