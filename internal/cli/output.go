package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// printer renders command results as go-pretty tables or indented JSON
type printer struct {
	w      io.Writer
	format string
}

func (p printer) json() bool {
	return p.format == "json"
}

func (p printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (p printer) newTable(title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	if header != nil {
		t.AppendHeader(header)
	}
	return t
}

// table renders rows, or the value as JSON in json mode
func (p printer) table(v any, title string, header table.Row, rows []table.Row) error {
	if p.json() {
		return p.writeJSON(v)
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(p.w, "(0 rows)")
		return nil
	}
	t := p.newTable(title, header)
	for _, r := range rows {
		t.AppendRow(r)
	}
	t.Render()
	return nil
}

// fields renders a struct as a two column key/value table using its JSON
// names. Nested values are shown as compact JSON.
func (p printer) fields(v any, title string) error {
	if p.json() {
		return p.writeJSON(v)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := p.newTable(title, nil)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 80},
	})
	for _, k := range keys {
		t.AppendRow(table.Row{k, formatValue(m[k])})
	}
	t.Render()
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}
