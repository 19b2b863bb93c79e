package domain

import (
	"fmt"
	"slices"
	"time"
)

// Table is the validated, feature-enriched draw history. It is sorted by
// date and never mutated after construction; accessors hand out copies.
type Table struct {
	rows   []Draw
	source string
}

// NewTable wraps rows, which must already be sorted. The slice is copied.
func NewTable(rows []Draw, source string) *Table {
	return &Table{rows: slices.Clone(rows), source: source}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the i-th row
func (t *Table) Row(i int) Draw {
	return t.rows[i]
}

// Rows returns a copy of all rows
func (t *Table) Rows() []Draw {
	if t == nil {
		return nil
	}
	return slices.Clone(t.rows)
}

// Source returns the path the table was loaded from
func (t *Table) Source() string {
	return t.source
}

// Column extracts a numeric column
func (t *Table) Column(column string) ([]float64, error) {
	out := make([]float64, 0, t.Len())
	for _, r := range t.rows {
		v, ok := r.Numeric(column)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not numeric", ErrUnknownColumn, column)
		}
		out = append(out, v)
	}
	if t.Len() == 0 {
		if _, ok := (Draw{}).Numeric(column); !ok {
			return nil, fmt.Errorf("%w: %q is not numeric", ErrUnknownColumn, column)
		}
	}
	return out, nil
}

// DateRange returns the first and last draw dates
func (t *Table) DateRange() (time.Time, time.Time) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}
	}
	return t.rows[0].Date, t.rows[len(t.rows)-1].Date
}

// Where returns a new table with the rows matching keep, order preserved
func (t *Table) Where(keep func(Draw) bool) *Table {
	out := make([]Draw, 0, t.Len())
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return &Table{rows: out, source: t.source}
}

// DropReason classifies rows removed during normalization
type DropReason string

const (
	DropInvalidDate  DropReason = "invalid_date"
	DropMissingValue DropReason = "missing_value"
	DropNonNumeric   DropReason = "non_numeric"
	DropOutOfRange   DropReason = "out_of_range"
)

// LoadReport describes one load: where the data came from and how many rows
// survived normalization. Dropped rows are always accounted for here.
type LoadReport struct {
	SourcePath     string             `json:"source_path"`
	Format         string             `json:"format"`
	SourceModTime  time.Time          `json:"source_mod_time"`
	SourceSize     int64              `json:"source_size"`
	InputRows      int                `json:"input_rows"`
	OutputRows     int                `json:"output_rows"`
	Dropped        map[DropReason]int `json:"dropped"`
	ColumnMapping  map[string]string  `json:"column_mapping"`
	IgnoredColumns []string           `json:"ignored_columns"`
	Missing        []MissingValue     `json:"missing_values"`
	LoadedAt       time.Time          `json:"loaded_at"`
	Duration       time.Duration      `json:"duration_ns"`
}

// DroppedRows returns the difference between input and output rows
func (r LoadReport) DroppedRows() int {
	return r.InputRows - r.OutputRows
}

// DroppedByReason flattens Dropped for metrics and logs
func (r LoadReport) DroppedByReason() map[string]int {
	out := make(map[string]int, len(r.Dropped))
	for k, v := range r.Dropped {
		out[string(k)] = v
	}
	return out
}
