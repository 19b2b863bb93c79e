package dataprocessing

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"loteriadash/pkg/contracts/domain"
)

// column roles
const (
	roleDate     = "date"
	roleSequence = "sequence"
	roleNumber   = "number"
	roleSeries   = "series"
)

var requiredRoles = []string{roleDate, roleSequence, roleNumber, roleSeries}

var columnAliases = map[string]string{
	"fecha":          roleDate,
	"date":           roleDate,
	"sorteo":         roleSequence,
	"draw_sequence":  roleSequence,
	"sequence":       roleSequence,
	"número":         roleNumber,
	"numero":         roleNumber,
	"winning_number": roleNumber,
	"number":         roleNumber,
	"serie":          roleSeries,
	"series":         roleSeries,
}

// Day-first for ambiguous slashed and dashed dates. ISO is tried first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"20060102",
}

// NormalizeHeader lowercases and trims a column name
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func isPlaceholder(h string) bool {
	return h == "" || strings.HasPrefix(h, "unnamed")
}

// columnMapping maps each role to its column index
type columnMapping map[string]int

// resolveColumns maps headers to roles. The first header that matches a
// role wins; placeholders and unknown headers are returned as ignored.
func resolveColumns(headers []string) (columnMapping, []string, error) {
	mapping := make(columnMapping, len(requiredRoles))
	var ignored, seen []string

	for i, raw := range headers {
		h := NormalizeHeader(raw)
		seen = append(seen, h)
		role, ok := columnAliases[h]
		if !ok || isPlaceholder(h) {
			ignored = append(ignored, raw)
			continue
		}
		if _, dup := mapping[role]; dup {
			ignored = append(ignored, raw)
			continue
		}
		mapping[role] = i
	}

	var missing []string
	for _, role := range requiredRoles {
		if _, ok := mapping[role]; !ok {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return nil, ignored, &SchemaError{Missing: missing, Seen: seen}
	}
	return mapping, ignored, nil
}

// ParseDate parses a date cell. Workbook serial numbers are accepted when
// allowSerial is set.
func ParseDate(value string, allowSerial bool) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return truncateDay(t), true
		}
	}
	if allowSerial {
		if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return truncateDay(t), true
			}
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseInt coerces a cell to an integer. Integral floats such as "42.0" are
// accepted. The second result is the drop reason when coercion fails.
func ParseInt(value string) (int, domain.DropReason) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "nan") || strings.EqualFold(value, "null") {
		return 0, domain.DropMissingValue
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, ""
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, domain.DropNonNumeric
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, domain.DropOutOfRange
	}
	return int(f), ""
}

// normalizeRows coerces raw rows into draws. Each rejected row is counted
// under exactly one reason; the date is checked first.
func normalizeRows(raw *RawTable, mapping columnMapping) ([]domain.Draw, map[domain.DropReason]int) {
	draws := make([]domain.Draw, 0, len(raw.Rows))
	dropped := make(map[domain.DropReason]int)
	allowSerial := raw.Format == FormatXLSX

	for _, row := range raw.Rows {
		draw, reason := normalizeRow(row, mapping, allowSerial)
		if reason != "" {
			dropped[reason]++
			continue
		}
		draws = append(draws, draw)
	}

	slices.SortStableFunc(draws, func(a, b domain.Draw) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.DrawSequence, b.DrawSequence)
	})
	return draws, dropped
}

func normalizeRow(row []string, mapping columnMapping, allowSerial bool) (domain.Draw, domain.DropReason) {
	dateCell := row[mapping[roleDate]]
	if strings.TrimSpace(dateCell) == "" {
		return domain.Draw{}, domain.DropMissingValue
	}
	date, ok := ParseDate(dateCell, allowSerial)
	if !ok {
		return domain.Draw{}, domain.DropInvalidDate
	}

	var values [3]int
	for i, role := range []string{roleSequence, roleNumber, roleSeries} {
		v, reason := ParseInt(row[mapping[role]])
		if reason != "" {
			return domain.Draw{}, reason
		}
		values[i] = v
	}

	draw := domain.Draw{
		Date:          date,
		DrawSequence:  values[0],
		WinningNumber: values[1],
		Series:        values[2],
	}
	if draw.WinningNumber < domain.MinWinningNumber || draw.WinningNumber > domain.MaxWinningNumber || draw.Series < 0 {
		return domain.Draw{}, domain.DropOutOfRange
	}

	draw.Features = DeriveFeatures(draw.Date, draw.WinningNumber, draw.Series)
	return draw, ""
}
