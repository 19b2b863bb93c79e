package exporter

import (
	"fmt"

	"loteriadash/pkg/contracts/domain"
)

// formatFloat formats a float64 value with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// cellValues returns the typed cells of one export row. Integers stay
// numeric so spreadsheets can sort and sum them.
func cellValues(d domain.Draw) []any {
	return []any{
		d.Date.Format(domain.DateLayout),
		d.DrawSequence,
		d.WinningNumber,
		d.Series,
		d.Year,
		d.Month,
		d.MonthName,
		d.DayOfWeek,
		d.DayName,
		d.Quarter,
		d.ISOWeek,
		d.DayOfYear,
		d.FirstDigit,
		d.LastDigit,
		d.DigitSum,
		d.Even,
		d.NumberRange,
		d.SeriesRange,
	}
}
