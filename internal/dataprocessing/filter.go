package dataprocessing

import (
	"slices"
	"time"

	"loteriadash/pkg/contracts/domain"
)

// Criteria narrows the table. Zero values do not filter; bounds are inclusive.
type Criteria struct {
	Years     []int
	From      time.Time
	To        time.Time
	NumberMin *int
	NumberMax *int
	SeriesMin *int
	SeriesMax *int
}

// IsZero reports whether the criteria keep every row
func (c Criteria) IsZero() bool {
	return len(c.Years) == 0 && c.From.IsZero() && c.To.IsZero() &&
		c.NumberMin == nil && c.NumberMax == nil && c.SeriesMin == nil && c.SeriesMax == nil
}

// Match reports whether a draw satisfies the criteria
func (c Criteria) Match(d domain.Draw) bool {
	if len(c.Years) > 0 && !slices.Contains(c.Years, d.Year) {
		return false
	}
	if !c.From.IsZero() && d.Date.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && d.Date.After(c.To) {
		return false
	}
	return within(d.WinningNumber, c.NumberMin, c.NumberMax) &&
		within(d.Series, c.SeriesMin, c.SeriesMax)
}

func within(v int, lo, hi *int) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

// Filter returns the rows of table matching c, in order
func Filter(table *domain.Table, c Criteria) *domain.Table {
	if c.IsZero() {
		return table
	}
	return table.Where(c.Match)
}

// Years lists the distinct years of the table in ascending order
func Years(table *domain.Table) []int {
	seen := make(map[int]bool)
	var years []int
	for _, d := range table.Rows() {
		if !seen[d.Year] {
			seen[d.Year] = true
			years = append(years, d.Year)
		}
	}
	slices.Sort(years)
	return years
}
