package domain

import "errors"

var (
	// ErrUnknownColumn is returned when a column name is not part of the enriched table
	ErrUnknownColumn = errors.New("unknown column")
	// ErrInsufficientData is returned when a statistic needs more rows than available
	ErrInsufficientData = errors.New("insufficient data")
)
