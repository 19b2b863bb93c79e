package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumns is returned when a required column role cannot be found
	ErrMissingColumns = errors.New("missing required columns")
	// ErrEmptyDataset is returned when the source has no header row
	ErrEmptyDataset = errors.New("dataset is empty")
	// ErrUnsupportedFormat is returned for file extensions the parser cannot read
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// SchemaError names the column roles that could not be resolved
type SchemaError struct {
	Missing []string
	Seen    []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s (columns found: %s)",
		ErrMissingColumns, strings.Join(e.Missing, ", "), strings.Join(e.Seen, ", "))
}

// Is matches ErrMissingColumns
func (e *SchemaError) Is(target error) bool {
	return target == ErrMissingColumns
}
