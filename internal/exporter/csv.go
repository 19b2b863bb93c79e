package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"loteriadash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StreamWriter writes CSV rows as they are produced, for HTTP downloads
// and large files. The UTF-8 BOM makes Excel read accented headers correctly.
type StreamWriter struct {
	writer *csv.Writer
	rows   int
}

// NewStreamWriter writes the BOM and the header row
func NewStreamWriter(w io.Writer, headers []string) (*StreamWriter, error) {
	if _, err := w.Write(utf8BOM); err != nil {
		return nil, fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record %d: %w", s.rows, err)
	}
	s.rows++
	return nil
}

// Rows returns the number of records written, header excluded
func (s *StreamWriter) Rows() int {
	return s.rows
}

// Close flushes buffered rows
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	return s.writer.Error()
}

// WriteCSV writes the enriched table with the canonical header
func WriteCSV(w io.Writer, table *domain.Table) error {
	sw, err := NewStreamWriter(w, domain.Columns)
	if err != nil {
		return err
	}
	for _, d := range table.Rows() {
		if err := sw.WriteRecord(d.Record()); err != nil {
			return err
		}
	}
	return sw.Close()
}
