package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Source formats understood by ParseFile
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// candidate delimiters, in tie-break order
var delimiters = []rune{',', ';', '\t', '|'}

// RawTable is a parsed file with no type assumptions: a header and rows of
// strings. Short rows are padded so every row has len(Headers) cells.
type RawTable struct {
	Headers []string
	Rows    [][]string
	Format  string
}

// ParseFile reads a draw history file. Delimited text (.csv, .txt) and Excel
// workbooks (.xlsx) are supported.
func ParseFile(path string) (*RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return parseWorkbook(path)
	case ".csv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		return ParseCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseCSV parses delimited text. The delimiter is sniffed from the header
// line and a leading UTF-8 byte order mark is removed.
func ParseCSV(r io.Reader) (*RawTable, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited file: %w", err)
	}
	return newRawTable(records, FormatCSV)
}

// sniffDelimiter picks the candidate that splits the header line into the
// most fields. Quoted sections are ignored.
func sniffDelimiter(content []byte) rune {
	line := content
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if scanner.Scan() {
		line = scanner.Bytes()
	}

	best, bestCount := delimiters[0], 0
	for _, d := range delimiters {
		count, quoted := 0, false
		for _, c := range string(line) {
			switch {
			case c == '"':
				quoted = !quoted
			case c == d && !quoted:
				count++
			}
		}
		if count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

// parseWorkbook reads the first sheet that has at least a header row. Cell
// values are read raw so date cells arrive as Excel serial numbers.
func parseWorkbook(path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			return newRawTable(rows, FormatXLSX)
		}
	}
	return nil, fmt.Errorf("%w: workbook has no sheet with data", ErrEmptyDataset)
}

func newRawTable(records [][]string, format string) (*RawTable, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	headers := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make([]string, len(headers))
		copy(row, rec)
		rows = append(rows, row)
	}
	return &RawTable{Headers: headers, Rows: rows, Format: format}, nil
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
