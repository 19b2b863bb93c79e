package exporter

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"loteriadash/internal/dataprocessing"
	"loteriadash/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetDraws   = "sorteos"
	SheetSummary = "resumen"
)

// WriteXLSX writes the enriched table to the sorteos sheet and a summary of
// the load and the main columns to the resumen sheet. report may be nil.
func WriteXLSX(w io.Writer, table *domain.Table, report *domain.LoadReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetDraws); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeDrawsSheet(f, table, bold); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", SheetSummary, err)
	}
	if err := writeSummarySheet(f, table, report, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeDrawsSheet(f *excelize.File, table *domain.Table, headerStyle int) error {
	sw, err := f.NewStreamWriter(SheetDraws)
	if err != nil {
		return fmt.Errorf("failed to open %s stream: %w", SheetDraws, err)
	}
	if err := sw.SetColWidth(1, len(domain.Columns), 14); err != nil {
		return err
	}

	header := make([]any, len(domain.Columns))
	for i, c := range domain.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, d := range table.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cellValues(d)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return sw.Flush()
}

// sheetWriter appends rows to a regular sheet
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (s *sheetWriter) write(values ...any) {
	if s.err != nil {
		return
	}
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetSheetRow(s.sheet, cell, &values)
}

func (s *sheetWriter) style(styleID int, columns int) {
	if s.err != nil || columns == 0 {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, s.row)
	last, _ := excelize.CoordinatesToCellName(columns, s.row)
	s.err = s.f.SetCellStyle(s.sheet, first, last, styleID)
}

func (s *sheetWriter) blank() {
	s.row++
}

func writeSummarySheet(f *excelize.File, table *domain.Table, report *domain.LoadReport, headerStyle int) error {
	sw := &sheetWriter{f: f, sheet: SheetSummary}

	sw.write("Indicador", "Valor")
	sw.style(headerStyle, 2)
	sw.write("Sorteos", table.Len())
	if table.Len() > 0 {
		first, last := table.DateRange()
		sw.write("Desde", first.Format(domain.DateLayout))
		sw.write("Hasta", last.Format(domain.DateLayout))
		sw.write("Años", len(dataprocessing.Years(table)))
	}

	if report != nil {
		sw.write("Archivo", report.SourcePath)
		sw.write("Filas leídas", report.InputRows)
		sw.write("Filas descartadas", report.DroppedRows())
		dropped := report.DroppedByReason()
		reasons := make([]string, 0, len(dropped))
		for reason := range dropped {
			reasons = append(reasons, reason)
		}
		slices.Sort(reasons)
		for _, reason := range reasons {
			sw.write("Descartadas: "+reason, dropped[reason])
		}
	}

	if table.Len() > 0 {
		descriptions, err := dataprocessing.DescribeColumns(table)
		if err != nil {
			return err
		}
		sw.blank()
		sw.write("Columna", "N", "Media", "Desv. estándar", "Mínimo", "Q1", "Mediana", "Q3", "Máximo")
		sw.style(headerStyle, 9)
		for _, d := range descriptions {
			sw.write(d.Column, d.Count, formatFloat(d.Mean), formatFloat(d.Std),
				d.Min, d.Q1, d.Median, d.Q3, d.Max)
		}
	}

	if sw.err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", SheetSummary, sw.err)
	}
	return f.SetColWidth(SheetSummary, "A", "A", 24)
}
