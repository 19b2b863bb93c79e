// Package exporter writes the enriched draw table to CSV and XLSX.
//
// CSV exports carry a UTF-8 BOM and the canonical header so Excel opens the
// accented column names correctly. XLSX exports hold two sheets: sorteos with
// every row and resumen with the load accounting and descriptive statistics.
//
//	exp := exporter.NewExporter(files.NewManager(paths, logger), logger)
//	path, err := exp.Export(ctx, exporter.FormatXLSX, table, &report)
//
// Write and StreamWriter encode straight to an io.Writer for HTTP downloads.
package exporter
