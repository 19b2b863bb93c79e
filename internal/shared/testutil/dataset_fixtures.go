package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleDrawsCSV is a small draw history with one row per failure mode the
// loader has to survive: an unparseable date, a non-numeric number and a
// placeholder column exported by spreadsheet tools.
const SampleDrawsCSV = `Fecha,Sorteo,Número,Serie,Unnamed: 4
2021-03-05,4562,1234,101,
2020-01-05,1,7,42,
2020-01-10,2,9999,0,
no-es-fecha,3,8,5,
2020-02-14,4,abc,17,
2022-12-30,5,5000,300,
`

// CleanDrawsCSV has only valid rows, in date order.
const CleanDrawsCSV = `fecha,sorteo,numero,serie
2020-01-03,4500,1111,10
2020-01-10,4501,2222,120
2020-01-17,4502,3333,250
2020-01-24,4503,4444,310
2021-01-01,4504,1111,10
2021-01-08,4505,8000,55
`

// WriteDataset writes content into a fresh temp directory and returns the directory.
func WriteDataset(t *testing.T, name, content string) string {
	t.Helper()

	dir := t.TempDir()
	WriteFile(t, filepath.Join(dir, name), content)
	return dir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
