package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("fecha,sorteo,numero,serie\n"), 0644))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		lookup    string
		wantName  string
		wantErr   bool
		available []string
	}{
		{
			name:     "exact match",
			files:    []string{"premio_mayor_loteria_medellin.csv"},
			lookup:   "premio_mayor_loteria_medellin.csv",
			wantName: "premio_mayor_loteria_medellin.csv",
		},
		{
			name:     "case-insensitive fallback",
			files:    []string{"PREMIO_MAYOR_LOTERIA_MEDELLIN.CSV", "otro.csv"},
			lookup:   "premio_mayor_loteria_medellin.csv",
			wantName: "PREMIO_MAYOR_LOTERIA_MEDELLIN.CSV",
		},
		{
			name:      "no match lists directory",
			files:     []string{"b.xlsx", "a.csv"},
			lookup:    "premio_mayor_loteria_medellin.csv",
			wantErr:   true,
			available: []string{"a.csv", "b.xlsx"},
		},
		{
			name:      "empty directory",
			lookup:    "x.csv",
			wantErr:   true,
			available: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, filepath.Join(dir, f))
			}

			info, err := NewDiscovery("").Resolve(dir, tt.lookup)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrFileNotFound))

				var nf *NotFoundError
				require.True(t, errors.As(err, &nf))
				assert.Equal(t, filepath.Join(dir, tt.lookup), nf.SearchedPath)
				assert.Equal(t, tt.available, nf.Available)
				assert.Contains(t, err.Error(), nf.SearchedPath)
				for _, name := range tt.available {
					assert.Contains(t, err.Error(), name)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, info.Name)
			assert.Equal(t, filepath.Join(dir, tt.wantName), info.Path)
		})
	}
}

func TestResolveMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	_, err := NewDiscovery("").Resolve(dir, "x.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "does not exist")
}

func TestResolveIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "DATA.CSV"), 0755))

	_, err := NewDiscovery("").Resolve(dir, "data.csv")
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

func TestResolveRelativeToBase(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "data", "sorteos.csv"))

	info, err := NewDiscovery(base).Resolve("data", "SORTEOS.csv")
	require.NoError(t, err)
	assert.Equal(t, "sorteos.csv", info.Name)
}

func TestFindDatasets(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "old.csv"))
	touch(t, filepath.Join(dir, "new.xlsx"))
	touch(t, filepath.Join(dir, "notes.md"))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), past, past))

	found, err := NewDiscovery("").FindDatasets(dir)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "old.csv", found[0].Name)
	assert.Equal(t, "new.xlsx", found[1].Name)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.CSV"))
	assert.True(t, IsSupported("a.xlsx"))
	assert.True(t, IsSupported("a.txt"))
	assert.False(t, IsSupported("a.xls"))
	assert.False(t, IsSupported("a"))
}
