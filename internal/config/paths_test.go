package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	base := t.TempDir()

	t.Run("relative directories resolve against base", func(t *testing.T) {
		paths, err := GetPaths(PathsConfig{BaseDir: base, DataDir: "data", ReportsDir: "out"})
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
		assert.Equal(t, filepath.Join(base, "out"), paths.ReportsDir)
		assert.Equal(t, filepath.Join(base, DefaultChartsDir), paths.ChartsDir)
		assert.Equal(t, filepath.Join(base, DefaultLogsDir), paths.LogsDir)
	})

	t.Run("absolute directories are kept", func(t *testing.T) {
		abs := filepath.Join(base, "elsewhere")
		paths, err := GetPaths(PathsConfig{BaseDir: base, DataDir: abs})
		require.NoError(t, err)
		assert.Equal(t, abs, paths.DataDir)
	})

	t.Run("empty base uses working directory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		paths, err := GetPaths(PathsConfig{})
		require.NoError(t, err)
		assert.Equal(t, wd, paths.BaseDir)
		assert.Equal(t, filepath.Join(wd, DefaultDataDir), paths.DataDir)
	})
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths, err := GetPaths(PathsConfig{BaseDir: base})
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.ReportsDir, paths.ChartsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
	assert.False(t, FileExists(paths.DataDir), "data directory must not be created")
}

func TestPathHelperMethods(t *testing.T) {
	paths := &Paths{
		DataDir:    "/srv/data",
		ReportsDir: "/srv/reports",
		ChartsDir:  "/srv/reports/charts",
		LogsDir:    "/srv/logs",
	}

	assert.Equal(t, filepath.Join("/srv/data", "draws.csv"), paths.DatasetPath("draws.csv"))
	assert.Equal(t, filepath.Join("/srv/reports", "export.xlsx"), paths.GetReportPath("export.xlsx"))
}
