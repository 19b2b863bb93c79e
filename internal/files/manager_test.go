package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loteriadash/internal/config"
	"loteriadash/internal/shared/testutil"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	paths, err := config.GetPaths(config.PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	logger, _ := testutil.NewTestLogger(t)
	return NewManager(paths, logger)
}

func TestWriteAtomic(t *testing.T) {
	m := newTestManager(t)
	path := m.ReportPath("sorteos.csv")

	err := m.WriteAtomic(path, func(w io.Writer) error {
		_, err := fmt.Fprint(w, "fecha\n2020-01-05\n")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fecha\n2020-01-05\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must be cleaned up")
	assert.Equal(t, "sorteos.csv", entries[0].Name())
}

func TestWriteAtomicFailureKeepsOldFile(t *testing.T) {
	m := newTestManager(t)
	path := m.ReportPath("parity.png")
	require.NoError(t, m.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("old"))
		return err
	}))

	err := m.WriteAtomic(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("render failed")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestPathsStayInsideOutputDirs(t *testing.T) {
	m := newTestManager(t)
	assert.Equal(t, filepath.Join(m.paths.ReportsDir, "x.csv"), m.ReportPath("../../x.csv"))
}
