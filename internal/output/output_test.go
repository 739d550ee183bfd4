package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scli/internal/script"
)

var _ script.Outputs = (*Run)(nil)

func fixedManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(filepath.Join(t.TempDir(), "output"))
	m.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return m
}

func TestManager_PathWithSubfolder(t *testing.T) {
	m := fixedManager(t)

	p, err := m.Path("csv_viewer", "export.csv", "reports")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(m.Base(), "csv_viewer", "reports", "export.csv"), p)

	info, err := os.Stat(filepath.Dir(p))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestManager_PathWithoutSubfolder(t *testing.T) {
	m := fixedManager(t)

	p, err := m.Path("file_counter", "counts.txt", "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(m.Base(), "file_counter", "counts.txt"), p)
}

func TestManager_RejectsEscapingNames(t *testing.T) {
	m := fixedManager(t)

	_, err := m.Path("x", "../evil", "")
	require.Error(t, err)
	_, err = m.Path("..", "f", "")
	require.Error(t, err)
	_, err = m.Dir("x", "a/b")
	require.Error(t, err)
	_, err = m.Path("x", "", "")
	require.Error(t, err)
}

func TestRun_LazyTimestampedDirectory(t *testing.T) {
	m := fixedManager(t)
	id := uuid.NewString()
	run := m.ForRun("hello_world", id)

	_, err := os.Stat(filepath.Join(m.Base(), "hello_world"))
	require.True(t, os.IsNotExist(err), "nothing is created before first use")

	p, err := run.Path("greeting.txt")
	require.NoError(t, err)

	short := id[:8]
	want := filepath.Join(m.Base(), "hello_world", "2025-01-02-03-04-05-"+short, "greeting.txt")
	require.Equal(t, want, p)

	dir, err := run.Dir()
	require.NoError(t, err)
	require.Equal(t, filepath.Dir(want), dir)
}

func TestRun_WithoutRunID(t *testing.T) {
	m := fixedManager(t)
	dir, err := m.ForRun("system_info", "").Dir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(m.Base(), "system_info", "2025-01-02-03-04-05"), dir)
}

func TestNewManager_DefaultBase(t *testing.T) {
	require.Equal(t, "output", NewManager("").Base())
}
