package templates

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scli/internal/registry"
)

func TestNames_AreManifests(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	for _, n := range names {
		require.True(t, registry.IsManifestFile(n), n)
	}
}

func TestManifests_Parse(t *testing.T) {
	fsys := ScriptsFS()
	for _, name := range Names() {
		data, err := fs.ReadFile(fsys, name)
		require.NoError(t, err)

		m, err := registry.ParseManifest(name, data)
		require.NoError(t, err, name)
		require.NotEmpty(t, m.Description, name)
		require.True(t, strings.HasPrefix(strings.TrimSpace(m.Help), "# "+registry.ScriptName(name)),
			"%s help starts with its own heading", name)
	}
}

// The repository's scripts/ directory ships the same manifests.
func TestManifests_MatchRepositoryScripts(t *testing.T) {
	fsys := ScriptsFS()
	for _, name := range Names() {
		embedded, err := fs.ReadFile(fsys, name)
		require.NoError(t, err)

		onDisk, err := os.ReadFile(filepath.Join("..", "..", "scripts", name))
		require.NoError(t, err)
		require.Equal(t, string(embedded), string(onDisk), name)
	}
}

func TestWriteScripts_NeverOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	keep := filepath.Join(dir, "hello_world.yaml")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(keep, []byte("description: mine\n"), 0o600))

	res, err := WriteScripts(dir)
	require.NoError(t, err)
	require.Equal(t, []string{keep}, res.Skipped)
	require.Len(t, res.Written, len(Names())-1)

	data, err := os.ReadFile(keep)
	require.NoError(t, err)
	require.Equal(t, "description: mine\n", string(data))

	res, err = WriteScripts(dir)
	require.NoError(t, err)
	require.Empty(t, res.Written)
	require.Len(t, res.Skipped, len(Names()))
}
