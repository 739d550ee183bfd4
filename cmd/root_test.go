package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scli/internal/config"
	"github.com/zjrosen/scli/internal/presentation"
	"github.com/zjrosen/scli/internal/script"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command in dir with fresh global state.
func execute(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()
	t.Chdir(dir)
	t.Setenv("SCLI_DEBUG", "")
	t.Setenv("SCLI_LOG", "")
	t.Setenv("HOME", dir)

	viper.Reset()
	cfg = config.Config{}
	cfgFile, scriptName, logFile = "", "", ""
	debug, listJSON = false, false
	initSet = nil
	resetFlags(rootCmd.PersistentFlags())
	resetFlags(rootCmd.Flags())
	for _, c := range rootCmd.Commands() {
		resetFlags(c.Flags())
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

// project returns a directory initialized with `scli init`.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	res := execute(t, dir, "", "init")
	require.NoError(t, res.err, res.stderr)
	return dir
}

func TestInit_WritesConfigAndScripts(t *testing.T) {
	dir := t.TempDir()

	res := execute(t, dir, "", "init", "--set", "log.level=debug")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "Created config: "+config.DefaultConfigPath)
	require.Contains(t, res.stdout, "Set log.level = debug")
	require.FileExists(t, filepath.Join(dir, "scripts", "hello_world.yaml"))

	data, err := os.ReadFile(filepath.Join(dir, config.DefaultConfigPath))
	require.NoError(t, err)
	require.Contains(t, string(data), "level: debug")
}

func TestInit_NeverOverwrites(t *testing.T) {
	dir := project(t)
	manifest := filepath.Join(dir, "scripts", "hello_world.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("description: Mine\n"), 0o600))

	res := execute(t, dir, "", "init")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "Config exists")
	require.Contains(t, res.stdout, "Script exists: "+filepath.Join("scripts", "hello_world.yaml"))

	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	require.Equal(t, "description: Mine\n", string(data))
}

func TestInit_RejectsMalformedSet(t *testing.T) {
	res := execute(t, t.TempDir(), "", "init", "--set", "novalue")
	require.Error(t, res.err)
	require.Contains(t, res.stderr, "want key=value")
}

func TestRoot_RunsScriptByFlag(t *testing.T) {
	dir := project(t)

	res := execute(t, dir, "", "-s", "hello_world")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "Executing script: hello_world")
	require.Contains(t, res.stdout, "Hello, World!")
}

func TestRun_ByName(t *testing.T) {
	dir := project(t)

	res := execute(t, dir, "", "run", "hello_world")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "Hello, World!")
}

func TestRun_UnknownScript(t *testing.T) {
	dir := project(t)

	res := execute(t, dir, "", "-s", "nope")
	require.ErrorIs(t, res.err, errReported)
	require.Contains(t, res.stderr, "script 'nope' not found")
	require.Contains(t, res.stderr, "hello_world")
	require.NotContains(t, res.stderr, "Failed to execute script")
}

func TestRun_ScriptFailure(t *testing.T) {
	dir := project(t)
	cfgPath := filepath.Join(dir, config.DefaultConfigPath)
	require.NoError(t, config.SaveValue(cfgPath, "scripts.csv_viewer.file", "missing.csv"))

	res := execute(t, dir, "", "run", "csv_viewer")
	require.ErrorIs(t, res.err, errReported)
	require.Contains(t, res.stderr, "Failed to execute script: csv_viewer")
	require.Contains(t, res.stderr, "missing.csv")
}

func TestRun_MissingScriptsDir(t *testing.T) {
	res := execute(t, t.TempDir(), "", "-s", "hello_world")
	require.ErrorIs(t, res.err, errReported)
	require.Contains(t, res.stderr, "scripts directory not found")
}

func TestRoot_InteractiveCancel(t *testing.T) {
	dir := project(t)

	res := execute(t, dir, "q\n")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "Cancelled")
	require.NotContains(t, res.stdout, "Executing script")
}

func TestRoot_InteractiveSelect(t *testing.T) {
	dir := project(t)

	// Manifests are listed in file order: cobol_processor, csv_viewer, file_counter, hello_world, ...
	res := execute(t, dir, "4\n")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "1. cobol_processor")
	require.Contains(t, res.stdout, "Executing script: hello_world")
	require.Contains(t, res.stdout, "Hello, World!")
}

func TestRoot_ProblemsAreWarnings(t *testing.T) {
	dir := project(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "orphan.yaml"), []byte("description: x\n"), 0o600))

	res := execute(t, dir, "", "-s", "hello_world")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stderr, "warning: skipped script orphan")

	res = execute(t, dir, "", "--strict", "-s", "hello_world")
	require.ErrorIs(t, res.err, errReported)
	require.Contains(t, res.stderr, "orphan")
}

func TestListScripts_Table(t *testing.T) {
	dir := project(t)

	res := execute(t, dir, "", "ls")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "Available Scripts")
	for _, name := range []string{"hello_world", "system_info", "file_counter", "network_tools", "csv_viewer", "cobol_processor"} {
		require.Contains(t, res.stdout, name)
	}
}

func TestListScripts_JSON(t *testing.T) {
	dir := project(t)

	res := execute(t, dir, "", "list-scripts", "--json")
	require.NoError(t, res.err, res.stderr)

	var list presentation.ListDTO
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &list))
	require.Len(t, list.Scripts, 6)
	require.Empty(t, list.Problems)
}

func TestInfo_Tool(t *testing.T) {
	dir := project(t)

	res := execute(t, dir, "", "info")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "SCLI - Script CLI Tool")
	require.Contains(t, res.stdout, "list-scripts")
}

func TestInfo_Script(t *testing.T) {
	dir := project(t)

	res := execute(t, dir, "", "info", "hello_world")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "hello_world")
	require.Contains(t, res.stdout, "Entry:")
	require.Contains(t, res.stdout, "greeting")
}

func TestInfo_UnknownScript(t *testing.T) {
	dir := project(t)

	res := execute(t, dir, "", "info", "nope")
	require.True(t, errors.Is(res.err, errReported))
	require.Contains(t, res.stderr, "not found")
}

func TestConfig_EnvOverride(t *testing.T) {
	dir := project(t)
	require.NoError(t, os.Rename(filepath.Join(dir, "scripts"), filepath.Join(dir, "elsewhere")))
	t.Setenv("SCLI_SCRIPTS_DIR", "elsewhere")

	res := execute(t, dir, "", "-s", "hello_world")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "Hello, World!")
}

func TestDebug_WritesLogFile(t *testing.T) {
	dir := project(t)

	res := execute(t, dir, "", "--debug", "-s", "hello_world")
	require.NoError(t, res.err, res.stderr)

	matches, err := filepath.Glob(filepath.Join(dir, "logs", "scli_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

// askerProject has a single script that returns whatever its prompt returns.
func askerProject(t *testing.T) (dir string, ran *bool) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "scripts"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "asker.yaml"), []byte("description: Ask for a name\n"), 0o600))

	ran = new(bool)
	b := script.NewBuiltins()
	b.Register("asker", "", func(ctx context.Context, env *script.Env) error {
		*ran = true
		name, err := env.UI.Input(ctx, "Name", "")
		if err != nil {
			return err
		}
		env.Printf("Hi %s\n", name)
		return nil
	})
	builtins = b
	t.Cleanup(func() { builtins = nil })
	return dir, ran
}

func TestRun_ScriptCancelIsAFailure(t *testing.T) {
	dir, ran := askerProject(t)

	res := execute(t, dir, "", "run", "asker")
	require.True(t, *ran)
	require.ErrorIs(t, res.err, errReported)
	require.Contains(t, res.stderr, "Failed to execute script: asker")
	require.Contains(t, res.stderr, script.ErrCancelled.Error())
	require.NotContains(t, res.stdout, "Cancelled")
}

func TestRoot_ScriptCancelAfterMenuIsAFailure(t *testing.T) {
	dir, ran := askerProject(t)

	res := execute(t, dir, "1\n")
	require.True(t, *ran)
	require.ErrorIs(t, res.err, errReported)
	require.Contains(t, res.stderr, "Failed to execute script: asker")
}

func TestRoot_MenuCancelStillExitsCleanly(t *testing.T) {
	dir, ran := askerProject(t)

	res := execute(t, dir, "q\n")
	require.False(t, *ran)
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Cancelled")
}
