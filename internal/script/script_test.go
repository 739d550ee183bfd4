package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func noop(context.Context, *Env) error { return nil }

type testModule struct{ key string }

func (m testModule) Register(b *Builtins) {
	b.Register(m.key, "from module", noop)
}

func TestBuiltins_RegisterLookup(t *testing.T) {
	b := NewBuiltins()
	hit := false
	b.Register("sample", "Sample script", func(ctx context.Context, env *Env) error {
		hit = true
		require.Equal(t, "sample", env.Name)
		return nil
	})

	got, ok := b.Lookup("sample")
	require.True(t, ok, "builtin not found")
	require.Equal(t, "Sample script", got.Description)
	require.NoError(t, got.Main(context.Background(), &Env{Name: "sample"}))
	require.True(t, hit, "entry point was not invoked")

	_, ok = b.Lookup("missing")
	require.False(t, ok)
}

func TestBuiltins_DuplicatePanics(t *testing.T) {
	b := NewBuiltins()
	b.Register("dup", "", noop)
	require.Panics(t, func() { b.Register("dup", "", noop) })
}

func TestBuiltins_InvalidRegistrationPanics(t *testing.T) {
	b := NewBuiltins()
	require.Panics(t, func() { b.Register("  ", "", noop) })
	require.Panics(t, func() { b.Register("nil_main", "", nil) })
}

func TestBuiltins_KeysInRegistrationOrder(t *testing.T) {
	b := NewBuiltinsFrom(testModule{"zeta"}, testModule{"alpha"}, testModule{"mid"})
	require.Equal(t, []string{"zeta", "alpha", "mid"}, b.Keys())
	require.Equal(t, 3, b.Len())

	var nilTable *Builtins
	require.Nil(t, nilTable.Keys())
	require.Zero(t, nilTable.Len())
	_, ok := nilTable.Lookup("zeta")
	require.False(t, ok)
}

func TestCatalog_AddLookup(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(Entry{Name: "b", Description: "second", Main: noop}))
	require.NoError(t, c.Add(Entry{Name: "a", Main: noop}))

	require.Equal(t, 2, c.Len())
	require.Equal(t, []string{"b", "a"}, c.Names(), "catalog keeps insertion order")

	e, ok := c.Lookup("a")
	require.True(t, ok)
	require.Equal(t, DefaultDescription, e.Description)

	_, ok = c.Lookup("c")
	require.False(t, ok)
}

func TestCatalog_RejectsInvalidEntries(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(Entry{Name: "a", Main: noop}))

	err := c.Add(Entry{Name: "a", Main: noop})
	require.ErrorIs(t, err, ErrDuplicateName)

	err = c.Add(Entry{Name: "broken"})
	require.ErrorIs(t, err, ErrNoEntryPoint)

	require.Equal(t, 1, c.Len())
}

func TestCatalog_EntriesIsCopy(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(Entry{Name: "a", Description: "original", Main: noop}))

	entries := c.Entries()
	entries[0].Description = "changed"

	e, _ := c.Lookup("a")
	require.Equal(t, "original", e.Description)
}

func TestCatalog_NilSafe(t *testing.T) {
	var c *Catalog
	require.Zero(t, c.Len())
	require.Nil(t, c.Names())
	require.Nil(t, c.Entries())
	_, ok := c.Lookup("x")
	require.False(t, ok)
}

func TestLoadError_Unwrap(t *testing.T) {
	err := &LoadError{Name: "x", Path: "scripts/x.yaml", Err: ErrNoEntryPoint}
	require.ErrorIs(t, err, ErrNoEntryPoint)
	require.Contains(t, err.Error(), "scripts/x.yaml")

	var le *LoadError
	require.True(t, errors.As(error(err), &le))
}

func TestEnv_Print(t *testing.T) {
	var buf bytes.Buffer
	env := &Env{Stdout: &buf, Stderr: os.Stderr}
	env.Printf("%s=%d\n", "n", 1)
	env.Println("done")
	require.Equal(t, "n=1\ndone\n", buf.String())
}
