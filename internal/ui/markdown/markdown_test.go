package markdown

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New(0, "")
	require.NoError(t, err)
	require.Equal(t, DefaultWidth, r.Width())
}

func TestNew_UnknownStyle(t *testing.T) {
	_, err := New(80, "no-such-style")
	require.Error(t, err)
}

func TestRender_Help(t *testing.T) {
	for _, style := range []string{"dark", "light", "notty"} {
		r, err := New(60, style)
		require.NoError(t, err, style)

		out, err := r.Render("# CSV Viewer\n\nPress `/` to filter.\n\n- n: next page\n- p: previous page")
		require.NoError(t, err, style)

		plain := ansi.Strip(out)
		require.Contains(t, plain, "CSV Viewer", style)
		require.Contains(t, plain, "to filter", style)
		require.Contains(t, plain, "next page", style)
		require.NotEqual(t, '\n', rune(out[0]), "leading blank lines are trimmed")
	}
}

func TestRender_WrapsToWidth(t *testing.T) {
	r, err := New(20, "notty")
	require.NoError(t, err)

	out, err := r.Render("one two three four five six seven eight nine ten")
	require.NoError(t, err)
	for _, line := range strings.Split(ansi.Strip(out), "\n") {
		require.LessOrEqual(t, ansi.StringWidth(line), 20, "line %q", line)
	}
}
