package helloworld

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scli/internal/config"
	"github.com/zjrosen/scli/internal/script"
)

func TestRun(t *testing.T) {
	tests := map[string]struct {
		config config.Values
		want   string
	}{
		"defaults":   {config: nil, want: "Hello, World!\n"},
		"configured": {config: config.Values{"greeting": "Howdy", "name": "Gopher"}, want: "Howdy, Gopher!\n"},
		"non-string": {config: config.Values{"name": 42}, want: "Hello, 42!\n"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			env := &script.Env{Name: Key, Stdout: &out, Config: tt.config}
			require.NoError(t, Run(context.Background(), env))
			require.Equal(t, tt.want, out.String())
		})
	}
}

func TestRegister(t *testing.T) {
	b := script.NewBuiltinsFrom(&Module{})
	got, ok := b.Lookup(Key)
	require.True(t, ok)
	require.NotEmpty(t, got.Description)
}
