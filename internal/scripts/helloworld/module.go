// Package helloworld is the smallest script: it prints a configurable greeting.
package helloworld

import (
	"context"

	"github.com/zjrosen/scli/internal/script"
)

// Key is the builtin key and default script name.
const Key = "hello_world"

// Module implements the script.Module interface for this package.
type Module struct{}

// Register registers the entry point.
func (m *Module) Register(b *script.Builtins) {
	b.Register(Key, "Print a configurable greeting", Run)
}

// Run prints "<greeting>, <name>!".
func Run(_ context.Context, env *script.Env) error {
	greeting := env.Config.String("greeting", "Hello")
	name := env.Config.String("name", "World")
	env.Printf("%s, %s!\n", greeting, name)
	return nil
}
