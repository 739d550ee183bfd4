package script

import (
	"fmt"
	"strings"
)

// Builtin is a compiled-in entry point.
type Builtin struct {
	Key         string
	Description string
	Main        Main
}

// Module is implemented by every script package so it can add its entry
// points to a Builtins table.
type Module interface {
	Register(b *Builtins)
}

// Builtins maps entry keys to compiled entry points.
type Builtins struct {
	entries map[string]Builtin
	order   []string
}

// NewBuiltins creates an empty table.
func NewBuiltins() *Builtins {
	return &Builtins{entries: make(map[string]Builtin)}
}

// NewBuiltinsFrom creates a table populated by the given modules.
func NewBuiltinsFrom(modules ...Module) *Builtins {
	b := NewBuiltins()
	for _, m := range modules {
		m.Register(b)
	}
	return b
}

// Register adds an entry point under key. It panics if key is empty, main is
// nil or key already exists: all three are programming errors caught at startup.
func (b *Builtins) Register(key, description string, main Main) {
	key = strings.TrimSpace(key)
	if key == "" {
		panic("script: empty builtin key")
	}
	if main == nil {
		panic(fmt.Sprintf("script: builtin %s has nil entry point", key))
	}
	if _, exists := b.entries[key]; exists {
		panic(fmt.Sprintf("script: builtin %s already registered", key))
	}
	b.entries[key] = Builtin{Key: key, Description: description, Main: main}
	b.order = append(b.order, key)
}

// Lookup returns the builtin registered under key.
func (b *Builtins) Lookup(key string) (Builtin, bool) {
	if b == nil {
		return Builtin{}, false
	}
	e, ok := b.entries[key]
	return e, ok
}

// Keys returns the registered keys in registration order.
func (b *Builtins) Keys() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Len returns the number of registered builtins.
func (b *Builtins) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}
