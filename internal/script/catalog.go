package script

import "fmt"

// Entry is one runnable script in a Catalog.
type Entry struct {
	Name        string         // Derived from the manifest file name
	Description string         // Resolved description, never empty
	EntryKey    string         // Builtin key the manifest points at
	Help        string         // Optional markdown shown by `info <script>`
	Source      string         // Manifest path
	Defaults    map[string]any // Manifest config section
	Main        Main
}

// Catalog is the ordered set of scripts discovered for one process run.
// It is read-only once discovery returns.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Add appends e. Entries without an entry point or with a name already in the
// catalog are rejected.
func (c *Catalog) Add(e Entry) error {
	if e.Main == nil {
		return fmt.Errorf("%s: %w", e.Name, ErrNoEntryPoint)
	}
	if _, exists := c.index[e.Name]; exists {
		return fmt.Errorf("%s: %w", e.Name, ErrDuplicateName)
	}
	if e.Description == "" {
		e.Description = DefaultDescription
	}
	c.index[e.Name] = len(c.entries)
	c.entries = append(c.entries, e)
	return nil
}

// Lookup returns the entry registered under name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns a copy of the entries in discovery order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Names returns the entry names in discovery order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Name
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
