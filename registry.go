package islands

import (
	"context"
	"fmt"
	"slices"
)

// Entry binds a component id to the code module that implements it and a
// Loader for its server-side Definition.
//
// Module is the path the bundler uses for the island's client code, for
// example "src/islands/Counter.ts". It is the key looked up in the build
// manifest when computing preload tags.
type Entry struct {
	ID     string
	Module string
	Load   Loader
}

// Register is a convenience constructor for Entry.
func Register(id, module string, load Loader) Entry {
	return Entry{ID: id, Module: module, Load: load}
}

// Registry is the immutable catalogue of island components shared by the
// server renderer and the client hydrator. It is safe for concurrent use.
type Registry struct {
	entries map[string]Entry
	ids     []string
}

// NewRegistry builds a Registry. It panics on an empty id, a missing loader
// or a duplicate id: these are programming errors in the registry source.
func NewRegistry(entries ...Entry) *Registry {
	reg := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if e.ID == "" {
			panic("islands: registry entry with empty id")
		}
		if e.Load == nil {
			panic(fmt.Sprintf("islands: registry entry %q has no loader", e.ID))
		}
		if _, exists := reg.entries[e.ID]; exists {
			panic(fmt.Sprintf("islands: duplicate component id %q", e.ID))
		}
		reg.entries[e.ID] = e
		reg.ids = append(reg.ids, e.ID)
	}
	slices.Sort(reg.ids)
	return reg
}

// Resolve returns the entry registered under id. Lookup is exact and
// case-sensitive.
func (reg *Registry) Resolve(id string) (Entry, bool) {
	if reg == nil {
		return Entry{}, false
	}
	e, ok := reg.entries[id]
	return e, ok
}

// Has reports whether id is registered.
func (reg *Registry) Has(id string) bool {
	_, ok := reg.Resolve(id)
	return ok
}

// Load resolves id and invokes its loader.
func (reg *Registry) Load(ctx context.Context, id string) (Definition, error) {
	e, ok := reg.Resolve(id)
	if !ok {
		return nil, unknownComponent(id)
	}
	def, err := e.Load(ctx)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("islands: loader for %q returned no definition", id)
	}
	return def, nil
}

// IDs returns the registered ids in sorted order.
func (reg *Registry) IDs() []string {
	if reg == nil {
		return nil
	}
	return slices.Clone(reg.ids)
}

// Len returns the number of registered components.
func (reg *Registry) Len() int {
	if reg == nil {
		return 0
	}
	return len(reg.entries)
}
