package islands

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry(
		Register("Counter", "src/islands/Counter.ts", Static(StaticHTML("c"))),
		Register("Cart", "src/islands/Cart.ts", Static(StaticHTML("k"))),
	)

	tests := []struct {
		id string
		ok bool
	}{
		{"Counter", true},
		{"Cart", true},
		{"counter", false},
		{"Counter ", false},
		{"", false},
	}
	for _, tt := range tests {
		e, ok := reg.Resolve(tt.id)
		if ok != tt.ok {
			t.Errorf("Resolve(%q) ok = %v, want %v", tt.id, ok, tt.ok)
		}
		if ok && e.ID != tt.id {
			t.Errorf("Resolve(%q).ID = %q", tt.id, e.ID)
		}
	}

	if got := strings.Join(reg.IDs(), ","); got != "Cart,Counter" {
		t.Errorf("IDs() = %s", got)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d", reg.Len())
	}
}

func TestRegistryLoad(t *testing.T) {
	reg := NewRegistry(
		Register("Counter", "src/islands/Counter.ts", Static(StaticHTML("c"))),
		Register("Nil", "src/islands/Nil.ts", func(context.Context) (Definition, error) { return nil, nil }),
	)
	ctx := context.Background()
	if _, err := reg.Load(ctx, "Counter"); err != nil {
		t.Errorf("Load(Counter) error = %v", err)
	}
	if _, err := reg.Load(ctx, "Missing"); !errors.Is(err, ErrUnknownComponent) {
		t.Errorf("Load(Missing) error = %v, want ErrUnknownComponent", err)
	}
	if _, err := reg.Load(ctx, "Nil"); err == nil {
		t.Errorf("Load(Nil) error = nil")
	}
}

func TestRegistryPanics(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty id", []Entry{Register("", "m.ts", Static(StaticHTML("")))}},
		{"nil loader", []Entry{Register("A", "m.ts", nil)}},
		{"duplicate", []Entry{
			Register("A", "a.ts", Static(StaticHTML(""))),
			Register("A", "b.ts", Static(StaticHTML(""))),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("NewRegistry() did not panic")
				}
			}()
			NewRegistry(tt.entries...)
		})
	}
}

func TestNilRegistry(t *testing.T) {
	var reg *Registry
	if _, ok := reg.Resolve("A"); ok {
		t.Error("nil registry resolved an id")
	}
	if reg.Len() != 0 || reg.IDs() != nil {
		t.Error("nil registry is not empty")
	}
}

func TestLazyLoader(t *testing.T) {
	var builds atomic.Int32
	load := Lazy(func() (Definition, error) {
		builds.Add(1)
		return StaticHTML("x"), nil
	})
	for range 3 {
		if _, err := load(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if builds.Load() != 1 {
		t.Errorf("Lazy built %d times, want 1", builds.Load())
	}

	failing := Lazy(func() (Definition, error) { return nil, errors.New("no chunk") })
	if _, err := failing(context.Background()); err == nil {
		t.Error("Lazy() error = nil")
	}
	if _, err := Static(nil)(context.Background()); err == nil {
		t.Error("Static(nil) error = nil")
	}
}
