// Package components holds the storefront's islands.
//
// Each island is declared with an //islands:component directive naming its
// id and client module; `islands generate` turns the directives into
// islands_registry_gen.go.
package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/pthm/islands"
)

// Registry returns a registry holding every island in this package.
func Registry() *islands.Registry {
	return islands.NewRegistry(Entries()...)
}

//islands:component TestIsland src/islands/TestIsland.ts
func loadTestIsland(context.Context) (islands.Definition, error) {
	return TestIsland, nil
}

//islands:component Counter src/islands/Counter.ts
func loadCounter(context.Context) (islands.Definition, error) {
	return Counter, nil
}

//islands:component ProductCard src/islands/ProductCard.ts
func loadProductCard(context.Context) (islands.Definition, error) {
	return ProductCard, nil
}

//islands:component Cart src/islands/Cart.ts
func loadCart(context.Context) (islands.Definition, error) {
	return Cart, nil
}

// html writes formatted markup. Callers escape text with templ.EscapeString.
func html(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}
