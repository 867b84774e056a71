package components

import (
	"context"

	"github.com/a-h/templ"
	"github.com/pthm/islands"
)

// CartProps holds the cart summary known at page render time.
type CartProps struct {
	Items int     `json:"items"`
	Total float64 `json:"total"`
}

// Cart is the header cart summary. Pages usually request it client-only
// since its contents live in the browser.
var Cart = islands.New(func(_ context.Context, p CartProps) templ.Component {
	return html(`<aside class="cart"><span class="cart-count">%d</span> items <span class="cart-total">$%.2f</span></aside>`, p.Items, p.Total)
})
