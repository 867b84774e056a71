package components

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/a-h/templ"
	"github.com/pthm/islands"
	"github.com/pthm/islands/internal/catalog"
)

// AddToCartModule is the client module for the add-to-cart button nested in
// every product card.
const AddToCartModule = "src/islands/AddToCart.ts"

// ErrProductNotFound is returned when a card names a product the catalog
// does not hold.
var ErrProductNotFound = errors.New("product not found")

// ProductCardProps names the product to show. Only the id travels in the
// marker; the rest is looked up on the server.
type ProductCardProps struct {
	ProductID int `json:"productId"`

	product     catalog.Product
	description template.HTML
}

// ProductCard renders one catalog product with an add-to-cart button.
var ProductCard = islands.New(renderProductCard).WithPrepare(prepareProductCard)

func prepareProductCard(ctx context.Context, p *ProductCardProps) error {
	prod, ok := catalog.FromContext(ctx).Get(p.ProductID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrProductNotFound, p.ProductID)
	}
	desc, err := catalog.DescriptionHTML(prod)
	if err != nil {
		return fmt.Errorf("product %d description: %w", p.ProductID, err)
	}
	p.product = prod
	p.description = desc
	return nil
}

func renderProductCard(ctx context.Context, p ProductCardProps) templ.Component {
	islands.UseModule(ctx, AddToCartModule)
	prod := p.product
	return html(`<article class="product-card"><img src="%s" alt="%s"><h3>%s</h3><p class="price">$%.2f</p><div class="description">%s</div><button type="button" class="add-to-cart" data-product-id="%d">Add to cart</button></article>`,
		templ.EscapeString(prod.Image), templ.EscapeString(prod.Name), templ.EscapeString(prod.Name),
		prod.Price, p.description, prod.ID)
}
