package service

import (
	"context"
	"fmt"

	"cncraft/internal/cart"
	"cncraft/internal/repository"

	"github.com/google/uuid"
)

// catalogResolver adapts the product repository to the calculator's
// resolver port. Cart keys that are not valid product ids count as
// not-found: stale keys from old cookies price as missing products, not
// as errors.
type catalogResolver struct {
	products repository.ProductRepo
}

func NewCatalogResolver(products repository.ProductRepo) cart.PriceResolver {
	return &catalogResolver{products: products}
}

func (r *catalogResolver) ResolvePrice(ctx context.Context, productID string) (cart.Price, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return cart.Price{}, fmt.Errorf("%w: %s", cart.ErrProductNotFound, productID)
	}
	product, err := r.products.GetByID(ctx, id)
	if err != nil {
		return cart.Price{}, fmt.Errorf("failed to look up product %s: %w", productID, err)
	}
	if product == nil {
		return cart.Price{}, fmt.Errorf("%w: %s", cart.ErrProductNotFound, productID)
	}
	return cart.Price{Unit: product.DisplayPrice(), Name: product.Name}, nil
}
