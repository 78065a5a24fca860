package cart

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// Price is the product view the calculator needs: an effective unit price
// and a display name. Resolution of discount vs regular price belongs to
// the resolver, not here.
type Price struct {
	Unit decimal.Decimal
	Name string
}

type PriceResolver interface {
	ResolvePrice(ctx context.Context, productID string) (Price, error)
}

// DeliveryConfig is threaded into every totals computation; the free
// delivery threshold and percentage are configuration, never package state.
type DeliveryConfig struct {
	FreeDeliveryThreshold      decimal.Decimal
	StandardDeliveryPercentage decimal.Decimal
	Currency                   string
}

type Line struct {
	ProductID string
	Name      string
	Size      string // empty for plain lines
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type Totals struct {
	Lines             []Line
	Total             decimal.Decimal
	Delivery          decimal.Decimal
	FreeDeliveryDelta decimal.Decimal
	GrandTotal        decimal.Decimal
	ProductCount      int
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals prices the cart. Lines whose product can no longer be
// resolved are skipped silently: a retired product must not wedge the cart
// page, and the stale line drops out on the next save. Any other resolver
// failure propagates. Delivery is charged only while the total is strictly
// below the free-delivery threshold; hitting the threshold exactly ships
// free.
func ComputeTotals(ctx context.Context, c Cart, resolver PriceResolver, cfg DeliveryConfig) (*Totals, error) {
	t := &Totals{
		Total:             decimal.Zero,
		Delivery:          decimal.Zero,
		FreeDeliveryDelta: decimal.Zero,
		GrandTotal:        decimal.Zero,
	}

	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		price, err := resolver.ResolvePrice(ctx, id)
		if errors.Is(err, ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		entry := c[id]
		if len(entry.BySize) > 0 {
			for _, size := range entry.Sizes() {
				qty := entry.BySize[size]
				subtotal := price.Unit.Mul(decimal.NewFromInt(int64(qty)))
				t.Lines = append(t.Lines, Line{
					ProductID: id,
					Name:      price.Name,
					Size:      size,
					Quantity:  qty,
					UnitPrice: price.Unit,
					Subtotal:  subtotal,
				})
				t.Total = t.Total.Add(subtotal)
				t.ProductCount += qty
			}
			continue
		}

		subtotal := price.Unit.Mul(decimal.NewFromInt(int64(entry.Quantity)))
		t.Lines = append(t.Lines, Line{
			ProductID: id,
			Name:      price.Name,
			Quantity:  entry.Quantity,
			UnitPrice: price.Unit,
			Subtotal:  subtotal,
		})
		t.Total = t.Total.Add(subtotal)
		t.ProductCount += entry.Quantity
	}

	if t.Total.LessThan(cfg.FreeDeliveryThreshold) {
		t.Delivery = t.Total.Mul(cfg.StandardDeliveryPercentage).Div(hundred).Round(2)
		t.FreeDeliveryDelta = cfg.FreeDeliveryThreshold.Sub(t.Total)
	}
	t.GrandTotal = t.Total.Add(t.Delivery)

	return t, nil
}
