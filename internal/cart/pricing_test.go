package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]Price

func (m mapResolver) ResolvePrice(_ context.Context, productID string) (Price, error) {
	p, ok := m[productID]
	if !ok {
		return Price{}, ErrProductNotFound
	}
	return p, nil
}

type failingResolver struct{ err error }

func (f failingResolver) ResolvePrice(context.Context, string) (Price, error) {
	return Price{}, f.err
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func testDeliveryConfig(t *testing.T) DeliveryConfig {
	return DeliveryConfig{
		FreeDeliveryThreshold:      dec(t, "100"),
		StandardDeliveryPercentage: dec(t, "10"),
		Currency:                   "usd",
	}
}

func TestComputeTotals_DeliveryBelowThreshold(t *testing.T) {
	resolver := mapResolver{"p1": {Unit: dec(t, "25.00"), Name: "End Mill"}}
	c := Cart{"p1": {Quantity: 2}}

	totals, err := ComputeTotals(context.Background(), c, resolver, testDeliveryConfig(t))
	require.NoError(t, err)

	assert.True(t, totals.Total.Equal(dec(t, "50.00")), "total %s", totals.Total)
	assert.True(t, totals.Delivery.Equal(dec(t, "5.00")), "delivery %s", totals.Delivery)
	assert.True(t, totals.FreeDeliveryDelta.Equal(dec(t, "50.00")), "delta %s", totals.FreeDeliveryDelta)
	assert.True(t, totals.GrandTotal.Equal(dec(t, "55.00")), "grand %s", totals.GrandTotal)
	assert.Equal(t, 2, totals.ProductCount)
}

func TestComputeTotals_ThresholdExactlyShipsFree(t *testing.T) {
	resolver := mapResolver{"p1": {Unit: dec(t, "100.00"), Name: "Vise"}}
	c := Cart{"p1": {Quantity: 1}}

	totals, err := ComputeTotals(context.Background(), c, resolver, testDeliveryConfig(t))
	require.NoError(t, err)

	assert.True(t, totals.Delivery.IsZero(), "delivery %s", totals.Delivery)
	assert.True(t, totals.FreeDeliveryDelta.IsZero())
	assert.True(t, totals.GrandTotal.Equal(dec(t, "100.00")))
}

func TestComputeTotals_JustBelowThreshold(t *testing.T) {
	resolver := mapResolver{"p1": {Unit: dec(t, "99.99"), Name: "Vise"}}
	c := Cart{"p1": {Quantity: 1}}

	totals, err := ComputeTotals(context.Background(), c, resolver, testDeliveryConfig(t))
	require.NoError(t, err)

	assert.True(t, totals.Delivery.Equal(dec(t, "10.00")), "delivery %s", totals.Delivery)
	assert.True(t, totals.FreeDeliveryDelta.Equal(dec(t, "0.01")), "delta %s", totals.FreeDeliveryDelta)
}

func TestComputeTotals_SizeBucketsBecomeSeparateLines(t *testing.T) {
	resolver := mapResolver{"p1": {Unit: dec(t, "10.00"), Name: "Clamp Set"}}
	c := Cart{"p1": Normalize(map[string]any{
		"items_by_size": map[string]any{"S": float64(1), "M": float64(2)},
	})}

	totals, err := ComputeTotals(context.Background(), c, resolver, testDeliveryConfig(t))
	require.NoError(t, err)

	require.Len(t, totals.Lines, 2)
	assert.Equal(t, "M", totals.Lines[0].Size)
	assert.Equal(t, "S", totals.Lines[1].Size)
	assert.True(t, totals.Total.Equal(dec(t, "30.00")))
	assert.Equal(t, 3, totals.ProductCount)
}

func TestComputeTotals_SkipsRetiredProducts(t *testing.T) {
	resolver := mapResolver{"p1": {Unit: dec(t, "40.00"), Name: "Collet"}}
	c := Cart{"p1": {Quantity: 1}, "gone": {Quantity: 5}}

	totals, err := ComputeTotals(context.Background(), c, resolver, testDeliveryConfig(t))
	require.NoError(t, err)

	require.Len(t, totals.Lines, 1)
	assert.Equal(t, "p1", totals.Lines[0].ProductID)
	assert.True(t, totals.Total.Equal(dec(t, "40.00")))
}

func TestComputeTotals_PropagatesResolverFailures(t *testing.T) {
	boom := errors.New("catalog down")
	c := Cart{"p1": {Quantity: 1}}

	_, err := ComputeTotals(context.Background(), c, failingResolver{err: boom}, testDeliveryConfig(t))
	assert.ErrorIs(t, err, boom)
}

func TestComputeTotals_OverflowingCookieQuantityPricesAsOne(t *testing.T) {
	resolver := mapResolver{"p1": {Unit: dec(t, "50.00"), Name: "Router"}}
	c := Parse([]byte(`{"p1": 1e20}`))

	totals, err := ComputeTotals(context.Background(), c, resolver, testDeliveryConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 1, totals.ProductCount)
	assert.True(t, totals.Total.Equal(dec(t, "50.00")), "total %s", totals.Total)
	assert.True(t, totals.GrandTotal.IsPositive())
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals, err := ComputeTotals(context.Background(), Cart{}, mapResolver{}, testDeliveryConfig(t))
	require.NoError(t, err)

	assert.Empty(t, totals.Lines)
	assert.True(t, totals.Total.IsZero())
	assert.True(t, totals.Delivery.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
}
