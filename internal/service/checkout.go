package service

import (
	"context"

	"cncraft/internal/cart"
	"cncraft/internal/models"
	"cncraft/internal/payment"
)

// OrderDetails is the checkout form payload. Optional fields stay empty
// strings and are stored as NULL.
type OrderDetails struct {
	FullName       string
	Email          string
	PhoneNumber    string
	Country        string
	Postcode       string
	TownOrCity     string
	StreetAddress1 string
	StreetAddress2 string
	County         string
}

type PlaceOrderInput struct {
	SessionID  string
	CookieCart string
	Details    OrderDetails
}

// PlacedOrder is the result of a successful checkout submission: the
// persisted order, the totals it was priced with, and the payment handle
// the frontend needs to finish the charge.
type PlacedOrder struct {
	Order   *models.Order
	Totals  *cart.Totals
	Payment *payment.Handle
}

type CheckoutService interface {
	// PlaceOrder materializes the cart into a persisted order and
	// authorizes payment. Any unresolvable product aborts the whole
	// checkout; a payment failure rolls the order back. No partial orders
	// survive either path.
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlacedOrder, error)

	// CompleteOrder is the success-page path: attaches the authenticated
	// shopper's profile to the order and clears both cart replicas.
	CompleteOrder(ctx context.Context, orderNumber, sessionID string) (*models.Order, error)

	// HandleWebhookEvent processes a signature-verified provider event.
	// Unrecognized event types are acknowledged without action.
	HandleWebhookEvent(ctx context.Context, ev *payment.Event) error
}
