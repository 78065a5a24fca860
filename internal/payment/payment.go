package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrDeclined  = errors.New("payment declined by provider")
	ErrTransport = errors.New("payment provider unreachable")
	ErrSignature = errors.New("webhook signature verification failed")
	ErrPayload   = errors.New("webhook payload malformed")
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// Handle identifies an authorized (or test-synthesized) payment intent.
type Handle struct {
	ProviderRef  string
	ClientSecret string
	TestMode     bool
}

// Event is a signature-verified provider webhook event. OrderNumber comes
// from the intent metadata and correlates the event with a local order.
// Unrecognized Type values must be acknowledged without action.
type Event struct {
	Type        string
	OrderNumber string
	ProviderRef string
}

// Provider is the payment collaborator seam. The Stripe implementation is
// the production one; tests substitute their own.
type Provider interface {
	Authorize(ctx context.Context, orderNumber string, amount decimal.Decimal, currency string) (*Handle, error)
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a monetary amount into the provider's minor
// currency unit (cents), rounded half-up.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
