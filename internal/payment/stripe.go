package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
}

// StripeProvider creates payment intents and verifies webhook signatures.
//
// When the secret key is absent or still a placeholder, every Authorize
// call short-circuits into an immediately-successful synthetic handle.
// That is the demo/test configuration: no credentials, no network calls.
// Detection is by credential state, not a separate flag, so a deployment
// cannot accidentally run live code against placeholder keys.
type StripeProvider struct {
	cfg     StripeConfig
	intents paymentintent.Client
	log     *zap.Logger
}

func NewStripeProvider(cfg StripeConfig, log *zap.Logger) *StripeProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: timeout},
	})
	p := &StripeProvider{
		cfg:     cfg,
		intents: paymentintent.Client{B: backend, Key: cfg.SecretKey},
		log:     log,
	}
	if p.placeholderMode() {
		log.Warn("Stripe credentials absent or placeholder; payments run in test mode")
	}
	return p
}

func (p *StripeProvider) placeholderMode() bool {
	return p.cfg.SecretKey == "" || strings.Contains(p.cfg.SecretKey, "placeholder")
}

func (p *StripeProvider) Authorize(ctx context.Context, orderNumber string, amount decimal.Decimal, currency string) (*Handle, error) {
	if p.placeholderMode() {
		return &Handle{
			ProviderRef:  "pi_test_" + strings.ToLower(orderNumber),
			ClientSecret: "test_secret_placeholder",
			TestMode:     true,
		}, nil
	}

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(MinorUnits(amount)),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("order_number", orderNumber)
	// One charge attempt per checkout request; a timeout must not turn
	// into a duplicate charge on the provider side.
	params.SetIdempotencyKey("order-" + orderNumber)

	intent, err := p.intents.New(params)
	if err != nil {
		return nil, p.mapError(orderNumber, err)
	}

	return &Handle{
		ProviderRef:  intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (p *StripeProvider) mapError(orderNumber string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeCard {
			p.log.Info("payment declined",
				zap.String("order_number", orderNumber),
				zap.String("code", string(stripeErr.Code)),
			)
			return fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Code)
		}
		p.log.Error("stripe API error",
			zap.String("order_number", orderNumber),
			zap.String("type", string(stripeErr.Type)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s", ErrTransport, stripeErr.Type)
	}
	p.log.Error("stripe transport error", zap.String("order_number", orderNumber), zap.Error(err))
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// VerifyWebhook checks the signature and extracts the correlation fields.
// Only events that pass verification are ever acted upon.
func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	out := &Event{Type: string(event.Type)}
	switch out.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayload, err)
		}
		out.ProviderRef = intent.ID
		out.OrderNumber = intent.Metadata["order_number"]
		if out.OrderNumber == "" {
			return nil, fmt.Errorf("%w: missing order_number metadata", ErrPayload)
		}
	}
	return out, nil
}
