package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"cncraft/internal/cart"
	"cncraft/internal/cartstore"
	"cncraft/internal/models"
	"cncraft/internal/payment"
	"cncraft/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

type checkoutService struct {
	repo     *repository.Repository
	store    *cartstore.Store
	catalog  cart.PriceResolver
	provider payment.Provider
	events   EventBus
	delivery cart.DeliveryConfig
	log      *zap.Logger

	now            func() time.Time
	newOrderNumber func() string
}

func NewCheckoutService(
	repo *repository.Repository,
	store *cartstore.Store,
	catalog cart.PriceResolver,
	provider payment.Provider,
	events EventBus,
	delivery cart.DeliveryConfig,
	log *zap.Logger,
) CheckoutService {
	return &checkoutService{
		repo:           repo,
		store:          store,
		catalog:        catalog,
		provider:       provider,
		events:         events,
		delivery:       delivery,
		log:            log,
		now:            time.Now,
		newOrderNumber: generateOrderNumber,
	}
}

// generateOrderNumber produces the customer-facing order reference:
// 32 uppercase hex characters.
func generateOrderNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func validateDetails(d OrderDetails) error {
	fields := map[string]string{}
	required := map[string]string{
		"full_name":       d.FullName,
		"email":           d.Email,
		"phone_number":    d.PhoneNumber,
		"country":         d.Country,
		"town_or_city":    d.TownOrCity,
		"street_address1": d.StreetAddress1,
	}
	for name, val := range required {
		if strings.TrimSpace(val) == "" {
			fields[name] = "this field is required"
		}
	}
	if d.Email != "" {
		if _, err := mail.ParseAddress(d.Email); err != nil {
			fields["email"] = "enter a valid email address"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func (s *checkoutService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlacedOrder, error) {
	workingCart, err := s.store.Load(ctx, in.SessionID, in.CookieCart)
	if err != nil {
		return nil, err
	}
	if workingCart.IsEmpty() {
		return nil, ErrCartEmpty
	}
	if err := validateDetails(in.Details); err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(workingCart)
	if err != nil {
		return nil, fmt.Errorf("serialize cart snapshot: %w", err)
	}

	var (
		order  *models.Order
		totals *cart.Totals
	)

	// Order shell, line items and totals commit atomically. A product that
	// cannot be resolved mid-loop rolls the whole thing back: one bad line
	// invalidates the order, nothing partial is persisted.
	err = s.repo.Orders.WithTx(ctx, func(txOrders repository.OrderRepo, txItems repository.OrderItemRepo) error {
		d := in.Details
		order = &models.Order{
			OrderNumber:    s.newOrderNumber(),
			FullName:       d.FullName,
			Email:          d.Email,
			PhoneNumber:    d.PhoneNumber,
			Country:        d.Country,
			Postcode:       optional(d.Postcode),
			TownOrCity:     d.TownOrCity,
			StreetAddress1: d.StreetAddress1,
			StreetAddress2: optional(d.StreetAddress2),
			County:         optional(d.County),
			Date:           s.now(),
			OriginalCart:   string(snapshot),
		}
		if err := txOrders.Create(ctx, order); err != nil {
			return err
		}

		items, err := s.materializeLines(ctx, order.ID, workingCart)
		if err != nil {
			return err
		}
		if err := txItems.BulkCreate(ctx, items); err != nil {
			return err
		}

		// Totals are recomputed server-side from the same cart that
		// produced the line items, never trusted from the client.
		totals, err = cart.ComputeTotals(ctx, workingCart, s.catalog, s.delivery)
		if err != nil {
			return err
		}
		if err := txOrders.UpdateTotals(ctx, order.ID, totals.Total, totals.Delivery, totals.GrandTotal); err != nil {
			return err
		}

		order.OrderTotal = totals.Total
		order.DeliveryCost = totals.Delivery
		order.GrandTotal = totals.GrandTotal
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	handle, err := s.provider.Authorize(ctx, order.OrderNumber, totals.GrandTotal, s.delivery.Currency)
	if err != nil {
		// The order was committed before the charge attempt; remove it so a
		// failed payment leaves no trace. Declines and timeouts take the
		// same path, and nothing retries within this request.
		if delErr := s.repo.Orders.Delete(ctx, order.ID); delErr != nil {
			s.log.Error("failed to roll back order after payment failure",
				zap.String("order_number", order.OrderNumber),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	s.log.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("grand_total", totals.GrandTotal.StringFixed(2)),
		zap.Bool("test_mode", handle.TestMode),
	)
	return &PlacedOrder{Order: order, Totals: totals, Payment: handle}, nil
}

// materializeLines expands the canonical cart into order line items: one
// item per plain line, one per size bucket for size-keyed lines. The unit
// price is resolved from the catalog here and frozen into lineitem_total.
func (s *checkoutService) materializeLines(ctx context.Context, orderID uuid.UUID, c cart.Cart) ([]models.OrderLineItem, error) {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var items []models.OrderLineItem
	for _, id := range ids {
		pid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", cart.ErrProductNotFound, id)
		}
		product, err := s.repo.Products.GetByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("failed to look up product %s: %w", id, err)
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", cart.ErrProductNotFound, id)
		}

		unit := product.DisplayPrice()
		entry := c[id]
		if len(entry.BySize) > 0 {
			for _, size := range entry.Sizes() {
				size := size
				qty := entry.BySize[size]
				items = append(items, models.OrderLineItem{
					OrderID:       orderID,
					ProductID:     product.ID,
					ProductSize:   &size,
					Quantity:      qty,
					LineitemTotal: unit.Mul(decimalFromInt(qty)),
				})
			}
			continue
		}
		items = append(items, models.OrderLineItem{
			OrderID:       orderID,
			ProductID:     product.ID,
			Quantity:      entry.Quantity,
			LineitemTotal: unit.Mul(decimalFromInt(entry.Quantity)),
		})
	}
	return items, nil
}

func (s *checkoutService) CompleteOrder(ctx context.Context, orderNumber, sessionID string) (*models.Order, error) {
	order, err := s.repo.Orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if userID, ok := UserIDFromContext(ctx); ok {
		profile, err := s.repo.Profiles.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Orders.AttachProfile(ctx, order.ID, profile.ID); err != nil {
			return nil, err
		}
		order.UserProfileID = &profile.ID
	}

	// The order is complete; both cart replicas go away.
	if err := s.store.Clear(ctx, sessionID); err != nil {
		s.log.Error("failed to clear cart after checkout",
			zap.String("order_number", orderNumber),
			zap.Error(err),
		)
	}
	return order, nil
}

func (s *checkoutService) HandleWebhookEvent(ctx context.Context, ev *payment.Event) error {
	switch ev.Type {
	case payment.EventPaymentSucceeded:
		return s.confirmPayment(ctx, ev)
	case payment.EventPaymentFailed:
		return s.rollBackUnpaid(ctx, ev)
	default:
		// Forward compatibility: acknowledge provider event types we do
		// not handle.
		s.log.Debug("ignoring webhook event", zap.String("type", ev.Type))
		return nil
	}
}

func (s *checkoutService) confirmPayment(ctx context.Context, ev *payment.Event) error {
	order, err := s.repo.Orders.GetByNumber(ctx, ev.OrderNumber)
	if err != nil {
		return err
	}
	if order == nil {
		// Provider knows an order we do not: a data-integrity mismatch
		// worth surfacing, never swallowing.
		s.log.Error("webhook references unknown order",
			zap.String("order_number", ev.OrderNumber),
			zap.String("provider_ref", ev.ProviderRef),
		)
		return ErrOrderNotFound
	}

	updated, err := s.repo.Orders.SetStripePID(ctx, ev.OrderNumber, ev.ProviderRef)
	if err != nil {
		return err
	}
	if !updated {
		// Redelivery or a concurrent success-page load already recorded
		// the pid; nothing more to do.
		return nil
	}

	if s.events != nil {
		e := OrderConfirmedEvent{
			OrderNumber: order.OrderNumber,
			Email:       order.Email,
			FullName:    order.FullName,
			OrderTotal:  order.OrderTotal.StringFixed(2),
			Delivery:    order.DeliveryCost.StringFixed(2),
			GrandTotal:  order.GrandTotal.StringFixed(2),
			Currency:    s.delivery.Currency,
			ConfirmedAt: s.now(),
		}
		if err := s.events.PublishOrderConfirmed(ctx, e); err != nil {
			s.log.Error("failed to publish order confirmation",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *checkoutService) rollBackUnpaid(ctx context.Context, ev *payment.Event) error {
	order, err := s.repo.Orders.GetByNumber(ctx, ev.OrderNumber)
	if err != nil {
		return err
	}
	if order == nil {
		s.log.Error("payment-failed webhook references unknown order",
			zap.String("order_number", ev.OrderNumber),
		)
		return ErrOrderNotFound
	}
	if order.StripePID != nil {
		// Already confirmed; a late failure event must not destroy paid
		// history.
		return nil
	}
	s.log.Info("rolling back order after provider-reported payment failure",
		zap.String("order_number", ev.OrderNumber),
	)
	return s.repo.Orders.Delete(ctx, order.ID)
}

