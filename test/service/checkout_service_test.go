package service_test

import (
	"context"
	"errors"
	"testing"

	"cncraft/internal/cart"
	"cncraft/internal/cartstore"
	"cncraft/internal/models"
	"cncraft/internal/payment"
	"cncraft/internal/repository"
	"cncraft/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func testDelivery() cart.DeliveryConfig {
	return cart.DeliveryConfig{
		FreeDeliveryThreshold:      decimal.NewFromInt(100),
		StandardDeliveryPercentage: decimal.NewFromInt(10),
		Currency:                   "usd",
	}
}

func validDetails() service.OrderDetails {
	return service.OrderDetails{
		FullName:       "Jo Machinist",
		Email:          "jo@example.com",
		PhoneNumber:    "+1234567890",
		Country:        "US",
		TownOrCity:     "Springfield",
		StreetAddress1: "12 Mill Lane",
	}
}

type checkoutFixture struct {
	products *MockProductRepo
	orders   *MockOrderRepo
	items    *MockOrderItemRepo
	profiles *MockProfileRepo
	provider *MockProvider
	events   *MockEventBus
	store    *cartstore.Store
	svc      service.CheckoutService
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		products: &MockProductRepo{},
		orders:   &MockOrderRepo{},
		items:    &MockOrderItemRepo{},
		profiles: &MockProfileRepo{},
		provider: &MockProvider{},
		events:   &MockEventBus{},
		store:    cartstore.New(cartstore.NewMemorySessions(), zap.NewNop()),
	}
	f.orders.Items = f.items
	repo := &repository.Repository{
		Products:   f.products,
		Orders:     f.orders,
		OrderItems: f.items,
		Profiles:   f.profiles,
	}
	f.svc = service.NewCheckoutService(
		repo,
		f.store,
		service.NewCatalogResolver(f.products),
		f.provider,
		f.events,
		testDelivery(),
		zap.NewNop(),
	)
	return f
}

func (f *checkoutFixture) seedCart(t *testing.T, sessionID string, c cart.Cart) {
	t.Helper()
	if _, err := f.store.Save(context.Background(), sessionID, c); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

func catalogProduct(id uuid.UUID, name, price string) *models.Product {
	p := decimal.RequireFromString(price)
	return &models.Product{ID: id, Name: name, Description: "d", Price: p}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	productID := uuid.New()
	f.products.GetByIDFunc = func(_ context.Context, id uuid.UUID) (*models.Product, error) {
		if id == productID {
			return catalogProduct(productID, "Desktop CNC Router", "45.00"), nil
		}
		return nil, nil
	}

	var createdItems []models.OrderLineItem
	f.items.BulkCreateFunc = func(_ context.Context, items []models.OrderLineItem) error {
		createdItems = items
		return nil
	}

	f.seedCart(t, "sess-1", cart.Cart{productID.String(): {Quantity: 2}})

	placed, err := f.svc.PlaceOrder(ctx, service.PlaceOrderInput{
		SessionID: "sess-1",
		Details:   validDetails(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if len(placed.Order.OrderNumber) != 32 {
		t.Fatalf("order number length: %q", placed.Order.OrderNumber)
	}
	if len(createdItems) != 1 || createdItems[0].Quantity != 2 {
		t.Fatalf("line items: %+v", createdItems)
	}
	if !createdItems[0].LineitemTotal.Equal(decimal.RequireFromString("90.00")) {
		t.Fatalf("lineitem total: %s", createdItems[0].LineitemTotal)
	}
	// 90 is below the threshold so delivery applies
	if !placed.Totals.Delivery.Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("delivery: %s", placed.Totals.Delivery)
	}
	if !placed.Totals.GrandTotal.Equal(decimal.RequireFromString("99.00")) {
		t.Fatalf("grand total: %s", placed.Totals.GrandTotal)
	}
	if placed.Payment == nil || placed.Payment.ClientSecret == "" {
		t.Fatalf("payment handle: %+v", placed.Payment)
	}
	if placed.Order.OriginalCart == "" {
		t.Fatal("cart snapshot missing")
	}
}

func TestPlaceOrder_FreeDeliveryAtThreshold(t *testing.T) {
	f := newCheckoutFixture()

	productID := uuid.New()
	f.products.GetByIDFunc = func(_ context.Context, id uuid.UUID) (*models.Product, error) {
		return catalogProduct(productID, "Rotary Table", "50.00"), nil
	}

	f.seedCart(t, "sess-1", cart.Cart{productID.String(): {Quantity: 2}})

	placed, err := f.svc.PlaceOrder(context.Background(), service.PlaceOrderInput{
		SessionID: "sess-1",
		Details:   validDetails(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if !placed.Totals.Delivery.IsZero() {
		t.Fatalf("delivery at threshold should be free, got %s", placed.Totals.Delivery)
	}
	if !placed.Totals.GrandTotal.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("grand total: %s", placed.Totals.GrandTotal)
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.PlaceOrder(context.Background(), service.PlaceOrderInput{
		SessionID: "sess-empty",
		Details:   validDetails(),
	})
	if !errors.Is(err, service.ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty got %v", err)
	}
}

func TestPlaceOrder_ValidationFailure(t *testing.T) {
	f := newCheckoutFixture()

	productID := uuid.New()
	f.products.GetByIDFunc = func(_ context.Context, id uuid.UUID) (*models.Product, error) {
		return catalogProduct(productID, "Probe", "20.00"), nil
	}
	f.seedCart(t, "sess-1", cart.Cart{productID.String(): {Quantity: 1}})

	details := validDetails()
	details.Email = "not-an-email"
	details.FullName = "  "

	_, err := f.svc.PlaceOrder(context.Background(), service.PlaceOrderInput{
		SessionID: "sess-1",
		Details:   details,
	})
	var vErr *service.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError got %v", err)
	}
	if _, ok := vErr.Fields["email"]; !ok {
		t.Fatalf("email should be flagged: %v", vErr.Fields)
	}
	if _, ok := vErr.Fields["full_name"]; !ok {
		t.Fatalf("full_name should be flagged: %v", vErr.Fields)
	}
}

func TestPlaceOrder_MissingProductAbortsOrder(t *testing.T) {
	f := newCheckoutFixture()

	knownID := uuid.New()
	missingID := uuid.New()
	f.products.GetByIDFunc = func(_ context.Context, id uuid.UUID) (*models.Product, error) {
		if id == knownID {
			return catalogProduct(knownID, "Chuck", "60.00"), nil
		}
		return nil, nil
	}

	deleted := false
	f.orders.DeleteFunc = func(_ context.Context, id uuid.UUID) error {
		deleted = true
		return nil
	}
	authorized := false
	f.provider.AuthorizeFunc = func(_ context.Context, orderNumber string, amount decimal.Decimal, currency string) (*payment.Handle, error) {
		authorized = true
		return nil, nil
	}

	f.seedCart(t, "sess-1", cart.Cart{
		knownID.String():   {Quantity: 1},
		missingID.String(): {Quantity: 2},
	})

	_, err := f.svc.PlaceOrder(context.Background(), service.PlaceOrderInput{
		SessionID: "sess-1",
		Details:   validDetails(),
	})
	if !errors.Is(err, cart.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound got %v", err)
	}
	// the transaction rolled back; no post-commit cleanup or charge ran
	if deleted {
		t.Fatal("delete must not run for an aborted transaction")
	}
	if authorized {
		t.Fatal("payment must not be attempted for an aborted order")
	}
}

func TestPlaceOrder_PaymentFailureRollsBackOrder(t *testing.T) {
	f := newCheckoutFixture()

	productID := uuid.New()
	f.products.GetByIDFunc = func(_ context.Context, id uuid.UUID) (*models.Product, error) {
		return catalogProduct(productID, "Tachometer", "30.00"), nil
	}
	f.provider.AuthorizeFunc = func(_ context.Context, orderNumber string, amount decimal.Decimal, currency string) (*payment.Handle, error) {
		return nil, payment.ErrDeclined
	}

	var deletedID uuid.UUID
	f.orders.DeleteFunc = func(_ context.Context, id uuid.UUID) error {
		deletedID = id
		return nil
	}

	f.seedCart(t, "sess-1", cart.Cart{productID.String(): {Quantity: 1}})

	_, err := f.svc.PlaceOrder(context.Background(), service.PlaceOrderInput{
		SessionID: "sess-1",
		Details:   validDetails(),
	})
	if !errors.Is(err, payment.ErrDeclined) {
		t.Fatalf("expected ErrDeclined got %v", err)
	}
	if deletedID == uuid.Nil {
		t.Fatal("order should be deleted after a failed charge")
	}
}

func TestCompleteOrder_AttachesProfileAndClearsCart(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	orderID := uuid.New()
	f.orders.GetByNumberFunc = func(_ context.Context, orderNumber string) (*models.Order, error) {
		return &models.Order{ID: orderID, OrderNumber: orderNumber}, nil
	}
	var attachedProfile uuid.UUID
	f.orders.AttachProfileFunc = func(_ context.Context, id, profileID uuid.UUID) error {
		attachedProfile = profileID
		return nil
	}

	f.seedCart(t, "sess-1", cart.Cart{"p1": {Quantity: 3}})

	userID := uuid.New()
	authedCtx := service.WithUserID(ctx, userID)

	order, err := f.svc.CompleteOrder(authedCtx, "ORDER123", "sess-1")
	if err != nil {
		t.Fatalf("CompleteOrder: %v", err)
	}
	if order.UserProfileID == nil || attachedProfile == uuid.Nil {
		t.Fatal("profile should be attached for an authenticated shopper")
	}

	got, err := f.store.Load(ctx, "sess-1", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.IsEmpty() {
		t.Fatal("cart should be cleared after completion")
	}
}

func TestCompleteOrder_UnknownOrder(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.CompleteOrder(context.Background(), "MISSING", "sess-1")
	if !errors.Is(err, service.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound got %v", err)
	}
}

func TestHandleWebhook_SucceededConfirmsAndPublishes(t *testing.T) {
	f := newCheckoutFixture()

	f.orders.GetByNumberFunc = func(_ context.Context, orderNumber string) (*models.Order, error) {
		return &models.Order{
			ID:          uuid.New(),
			OrderNumber: orderNumber,
			Email:       "jo@example.com",
			GrandTotal:  decimal.RequireFromString("55.00"),
		}, nil
	}
	var gotPID string
	f.orders.SetStripePIDFunc = func(_ context.Context, orderNumber, pid string) (bool, error) {
		gotPID = pid
		return true, nil
	}

	err := f.svc.HandleWebhookEvent(context.Background(), &payment.Event{
		Type:        payment.EventPaymentSucceeded,
		OrderNumber: "ORDER123",
		ProviderRef: "pi_abc",
	})
	if err != nil {
		t.Fatalf("HandleWebhookEvent: %v", err)
	}
	if gotPID != "pi_abc" {
		t.Fatalf("pid not recorded: %q", gotPID)
	}
	if len(f.events.Published) != 1 {
		t.Fatalf("expected 1 confirmation event got %d", len(f.events.Published))
	}
	if f.events.Published[0].Email != "jo@example.com" {
		t.Fatalf("event email: %q", f.events.Published[0].Email)
	}
}

func TestHandleWebhook_RedeliveryDoesNotRepublish(t *testing.T) {
	f := newCheckoutFixture()

	f.orders.GetByNumberFunc = func(_ context.Context, orderNumber string) (*models.Order, error) {
		return &models.Order{ID: uuid.New(), OrderNumber: orderNumber}, nil
	}
	f.orders.SetStripePIDFunc = func(_ context.Context, orderNumber, pid string) (bool, error) {
		return false, nil // pid already recorded
	}

	err := f.svc.HandleWebhookEvent(context.Background(), &payment.Event{
		Type:        payment.EventPaymentSucceeded,
		OrderNumber: "ORDER123",
		ProviderRef: "pi_abc",
	})
	if err != nil {
		t.Fatalf("HandleWebhookEvent: %v", err)
	}
	if len(f.events.Published) != 0 {
		t.Fatal("redelivered webhook must not publish again")
	}
}

func TestHandleWebhook_UnknownOrder(t *testing.T) {
	f := newCheckoutFixture()

	err := f.svc.HandleWebhookEvent(context.Background(), &payment.Event{
		Type:        payment.EventPaymentSucceeded,
		OrderNumber: "GHOST",
		ProviderRef: "pi_abc",
	})
	if !errors.Is(err, service.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound got %v", err)
	}
}

func TestHandleWebhook_FailedDeletesOnlyUnpaidOrders(t *testing.T) {
	f := newCheckoutFixture()

	pid := "pi_paid"
	paidOrder := &models.Order{ID: uuid.New(), OrderNumber: "PAID", StripePID: &pid}
	unpaidOrder := &models.Order{ID: uuid.New(), OrderNumber: "UNPAID"}

	f.orders.GetByNumberFunc = func(_ context.Context, orderNumber string) (*models.Order, error) {
		if orderNumber == "PAID" {
			return paidOrder, nil
		}
		return unpaidOrder, nil
	}
	var deleted []uuid.UUID
	f.orders.DeleteFunc = func(_ context.Context, id uuid.UUID) error {
		deleted = append(deleted, id)
		return nil
	}

	if err := f.svc.HandleWebhookEvent(context.Background(), &payment.Event{
		Type:        payment.EventPaymentFailed,
		OrderNumber: "UNPAID",
	}); err != nil {
		t.Fatalf("failed webhook (unpaid): %v", err)
	}
	if err := f.svc.HandleWebhookEvent(context.Background(), &payment.Event{
		Type:        payment.EventPaymentFailed,
		OrderNumber: "PAID",
	}); err != nil {
		t.Fatalf("failed webhook (paid): %v", err)
	}

	if len(deleted) != 1 || deleted[0] != unpaidOrder.ID {
		t.Fatalf("only the unpaid order should be removed, got %v", deleted)
	}
}

func TestHandleWebhook_UnrecognizedTypeIsAcknowledged(t *testing.T) {
	f := newCheckoutFixture()

	if err := f.svc.HandleWebhookEvent(context.Background(), &payment.Event{
		Type: "charge.refunded",
	}); err != nil {
		t.Fatalf("unrecognized event should be acknowledged, got %v", err)
	}
}
