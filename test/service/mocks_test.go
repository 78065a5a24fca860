package service_test

import (
	"context"

	"cncraft/internal/models"
	"cncraft/internal/payment"
	"cncraft/internal/repository"
	"cncraft/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockProductRepo
type MockProductRepo struct {
	GetByIDFunc  func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySKUFunc func(ctx context.Context, sku string) (*models.Product, error)
	ExistsFunc   func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *MockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockProductRepo) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if m.GetBySKUFunc != nil {
		return m.GetBySKUFunc(ctx, sku)
	}
	return nil, nil
}

func (m *MockProductRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	return false, nil
}

// MockOrderRepo
type MockOrderRepo struct {
	CreateFunc        func(ctx context.Context, o *models.Order) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumberFunc   func(ctx context.Context, orderNumber string) (*models.Order, error)
	ListByProfileFunc func(ctx context.Context, profileID uuid.UUID) ([]models.Order, error)
	UpdateTotalsFunc  func(ctx context.Context, id uuid.UUID, orderTotal, deliveryCost, grandTotal decimal.Decimal) error
	AttachProfileFunc func(ctx context.Context, id, profileID uuid.UUID) error
	SetStripePIDFunc  func(ctx context.Context, orderNumber, pid string) (bool, error)
	DeleteFunc        func(ctx context.Context, id uuid.UUID) error
	WithTxFunc        func(ctx context.Context, fn func(txOrders repository.OrderRepo, txItems repository.OrderItemRepo) error) error

	// Items is the item repo handed to WithTx callbacks when WithTxFunc is
	// not overridden.
	Items *MockOrderItemRepo
}

func (m *MockOrderRepo) Create(ctx context.Context, o *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	o.ID = uuid.New()
	return nil
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOrderRepo) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, orderNumber)
	}
	return nil, nil
}

func (m *MockOrderRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Order, error) {
	if m.ListByProfileFunc != nil {
		return m.ListByProfileFunc(ctx, profileID)
	}
	return nil, nil
}

func (m *MockOrderRepo) UpdateTotals(ctx context.Context, id uuid.UUID, orderTotal, deliveryCost, grandTotal decimal.Decimal) error {
	if m.UpdateTotalsFunc != nil {
		return m.UpdateTotalsFunc(ctx, id, orderTotal, deliveryCost, grandTotal)
	}
	return nil
}

func (m *MockOrderRepo) AttachProfile(ctx context.Context, id, profileID uuid.UUID) error {
	if m.AttachProfileFunc != nil {
		return m.AttachProfileFunc(ctx, id, profileID)
	}
	return nil
}

func (m *MockOrderRepo) SetStripePID(ctx context.Context, orderNumber, pid string) (bool, error) {
	if m.SetStripePIDFunc != nil {
		return m.SetStripePIDFunc(ctx, orderNumber, pid)
	}
	return true, nil
}

func (m *MockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockOrderRepo) WithTx(ctx context.Context, fn func(txOrders repository.OrderRepo, txItems repository.OrderItemRepo) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, fn)
	}
	items := m.Items
	if items == nil {
		items = &MockOrderItemRepo{}
	}
	return fn(m, items)
}

// MockOrderItemRepo
type MockOrderItemRepo struct {
	BulkCreateFunc      func(ctx context.Context, items []models.OrderLineItem) error
	GetByOrderIDFunc    func(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error)
	SumByOrderFunc      func(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
	DeleteByOrderIDFunc func(ctx context.Context, orderID uuid.UUID) (int64, error)
}

func (m *MockOrderItemRepo) BulkCreate(ctx context.Context, items []models.OrderLineItem) error {
	if m.BulkCreateFunc != nil {
		return m.BulkCreateFunc(ctx, items)
	}
	return nil
}

func (m *MockOrderItemRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error) {
	if m.GetByOrderIDFunc != nil {
		return m.GetByOrderIDFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *MockOrderItemRepo) SumByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	if m.SumByOrderFunc != nil {
		return m.SumByOrderFunc(ctx, orderID)
	}
	return decimal.Zero, nil
}

func (m *MockOrderItemRepo) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	if m.DeleteByOrderIDFunc != nil {
		return m.DeleteByOrderIDFunc(ctx, orderID)
	}
	return 0, nil
}

// MockProfileRepo
type MockProfileRepo struct {
	GetByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	GetOrCreateFunc func(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpdateFunc      func(ctx context.Context, p *models.UserProfile) error
}

func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockProfileRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, userID)
	}
	return &models.UserProfile{ID: uuid.New(), UserID: userID}, nil
}

func (m *MockProfileRepo) Update(ctx context.Context, p *models.UserProfile) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	return nil
}

// MockProvider
type MockProvider struct {
	AuthorizeFunc     func(ctx context.Context, orderNumber string, amount decimal.Decimal, currency string) (*payment.Handle, error)
	VerifyWebhookFunc func(payload []byte, signature string) (*payment.Event, error)
}

func (m *MockProvider) Authorize(ctx context.Context, orderNumber string, amount decimal.Decimal, currency string) (*payment.Handle, error) {
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, orderNumber, amount, currency)
	}
	return &payment.Handle{ProviderRef: "pi_test_" + orderNumber, ClientSecret: "test_secret", TestMode: true}, nil
}

func (m *MockProvider) VerifyWebhook(payload []byte, signature string) (*payment.Event, error) {
	if m.VerifyWebhookFunc != nil {
		return m.VerifyWebhookFunc(payload, signature)
	}
	return &payment.Event{}, nil
}

// MockEventBus
type MockEventBus struct {
	PublishOrderConfirmedFunc func(ctx context.Context, e service.OrderConfirmedEvent) error
	Published                 []service.OrderConfirmedEvent
}

func (m *MockEventBus) PublishOrderConfirmed(ctx context.Context, e service.OrderConfirmedEvent) error {
	m.Published = append(m.Published, e)
	if m.PublishOrderConfirmedFunc != nil {
		return m.PublishOrderConfirmedFunc(ctx, e)
	}
	return nil
}
