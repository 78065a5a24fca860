package repository

import (
	"context"
	"errors"

	"cncraft/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Order, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, orderTotal, deliveryCost, grandTotal decimal.Decimal) error
	AttachProfile(ctx context.Context, id, profileID uuid.UUID) error
	SetStripePID(ctx context.Context, orderNumber, pid string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(ctx context.Context, fn func(txOrders OrderRepo, txItems OrderItemRepo) error) error
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items.Product").Preload("Items").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items.Product").Preload("Items").First(&ord, "order_number = ?", orderNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).
		Where("user_profile_id = ?", profileID).
		Order("date DESC").
		Preload("Items.Product").Preload("Items").
		Find(&list).Error
	return list, err
}

func (r *orderRepo) UpdateTotals(ctx context.Context, id uuid.UUID, orderTotal, deliveryCost, grandTotal decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
		"order_total":   orderTotal,
		"delivery_cost": deliveryCost,
		"grand_total":   grandTotal,
	}).Error
}

func (r *orderRepo) AttachProfile(ctx context.Context, id, profileID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Update("user_profile_id", profileID).Error
}

// SetStripePID attaches the provider's transaction reference. Idempotent:
// re-delivered webhooks setting the same pid are harmless no-ops, and an
// already-set different pid is never overwritten.
func (r *orderRepo) SetStripePID(ctx context.Context, orderNumber, pid string) (bool, error) {
	// Postgres counts a matched row as affected even when the new value
	// equals the old one, so the guard must exclude already-set rows
	// entirely: a redelivered same-pid webhook has to report no update.
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_number = ? AND stripe_pid IS NULL", orderNumber).
		Update("stripe_pid", pid)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error
}

func (r *orderRepo) WithTx(ctx context.Context, fn func(txOrders OrderRepo, txItems OrderItemRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepo{db: tx}, &orderItemRepo{db: tx})
	})
}
