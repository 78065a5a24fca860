package repository

import (
	"context"
	"errors"

	"cncraft/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItemRepo interface {
	BulkCreate(ctx context.Context, items []models.OrderLineItem) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error)
	SumByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error)
}

type orderItemRepo struct{ db *gorm.DB }

func NewOrderItemRepo(db *gorm.DB) OrderItemRepo { return &orderItemRepo{db: db} }

func (r *orderItemRepo) BulkCreate(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *orderItemRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error) {
	var rows []models.OrderLineItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at ASC").Find(&rows).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return rows, err
}

func (r *orderItemRepo) SumByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.OrderLineItem{}).
		Select("COALESCE(SUM(lineitem_total),0)").
		Where("order_id = ?", orderID).
		Scan(&total).Error
	return total, err
}

func (r *orderItemRepo) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderLineItem{})
	return tx.RowsAffected, tx.Error
}
