package service

import (
	"context"
	"time"
)

// OrderConfirmedEvent is emitted once per order, after the payment
// provider confirms the charge. The notification pipeline turns it into
// the confirmation email.
type OrderConfirmedEvent struct {
	OrderNumber string    `json:"order_number"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	OrderTotal  string    `json:"order_total"`
	Delivery    string    `json:"delivery_cost"`
	GrandTotal  string    `json:"grand_total"`
	Currency    string    `json:"currency"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type EventBus interface {
	PublishOrderConfirmed(ctx context.Context, e OrderConfirmedEvent) error
}
