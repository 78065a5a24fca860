package producer

import (
	"context"
	"encoding/json"
	"time"

	"cncraft/internal/service"

	"github.com/segmentio/kafka-go"
)

// EmailProducer publishes order-confirmation email messages for the
// notification pipeline. It implements service.EventBus.
type EmailProducer struct {
	writer *kafka.Writer
}

func NewEmailProducer(brokers []string, topic string) *EmailProducer {
	return &EmailProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

type EmailMessage struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

func (p *EmailProducer) PublishOrderConfirmed(ctx context.Context, e service.OrderConfirmedEvent) error {
	msg := EmailMessage{
		To:       e.Email,
		Subject:  "Your CNCraft order " + e.OrderNumber,
		Template: "order_confirmation",
		Data: map[string]any{
			"order_number": e.OrderNumber,
			"full_name":    e.FullName,
			"order_total":  e.OrderTotal,
			"delivery":     e.Delivery,
			"grand_total":  e.GrandTotal,
			"currency":     e.Currency,
			"confirmed_at": e.ConfirmedAt,
		},
	}
	return p.send(ctx, e.OrderNumber, msg)
}

func (p *EmailProducer) send(ctx context.Context, key string, msg EmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *EmailProducer) Close() error {
	return p.writer.Close()
}
