// Package kafka publishes order status changes to a Kafka topic, keyed by order id so
// each order's changes stay in one partition and in order.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"ecolocker/internal/core/domain/model/order"

	"github.com/segmentio/kafka-go"
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type statusChangedMessage struct {
	OrderID    string    `json:"orderId"`
	ListingID  string    `json:"listingId"`
	LockerID   string    `json:"lockerId"`
	BuyerID    string    `json:"buyerId"`
	SellerID   string    `json:"sellerId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher struct {
	w writer
}

// NewPublisher writes synchronously so a failed delivery is reported to the caller.
func NewPublisher(brokers []string, topic string) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	})
}

func newPublisher(w writer) *Publisher {
	return &Publisher{w: w}
}

func (p *Publisher) Publish(ctx context.Context, events []order.StatusChanged) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(statusChangedMessage{
			OrderID:    e.OrderID.String(),
			ListingID:  e.ListingID.String(),
			LockerID:   e.LockerID.String(),
			BuyerID:    e.BuyerID.String(),
			SellerID:   e.SellerID.String(),
			From:       e.From.String(),
			To:         e.To.String(),
			Reason:     e.Reason,
			OccurredAt: e.OccurredAt,
		})
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.OrderID.String()),
			Value: value,
			Time:  e.OccurredAt,
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte("order.status_changed")},
			},
		})
	}

	return p.w.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
