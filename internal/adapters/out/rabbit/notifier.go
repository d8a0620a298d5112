// Package rabbit sends notification requests to the notification service over AMQP.
package rabbit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ecolocker/internal/core/ports"
	"ecolocker/internal/observability"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const NotificationsExchange = "ecolocker.notifications"

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// message is the wire format consumed by the notification service.
type message struct {
	Kind       string    `json:"kind"`
	OrderID    string    `json:"orderId"`
	LockerID   string    `json:"lockerId,omitempty"`
	Recipients []string  `json:"recipients"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sentAt"`
}

// Notifier publishes each notification as a persistent JSON message routed by kind.
type Notifier struct {
	mu  sync.Mutex
	ch  channel
	now func() time.Time
}

// NewNotifier opens a channel and declares the topic exchange.
func NewNotifier(conn *amqp.Connection) (*Notifier, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err = ch.ExchangeDeclare(NotificationsExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}
	return newNotifier(ch), nil
}

func newNotifier(ch channel) *Notifier {
	return &Notifier{ch: ch, now: time.Now}
}

func (n *Notifier) Notify(ctx context.Context, notification ports.Notification) error {
	body, err := json.Marshal(encode(notification, n.now().UTC()))
	if err != nil {
		return err
	}

	n.mu.Lock()
	err = n.ch.PublishWithContext(ctx, NotificationsExchange, string(notification.Kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    n.now().UTC(),
		Body:         body,
	})
	n.mu.Unlock()

	result := "sent"
	if err != nil {
		result = "failed"
	}
	observability.NotificationsTotal.WithLabelValues(string(notification.Kind), result).Inc()
	return err
}

func encode(n ports.Notification, at time.Time) message {
	recipients := make([]string, 0, len(n.Recipients))
	for _, r := range n.Recipients {
		recipients = append(recipients, r.String())
	}
	m := message{
		Kind:       string(n.Kind),
		OrderID:    n.OrderID.String(),
		Recipients: recipients,
		Message:    n.Message,
		SentAt:     at,
	}
	if n.LockerID.Validate() == nil {
		m.LockerID = n.LockerID.String()
	}
	return m
}
