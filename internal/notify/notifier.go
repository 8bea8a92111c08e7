package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Notification kinds, used as routing-key suffixes
const (
	KindBookingCreated     = "booking_created"
	KindBookingAccepted    = "booking_accepted"
	KindBookingDeclined    = "booking_declined"
	KindBookingCanceled    = "booking_canceled"
	KindBookingPaid        = "booking_paid"
	KindBookingCompleted   = "booking_completed"
	KindBookingDisputed    = "booking_disputed"
	KindBookingRefunded    = "booking_refunded"
	KindBookingRescheduled = "booking_rescheduled"
	KindQuoteSet           = "quote_set"
	KindPayoutRequested    = "payout_requested"
)

// Notification is one message for a booking counterparty or provider
type Notification struct {
	RecipientID string    `json:"recipient_id"`
	Kind        string    `json:"kind"`
	BookingID   string    `json:"booking_id,omitempty"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier hands notifications to an outbound transport. Delivery is
// at-least-once and fully decoupled from the status transition that produced
// the message: a failed publish is logged by the caller, never rolled back
// into the transition.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	Close() error
}

// AMQPNotifier publishes notifications to a durable topic exchange. The
// notification workers downstream own templating and channel choice.
type AMQPNotifier struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange}, nil
}

// Notify publishes with a short internal deadline so a slow broker cannot
// stall the mutation that triggered the message.
func (p *AMQPNotifier) Notify(ctx context.Context, n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(ctx, p.exchange, "notify."+n.Kind, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *AMQPNotifier) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// LogNotifier stands in when no broker is configured, so local and test
// environments keep the same code path.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	log.Printf("[NOTIFY] %s -> %s: %s", n.Kind, n.RecipientID, n.Message)
	return nil
}

func (LogNotifier) Close() error { return nil }
