package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderPaid          = "order.paid"
	TypeOrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       int64     `json:"order_id"`
	BookID        int64     `json:"book_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	At            time.Time `json:"at"`
}

// Publisher emits order lifecycle events to Kafka. Publishing is
// best-effort and disabled entirely when no brokers are configured,
// so a nil or empty publisher is safe to call.
type Publisher struct {
	w   *kafka.Writer
	log *slog.Logger
}

func NewPublisher(brokersCSV, topic string, log *slog.Logger) *Publisher {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Publisher{log: log}
	}
	return &Publisher{
		log: log,
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Enabled() bool { return p != nil && p.w != nil }

func (p *Publisher) Publish(ctx context.Context, ev OrderEvent) {
	if !p.Enabled() {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("event marshal failed", "type", ev.Type, "err", err)
		return
	}
	key := strconv.FormatInt(ev.OrderID, 10)
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: ev.At}); err != nil {
		p.log.Error("event publish failed", "type", ev.Type, "order_id", ev.OrderID, "err", err)
	}
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.w.Close()
}
