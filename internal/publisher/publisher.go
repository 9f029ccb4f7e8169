package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
)

const EventOrderPlaced = "order.placed"

type OrderPublisher interface {
	Publish(ctx context.Context, order *domain.Order) error
	Close() error
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *domain.Order) error { return nil }
func (NopPublisher) Close() error                                 { return nil }

type OrderPlacedEvent struct {
	OrderID  string               `json:"order_id"`
	UserID   string               `json:"user_id"`
	Items    []OrderPlacedItem    `json:"items"`
	Total    float64              `json:"total_amount"`
	Currency string               `json:"currency"`
	Status   domain.OrderStatus   `json:"status"`
	Method   domain.PaymentMethod `json:"method"`
	PlacedAt time.Time            `json:"placed_at"`
}

type OrderPlacedItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

func NewOrderPlacedEvent(order *domain.Order) OrderPlacedEvent {
	items := make([]OrderPlacedItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderPlacedItem{
			ProductID:   it.ID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
			Subtotal:    it.Subtotal(),
		})
	}
	return OrderPlacedEvent{
		OrderID:  order.ID,
		UserID:   order.UserID,
		Items:    items,
		Total:    order.Total,
		Currency: order.Currency,
		Status:   order.Status,
		Method:   order.Method,
		PlacedAt: order.CreatedAt,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(NewOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %s: %w", order.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
