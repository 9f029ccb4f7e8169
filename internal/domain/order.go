package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "pending"
	OrderStatusPaid        OrderStatus = "paid"
	OrderStatusCashPending OrderStatus = "cash_pending"
)

type PaymentMethod string

const (
	PaymentMethodPayPal PaymentMethod = "paypal"
	PaymentMethodCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodPayPal || m == PaymentMethodCOD
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return m, nil
}

// InitialStatus is the status an order gets when placed with this method.
func (m PaymentMethod) InitialStatus() OrderStatus {
	switch m {
	case PaymentMethodCOD:
		return OrderStatusCashPending
	case PaymentMethodPayPal:
		return OrderStatusPaid
	default:
		return OrderStatusPending
	}
}

type Order struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Items     Cart          `json:"items"`
	Total     float64       `json:"total"`
	Currency  string        `json:"currency"`
	Status    OrderStatus   `json:"status"`
	Method    PaymentMethod `json:"method"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewOrder snapshots items, so later cart changes never reach the order.
func NewOrder(id, userID string, items Cart, method PaymentMethod, now time.Time) *Order {
	snapshot := items.Clone()
	currency := ""
	if len(snapshot) > 0 {
		currency = snapshot[0].Currency
	}
	return &Order{
		ID:        id,
		UserID:    userID,
		Items:     snapshot,
		Total:     snapshot.Total(),
		Currency:  currency,
		Status:    method.InitialStatus(),
		Method:    method,
		CreatedAt: now,
	}
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = o.Items.Clone()
	return &c
}
