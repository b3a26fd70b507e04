package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is a fact about an order published after commit.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
}

// BaseEvent carries the common event metadata.
type BaseEvent struct {
	OrderID   uuid.UUID `json:"orderId"`
	Timestamp time.Time `json:"occurredAt"`
}

func (e BaseEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e BaseEvent) AggregateID() uuid.UUID { return e.OrderID }

// OrderPlaced is raised once per persisted order.
type OrderPlaced struct {
	BaseEvent
	VendorID    uuid.UUID       `json:"vendorId"`
	SupplierID  uuid.UUID       `json:"supplierId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
	Quantity    int             `json:"quantity"`
}

func (OrderPlaced) EventName() string { return "order.placed" }

// OrderStatusChanged is raised after every successful status transition.
type OrderStatusChanged struct {
	BaseEvent
	VendorID   uuid.UUID `json:"vendorId"`
	SupplierID uuid.UUID `json:"supplierId"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
}

func (OrderStatusChanged) EventName() string { return "order.status_changed" }

// NewOrderPlaced builds the placement event.
func NewOrderPlaced(o *Order, at time.Time) OrderPlaced {
	return OrderPlaced{
		BaseEvent:   BaseEvent{OrderID: o.ID, Timestamp: at},
		VendorID:    o.VendorID,
		SupplierID:  o.SupplierID,
		TotalAmount: o.TotalAmount,
		ItemCount:   len(o.Items),
		Quantity:    o.TotalQuantity(),
	}
}

// NewOrderStatusChanged builds the transition event.
func NewOrderStatusChanged(o *Order, from Status, at time.Time) OrderStatusChanged {
	return OrderStatusChanged{
		BaseEvent:  BaseEvent{OrderID: o.ID, Timestamp: at},
		VendorID:   o.VendorID,
		SupplierID: o.SupplierID,
		From:       from,
		To:         o.Status,
	}
}
