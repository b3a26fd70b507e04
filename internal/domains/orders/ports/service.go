package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

// CartLine is one requested product and quantity.
type CartLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// PlaceOrdersInput carries a cart from a vendor.
// A zero SupplierID asks for checkout: the cart is split by product supplier.
type PlaceOrdersInput struct {
	Caller               auth.Identity  `json:"caller"`
	SupplierID           uuid.UUID      `json:"supplierId"`
	Items                []CartLine     `json:"items"`
	DeliveryAddress      domain.Address `json:"deliveryAddress"`
	DeliveryInstructions string         `json:"deliveryInstructions"`
	Notes                string         `json:"notes"`
	EstimatedDelivery    *time.Time     `json:"estimatedDelivery,omitempty"`
	IdempotencyKey       string         `json:"idempotencyKey,omitempty"`
}

// Checkout reports whether the cart should be split by supplier.
func (in PlaceOrdersInput) Checkout() bool {
	return in.SupplierID == uuid.Nil
}

// UpdateStatusInput requests a status transition.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  string
}

// UpdatePaymentInput requests a payment status change.
type UpdatePaymentInput struct {
	OrderID       uuid.UUID
	PaymentStatus string
}

// ReviewInput attaches a rating to a delivered order.
type ReviewInput struct {
	OrderID uuid.UUID
	Rating  int
	Review  string
}

// Service exposes the order use cases.
type Service interface {
	// PlaceOrders creates one order per supplier in a single atomic unit.
	PlaceOrders(ctx context.Context, input PlaceOrdersInput) ([]*OrderProjection, error)
	Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*OrderProjection, error)
	ListMine(ctx context.Context, caller auth.Identity) ([]*OrderProjection, error)
	ListForSupplier(ctx context.Context, caller auth.Identity) ([]*OrderProjection, error)
	UpdateStatus(ctx context.Context, caller auth.Identity, input UpdateStatusInput) (*OrderProjection, error)
	UpdatePayment(ctx context.Context, caller auth.Identity, input UpdatePaymentInput) (*OrderProjection, error)
	Review(ctx context.Context, caller auth.Identity, input ReviewInput) (*OrderProjection, error)
}
