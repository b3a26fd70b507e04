package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	"github.com/Apurer/ventrest-api/internal/shared/projection"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	// ErrStaleOrder means the order changed between read and conditional write.
	ErrStaleOrder = errors.New("order was modified concurrently")
	// ErrKeyClaimed means another placement already claimed the idempotency key.
	ErrKeyClaimed = errors.New("idempotency key already claimed")
)

// OrderProjection is an order plus its persistence timestamps.
type OrderProjection = projection.Projection[*domain.Order]

// Repository reads orders and applies conditional single-order updates.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*OrderProjection, error)
	// ListByVendor and ListBySupplier return newest first.
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*OrderProjection, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*OrderProjection, error)
	// UpdateStatus writes order.Status only if the stored status still equals from.
	UpdateStatus(ctx context.Context, order *domain.Order, from domain.Status) (*OrderProjection, error)
	// UpdatePayment writes order.PaymentStatus only if the stored one still equals from.
	UpdatePayment(ctx context.Context, order *domain.Order, from domain.PaymentStatus) (*OrderProjection, error)
	// SaveReview writes order.Review only if the stored order is delivered and unreviewed.
	SaveReview(ctx context.Context, order *domain.Order) (*OrderProjection, error)
}

// Tx is the placement transaction. Every call sees the writes of earlier calls.
type Tx interface {
	// LockProduct loads a product and holds it until the unit ends.
	LockProduct(ctx context.Context, id uuid.UUID) (*catalogdomain.Product, error)
	// DecrementStock removes qty units only if at least qty are on hand,
	// failing with catalogdomain.ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	InsertOrder(ctx context.Context, order *domain.Order) error
	// ClaimIdempotencyKey records the key, failing with ErrKeyClaimed when it exists.
	ClaimIdempotencyKey(ctx context.Context, record IdempotencyRecord) error
}

// UnitOfWork runs fn atomically: when fn fails nothing it did is visible.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// IdempotencyRecord links a client key to the orders it created.
type IdempotencyRecord struct {
	Key         string
	VendorID    uuid.UUID
	RequestHash string
	OrderIDs    []uuid.UUID
	CreatedAt   time.Time
}

// IdempotencyStore looks up claimed keys.
type IdempotencyStore interface {
	// Get returns the record for key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
}
