package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

var (
	ErrEmptyCart        = errors.New("order must contain at least one item")
	ErrInvalidQuantity  = errors.New("item quantity must be at least 1")
	ErrMissingProduct   = errors.New("item product id is required")
	ErrMissingVendor    = errors.New("order vendor is required")
	ErrMissingSupplier  = errors.New("order supplier is required")
	ErrNegativePrice    = errors.New("unit price cannot be negative")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrNotDelivered     = errors.New("only delivered orders can be reviewed")
	ErrAlreadyReviewed  = errors.New("order has already been reviewed")
	ErrReviewNotAllowed = errors.New("only the ordering vendor can review an order")

	ErrSupplierMismatch   = errors.New("product belongs to another supplier")
	ErrProductUnavailable = errors.New("product is not available for ordering")
	ErrBelowMinimum       = errors.New("quantity is below the product minimum order quantity")
)

// Address is where the supplier delivers the order.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// LineItem is one product of an order with its price at order time.
type LineItem struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// NewLineItem snapshots a product price and computes the line total.
func NewLineItem(productID uuid.UUID, name string, quantity int, unitPrice decimal.Decimal) (LineItem, error) {
	if productID == uuid.Nil {
		return LineItem{}, ErrMissingProduct
	}
	if quantity < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return LineItem{}, ErrNegativePrice
	}
	return LineItem{
		ProductID:   productID,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Review is the vendor feedback attached after delivery.
type Review struct {
	Rating int
	Text   string
}

// Order is placed by one vendor against one supplier. Its total is fixed at creation.
type Order struct {
	ID                   uuid.UUID
	VendorID             uuid.UUID
	SupplierID           uuid.UUID
	Items                []LineItem
	TotalAmount          decimal.Decimal
	Status               Status
	PaymentStatus        PaymentStatus
	DeliveryAddress      Address
	DeliveryInstructions string
	Notes                string
	EstimatedDelivery    *time.Time
	ActualDelivery       *time.Time
	Review               *Review
	IdempotencyKey       string
	RequestFingerprint   string
}

// NewOrder builds a pending order and sums its line totals.
func NewOrder(id, vendorID, supplierID uuid.UUID, items []LineItem, address Address) (*Order, error) {
	if vendorID == uuid.Nil {
		return nil, ErrMissingVendor
	}
	if supplierID == uuid.Nil {
		return nil, ErrMissingSupplier
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	total := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		total = total.Add(item.LineTotal)
	}
	return &Order{
		ID:              id,
		VendorID:        vendorID,
		SupplierID:      supplierID,
		Items:           append([]LineItem(nil), items...),
		TotalAmount:     total,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		DeliveryAddress: trimAddress(address),
	}, nil
}

// Involves reports whether the identity is the vendor or the supplier of the order.
func (o *Order) Involves(identity auth.Identity) bool {
	switch identity.Role {
	case auth.RoleVendor:
		return o.VendorID == identity.UserID
	case auth.RoleSupplier:
		return o.SupplierID == identity.UserID
	default:
		return false
	}
}

// TotalQuantity sums the item quantities.
func (o *Order) TotalQuantity() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// TransitionTo moves the order to next on behalf of actor. Delivery stamps at.
func (o *Order) TransitionTo(actor auth.Role, next Status, at time.Time) error {
	if err := CheckTransition(actor, o.Status, next); err != nil {
		return err
	}
	o.Status = next
	if next == StatusDelivered {
		delivered := at
		o.ActualDelivery = &delivered
	}
	return nil
}

// ChangePayment moves the payment status along its own lifecycle.
func (o *Order) ChangePayment(next PaymentStatus) error {
	if err := CheckPaymentTransition(o.PaymentStatus, next); err != nil {
		return err
	}
	o.PaymentStatus = next
	return nil
}

// AttachReview records the vendor rating. It can happen once, after delivery.
func (o *Order) AttachReview(rating int, text string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	if o.Status != StatusDelivered {
		return ErrNotDelivered
	}
	if o.Review != nil {
		return ErrAlreadyReviewed
	}
	o.Review = &Review{Rating: rating, Text: strings.TrimSpace(text)}
	return nil
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	if o.EstimatedDelivery != nil {
		t := *o.EstimatedDelivery
		clone.EstimatedDelivery = &t
	}
	if o.ActualDelivery != nil {
		t := *o.ActualDelivery
		clone.ActualDelivery = &t
	}
	if o.Review != nil {
		r := *o.Review
		clone.Review = &r
	}
	return &clone
}

func trimAddress(a Address) Address {
	return Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
	}
}
