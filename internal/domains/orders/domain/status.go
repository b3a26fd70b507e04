package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

// Status is the fulfilment lifecycle of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var (
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrTransitionForbidden means the actor may never make this move, whatever the state.
	ErrTransitionForbidden = errors.New("status transition not permitted for this role")
)

var forward = map[Status]Status{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusShipped,
	StatusShipped:   StatusDelivered,
}

// ParseStatus accepts a status name in any case.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusShipped, StatusDelivered, StatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Next returns the single forward step from s.
func (s Status) Next() (Status, bool) {
	next, ok := forward[s]
	return next, ok
}

// Counts reports whether orders in s count towards sales volume.
func (s Status) Counts() bool {
	return s == StatusShipped || s == StatusDelivered
}

// CheckTransition validates from -> to for actor.
// Suppliers advance one step or cancel. Vendors may only cancel a pending order.
func CheckTransition(actor auth.Role, from, to Status) error {
	if _, err := ParseStatus(string(to)); err != nil {
		return err
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, from)
	}
	switch actor {
	case auth.RoleSupplier:
		if to == StatusCancelled {
			return nil
		}
		if next, ok := from.Next(); ok && next == to {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	case auth.RoleVendor:
		if to != StatusCancelled {
			return ErrTransitionForbidden
		}
		if from != StatusPending {
			return fmt.Errorf("%w: vendors can only cancel pending orders", ErrTransitionForbidden)
		}
		return nil
	default:
		return ErrTransitionForbidden
	}
}

// PaymentStatus tracks settlement independently of fulfilment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var (
	ErrUnknownPaymentStatus     = errors.New("unknown payment status")
	ErrInvalidPaymentTransition = errors.New("invalid payment status transition")
)

var paymentMoves = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentFailed:  {PaymentPaid},
	PaymentPaid:    {PaymentRefunded},
}

// ParsePaymentStatus accepts a payment status name in any case.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentStatus, raw)
}

// CheckPaymentTransition validates from -> to.
func CheckPaymentTransition(from, to PaymentStatus) error {
	if _, err := ParsePaymentStatus(string(to)); err != nil {
		return err
	}
	for _, allowed := range paymentMoves[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, from, to)
}
