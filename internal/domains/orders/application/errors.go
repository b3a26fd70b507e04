package application

import (
	"errors"
	"fmt"

	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrForbidden signals the caller may not act on the order.
	ErrForbidden = errors.New("order access forbidden")
	// ErrConflict signals a concurrent change or a reused idempotency key.
	ErrConflict = errors.New("order conflict")
	// ErrIdempotencyConflict marks a key replayed with a different request.
	ErrIdempotencyConflict = errors.New("idempotency key was used for a different request")
)

var validationErrors = []error{
	domain.ErrEmptyCart,
	domain.ErrInvalidQuantity,
	domain.ErrMissingProduct,
	domain.ErrMissingVendor,
	domain.ErrMissingSupplier,
	domain.ErrNegativePrice,
	domain.ErrInvalidRating,
	domain.ErrNotDelivered,
	domain.ErrAlreadyReviewed,
	domain.ErrSupplierMismatch,
	domain.ErrProductUnavailable,
	domain.ErrBelowMinimum,
	domain.ErrUnknownStatus,
	domain.ErrInvalidTransition,
	domain.ErrUnknownPaymentStatus,
	domain.ErrInvalidPaymentTransition,
	catalogdomain.ErrInsufficientStock,
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if errors.Is(err, domain.ErrTransitionForbidden) || errors.Is(err, domain.ErrReviewNotAllowed) {
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	if errors.Is(err, ports.ErrStaleOrder) || errors.Is(err, ports.ErrKeyClaimed) || errors.Is(err, ErrIdempotencyConflict) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
