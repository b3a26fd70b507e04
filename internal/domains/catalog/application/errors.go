package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
)

var (
	// ErrInvalidInput signals the request violated a product invariant.
	ErrInvalidInput = errors.New("invalid product input")
	// ErrForbidden signals the caller may not act on the product.
	ErrForbidden = errors.New("product action not allowed")

	errNotSupplier = fmt.Errorf("%w: only suppliers manage products", ErrForbidden)
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrMissingSupplier) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrPricePrecision) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrInvalidCategory) ||
		errors.Is(err, domain.ErrInvalidUnit) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidMinOrder) ||
		errors.Is(err, domain.ErrInvalidDiscountTier) ||
		errors.Is(err, domain.ErrInvalidRating) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
