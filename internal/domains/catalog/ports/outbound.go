package ports

import (
	"context"
	"errors"
	"io"

	"github.com/shopspring/decimal"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
)

// ErrPricingUnavailable signals the price model could not produce an answer.
var ErrPricingUnavailable = errors.New("price prediction service unavailable")

// PriceQuery carries the market signals the price model expects.
type PriceQuery struct {
	Day     int
	Weather string
	Demand  string
}

// PricePredictor asks an external model for a suggested price.
type PricePredictor interface {
	Predict(ctx context.Context, query PriceQuery) (decimal.Decimal, error)
}

// Exporter renders a supplier's catalog into a downloadable document.
type Exporter interface {
	Export(w io.Writer, products []*domain.Product) error
}
