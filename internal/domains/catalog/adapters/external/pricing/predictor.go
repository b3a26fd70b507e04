package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	pricingclient "github.com/Apurer/ventrest-api/internal/clients/http/pricing"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
)

var _ ports.PricePredictor = (*Predictor)(nil)

// Predictor implements the outbound price prediction port.
type Predictor struct {
	client *pricingclient.Client
}

// NewPredictor wires a pricing HTTP client into the catalog port.
func NewPredictor(client *pricingclient.Client) *Predictor {
	return &Predictor{client: client}
}

// Predict returns the model's price rounded to cents.
func (p *Predictor) Predict(ctx context.Context, query ports.PriceQuery) (decimal.Decimal, error) {
	if p == nil || p.client == nil {
		return decimal.Zero, ports.ErrPricingUnavailable
	}
	resp, err := p.client.Predict(ctx, pricingclient.PredictRequest{
		Day:     query.Day,
		Weather: query.Weather,
		Demand:  query.Demand,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ports.ErrPricingUnavailable, err)
	}
	price := decimal.NewFromFloat(resp.PredictedPrice).Round(2)
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %w", ports.ErrPricingUnavailable, errors.New("model returned a negative price"))
	}
	return price, nil
}
