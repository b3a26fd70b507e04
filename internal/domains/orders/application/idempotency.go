package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/Apurer/ventrest-api/internal/domains/orders/ports"
)

type normalizedPlaceOrders struct {
	SupplierID           string           `json:"supplierId"`
	Items                []normalizedLine `json:"items"`
	Street               string           `json:"street"`
	City                 string           `json:"city"`
	State                string           `json:"state"`
	ZipCode              string           `json:"zipCode"`
	DeliveryInstructions string           `json:"deliveryInstructions"`
	Notes                string           `json:"notes"`
	EstimatedDelivery    string           `json:"estimatedDelivery,omitempty"`
}

type normalizedLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// FingerprintPlaceOrders hashes the placement request, excluding the caller and the key.
func FingerprintPlaceOrders(input ports.PlaceOrdersInput) (string, error) {
	normalized := normalizedPlaceOrders{
		SupplierID:           input.SupplierID.String(),
		Items:                make([]normalizedLine, 0, len(input.Items)),
		Street:               strings.TrimSpace(input.DeliveryAddress.Street),
		City:                 strings.TrimSpace(input.DeliveryAddress.City),
		State:                strings.TrimSpace(input.DeliveryAddress.State),
		ZipCode:              strings.TrimSpace(input.DeliveryAddress.ZipCode),
		DeliveryInstructions: strings.TrimSpace(input.DeliveryInstructions),
		Notes:                strings.TrimSpace(input.Notes),
	}
	for _, line := range input.Items {
		normalized.Items = append(normalized.Items, normalizedLine{ProductID: line.ProductID.String(), Quantity: line.Quantity})
	}
	if input.EstimatedDelivery != nil {
		normalized.EstimatedDelivery = input.EstimatedDelivery.UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
