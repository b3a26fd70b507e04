package ventrestserver

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	ordersdomain "github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
)

type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type OrderRequest struct {
	SupplierID           string             `json:"supplierId"`
	Items                []OrderItemRequest `json:"items"`
	DeliveryAddress      Address            `json:"deliveryAddress"`
	DeliveryInstructions string             `json:"deliveryInstructions,omitempty"`
	Notes                string             `json:"notes,omitempty"`
	EstimatedDelivery    *time.Time         `json:"estimatedDelivery,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

type ReviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review,omitempty"`
}

type OrderItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Total       string `json:"total"`
}

type OrderReview struct {
	Rating int    `json:"rating"`
	Review string `json:"review,omitempty"`
}

type Order struct {
	ID                   string       `json:"id"`
	VendorID             string       `json:"vendorId"`
	SupplierID           string       `json:"supplierId"`
	Items                []OrderItem  `json:"items"`
	TotalAmount          string       `json:"totalAmount"`
	Status               string       `json:"status"`
	PaymentStatus        string       `json:"paymentStatus"`
	DeliveryAddress      Address      `json:"deliveryAddress"`
	DeliveryInstructions string       `json:"deliveryInstructions,omitempty"`
	Notes                string       `json:"notes,omitempty"`
	EstimatedDelivery    *time.Time   `json:"estimatedDelivery,omitempty"`
	ActualDelivery       *time.Time   `json:"actualDelivery,omitempty"`
	Review               *OrderReview `json:"review,omitempty"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

// CheckoutResponse lists the per-supplier orders of one checkout.
type CheckoutResponse struct {
	Orders      []Order `json:"orders"`
	TotalAmount string  `json:"totalAmount"`
}

// toInput builds the placement command; a blank supplier means checkout.
func (r OrderRequest) toInput() (ordersports.PlaceOrdersInput, error) {
	in := ordersports.PlaceOrdersInput{
		DeliveryAddress:      ordersdomain.Address(r.DeliveryAddress),
		DeliveryInstructions: r.DeliveryInstructions,
		Notes:                r.Notes,
		EstimatedDelivery:    r.EstimatedDelivery,
		Items:                make([]ordersports.CartLine, 0, len(r.Items)),
	}
	if r.SupplierID != "" {
		id, err := uuid.Parse(r.SupplierID)
		if err != nil {
			return in, fmt.Errorf("supplierId: %w", err)
		}
		in.SupplierID = id
	}
	for i, item := range r.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return in, fmt.Errorf("items[%d].productId: %w", i, err)
		}
		in.Items = append(in.Items, ordersports.CartLine{ProductID: id, Quantity: item.Quantity})
	}
	return in, nil
}

func fromOrder(p *ordersports.OrderProjection) Order {
	o := p.Entity
	items := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItem{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Total:       item.LineTotal.StringFixed(2),
		})
	}
	out := Order{
		ID:                   o.ID.String(),
		VendorID:             o.VendorID.String(),
		SupplierID:           o.SupplierID.String(),
		Items:                items,
		TotalAmount:          o.TotalAmount.StringFixed(2),
		Status:               string(o.Status),
		PaymentStatus:        string(o.PaymentStatus),
		DeliveryAddress:      Address(o.DeliveryAddress),
		DeliveryInstructions: o.DeliveryInstructions,
		Notes:                o.Notes,
		EstimatedDelivery:    o.EstimatedDelivery,
		ActualDelivery:       o.ActualDelivery,
		CreatedAt:            p.Metadata.CreatedAt,
		UpdatedAt:            p.Metadata.UpdatedAt,
	}
	if o.Review != nil {
		out.Review = &OrderReview{Rating: o.Review.Rating, Review: o.Review.Text}
	}
	return out
}

func fromOrders(list []*ordersports.OrderProjection) []Order {
	out := make([]Order, 0, len(list))
	for _, p := range list {
		if p != nil {
			out = append(out, fromOrder(p))
		}
	}
	return out
}
