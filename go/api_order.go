package ventrestserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
)

const idempotencyHeader = "Idempotency-Key"

var errSupplierRequired = errors.New("supplierId is required; use /api/orders/checkout for multi-supplier carts")

// OrderAPI wires HTTP transport with the orders bounded context service and workflows.
type OrderAPI struct {
	service   ordersports.Service
	workflows ordersports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI; placement goes through workflows when one is configured.
func NewOrderAPI(service ordersports.Service, workflows ordersports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Post /api/orders
// Places one order against a single supplier
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	input, ok := api.bindPlacement(c)
	if !ok {
		return
	}
	if input.Checkout() {
		respondBadRequest(c, errSupplierRequired)
		return
	}
	orders, err := api.placeOrders(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if len(orders) == 0 {
		respondServiceError(c, errors.New("placement returned no order"))
		return
	}
	c.JSON(http.StatusCreated, fromOrder(orders[0]))
}

// Post /api/orders/checkout
// Splits a cart by supplier and places every order atomically
func (api *OrderAPI) Checkout(c *gin.Context) {
	input, ok := api.bindPlacement(c)
	if !ok {
		return
	}
	input.SupplierID = uuid.Nil
	orders, err := api.placeOrders(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Entity.TotalAmount)
	}
	c.JSON(http.StatusCreated, CheckoutResponse{Orders: fromOrders(orders), TotalAmount: total.StringFixed(2)})
}

func (api *OrderAPI) bindPlacement(c *gin.Context) (ordersports.PlaceOrdersInput, bool) {
	var payload OrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return ordersports.PlaceOrdersInput{}, false
	}
	input, err := payload.toInput()
	if err != nil {
		respondBadRequest(c, err)
		return input, false
	}
	input.Caller = callerFrom(c)
	input.IdempotencyKey = strings.TrimSpace(c.GetHeader(idempotencyHeader))
	return input, true
}

func (api *OrderAPI) placeOrders(ctx context.Context, input ordersports.PlaceOrdersInput) ([]*ordersports.OrderProjection, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrders(ctx, input)
	}
	return api.service.PlaceOrders(ctx, input)
}

// Get /api/orders/my-orders
func (api *OrderAPI) ListMyOrders(c *gin.Context) {
	orders, err := api.service.ListMine(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrders(orders))
}

// Get /api/orders/supplier-orders
func (api *OrderAPI) ListSupplierOrders(c *gin.Context) {
	orders, err := api.service.ListForSupplier(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrders(orders))
}

// Get /api/orders/:id
// Visible to the order's vendor and supplier only
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := api.service.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(order))
}

// Put /api/orders/:id/status
func (api *OrderAPI) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var payload StatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), callerFrom(c), ordersports.UpdateStatusInput{
		OrderID: id,
		Status:  payload.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(order))
}

// Put /api/orders/:id/payment
func (api *OrderAPI) UpdatePayment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var payload PaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.UpdatePayment(c.Request.Context(), callerFrom(c), ordersports.UpdatePaymentInput{
		OrderID:       id,
		PaymentStatus: payload.PaymentStatus,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(order))
}

// Post /api/orders/:id/review
func (api *OrderAPI) Review(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var payload ReviewRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.Review(c.Request.Context(), callerFrom(c), ordersports.ReviewInput{
		OrderID: id,
		Rating:  payload.Rating,
		Review:  payload.Review,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(order))
}
