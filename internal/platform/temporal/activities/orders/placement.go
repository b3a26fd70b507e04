package orders

import (
	"context"
	"errors"
	"strings"

	"go.temporal.io/sdk/activity"

	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
)

// PlaceOrdersActivityName writes the orders and decrements stock in one transaction.
const PlaceOrdersActivityName = "orders.activities.PlaceOrders"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ordersports.Service
}

// NewActivities wires the order writer into the Temporal activities bundle.
// service should not itself be routed through a workflow orchestrator.
func NewActivities(service ordersports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrders runs the order writer. Domain rejections come back non-retryable.
// A cart without an idempotency key is keyed by its workflow, so a retried
// attempt returns the orders an earlier attempt committed.
func (a *Activities) PlaceOrders(ctx context.Context, input ordersports.PlaceOrdersInput) ([]*ordersports.OrderProjection, error) {
	logger := activity.GetLogger(ctx)
	vendorID := input.Caller.UserID.String()
	if a == nil || a.service == nil {
		logger.Error("order placement activity not initialized", "vendorId", vendorID)
		return nil, errors.New("order placement activity not initialized")
	}
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		input.IdempotencyKey = WorkflowIdempotencyKey(activity.GetInfo(ctx).WorkflowExecution.ID)
	}
	logger.Info("PlaceOrders activity started", "vendorId", vendorID, "lines", len(input.Items), "attempt", activity.GetInfo(ctx).Attempt)
	orders, err := a.service.PlaceOrders(ctx, input)
	if err != nil {
		logger.Error("PlaceOrders activity failed", "vendorId", vendorID, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("PlaceOrders activity completed", "vendorId", vendorID, "orders", len(orders))
	return orders, nil
}

// WorkflowIdempotencyKey is the key used for carts placed without one.
func WorkflowIdempotencyKey(workflowID string) string {
	return "workflow:" + workflowID
}
