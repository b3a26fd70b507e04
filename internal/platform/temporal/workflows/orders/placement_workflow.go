package orders

import (
	"go.temporal.io/sdk/workflow"

	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	"github.com/Apurer/ventrest-api/internal/platform/temporal/sequences"
)

const (
	// PlacementWorkflowName is the public identifier for registering the workflow.
	PlacementWorkflowName = "orders.workflows.Placement"
	// PlacementTaskQueue is the queue consumed by the worker placing orders.
	PlacementTaskQueue = "ORDER_PLACEMENT"
)

// PlacementWorkflowInput captures the cart to place.
type PlacementWorkflowInput struct {
	Command ordersports.PlaceOrdersInput
	TraceID string
}

// PlacementWorkflow places the orders of one cart.
func PlacementWorkflow(ctx workflow.Context, input PlacementWorkflowInput) ([]*ordersports.OrderProjection, error) {
	logger := workflow.GetLogger(ctx)
	vendorID := input.Command.Caller.UserID.String()
	logger.Info("PlacementWorkflow started", withTraceID(input.TraceID, "vendorId", vendorID)...)
	orders, err := sequences.RunOrderPlacementSequence(ctx, input.Command)
	if err != nil {
		logger.Error("PlacementWorkflow failed", withTraceID(input.TraceID, "vendorId", vendorID, "error", err)...)
		return nil, err
	}
	logger.Info("PlacementWorkflow completed", withTraceID(input.TraceID, "vendorId", vendorID, "orders", len(orders))...)
	return orders, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
