package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/ventrest-api/internal/platform/temporal/activities/orders"
)

// RunOrderPlacementSequence executes the order writer activity. Transient failures
// are retried; every attempt carries the same idempotency key.
func RunOrderPlacementSequence(ctx workflow.Context, input ordersports.PlaceOrdersInput) ([]*ordersports.OrderProjection, error) {
	logger := workflow.GetLogger(ctx)
	vendorID := input.Caller.UserID.String()
	logger.Info("order placement sequence started", "vendorId", vendorID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}

	var orders []*ordersports.OrderProjection
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.PlaceOrdersActivityName, input).Get(ctx, &orders)
	if err != nil {
		logger.Error("order placement sequence failed", "vendorId", vendorID, "error", err)
		return nil, err
	}
	logger.Info("order placement sequence completed", "vendorId", vendorID, "orders", len(orders))
	return orders, nil
}
