package ports

import (
	"context"

	"github.com/Apurer/ventrest-api/internal/domains/orders/domain"
)

// EventPublisher emits order events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// WorkflowOrchestrator runs order placement, durably when a workflow engine is available.
type WorkflowOrchestrator interface {
	PlaceOrders(ctx context.Context, input PlaceOrdersInput) ([]*OrderProjection, error)
}
