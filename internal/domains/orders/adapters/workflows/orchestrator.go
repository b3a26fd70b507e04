// Package workflows routes order placement through Temporal or runs it inline.
package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/ventrest-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/ventrest-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// WorkflowStarter is the part of client.Client the orchestrator uses.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun
}

// TemporalOrderWorkflows starts order placement on a Temporal cluster.
type TemporalOrderWorkflows struct {
	client    WorkflowStarter
	taskQueue string
}

// NewTemporalOrderWorkflows wires a Temporal client into the orchestrator.
func NewTemporalOrderWorkflows(c WorkflowStarter) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.PlacementTaskQueue}
}

// PlaceOrders starts the placement workflow and waits for its result.
// A repeated idempotency key attaches to the run already started for it.
func (o *TemporalOrderWorkflows) PlaceOrders(ctx context.Context, input ports.PlaceOrdersInput) ([]*ports.OrderProjection, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildPlacementWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.PlacementWorkflowName,
		orderworkflows.PlacementWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
		} else {
			return nil, err
		}
	}
	var orders []*ports.OrderProjection
	if err := run.Get(ctx, &orders); err != nil {
		return nil, orderactivities.DecodeError(err)
	}
	return orders, nil
}

// InlineOrderWorkflows executes the service directly without Temporal, for tests and dev fallbacks.
type InlineOrderWorkflows struct {
	service ports.Service
}

// NewInlineOrderWorkflows wraps the order service for synchronous execution.
func NewInlineOrderWorkflows(service ports.Service) *InlineOrderWorkflows {
	return &InlineOrderWorkflows{service: service}
}

// PlaceOrders delegates to the application service.
func (o *InlineOrderWorkflows) PlaceOrders(ctx context.Context, input ports.PlaceOrdersInput) ([]*ports.OrderProjection, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	return o.service.PlaceOrders(ctx, input)
}

func buildPlacementWorkflowID(input ports.PlaceOrdersInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-placement-idem-%s", hashIdempotencyKey(input.Caller.UserID.String()+":"+key))
	}
	return fmt.Sprintf("order-placement-%s-%s", input.Caller.UserID, traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
