package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/application"
	"github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

const tracerName = "github.com/Apurer/ventrest-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) PlaceOrders(ctx context.Context, input ports.PlaceOrdersInput) ([]*ports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrders", trace.WithAttributes(
		attribute.String("enduser.id", input.Caller.UserID.String()),
		attribute.Int("order.cart.lines", len(input.Items)),
		attribute.Bool("order.checkout", input.Checkout()),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()

	result, err := s.inner.PlaceOrders(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, rejectionReason(err))
		return nil, s.fail(ctx, span, err, "failed to place orders", slog.String("vendor.id", input.Caller.UserID.String()))
	}
	ids := make([]string, 0, len(result))
	for _, o := range result {
		ids = append(ids, o.Entity.ID.String())
		s.metrics.recordPlaced(ctx, o.Entity.TotalAmount.InexactFloat64())
	}
	span.SetAttributes(attribute.StringSlice("order.ids", ids))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "orders placed",
		slog.String("vendor.id", input.Caller.UserID.String()),
		slog.Any("order.ids", ids))
	return result, nil
}

func (s *Service) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*ports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Get", trace.WithAttributes(orderAttr(id)))
	defer span.End()

	result, err := s.inner.Get(ctx, caller, id)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to load order", slog.String("order.id", id.String()))
	}
	return result, nil
}

func (s *Service) ListMine(ctx context.Context, caller auth.Identity) ([]*ports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListMine", trace.WithAttributes(attribute.String("enduser.id", caller.UserID.String())))
	defer span.End()

	result, err := s.inner.ListMine(ctx, caller)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to list vendor orders", slog.String("vendor.id", caller.UserID.String()))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result)))
	return result, nil
}

func (s *Service) ListForSupplier(ctx context.Context, caller auth.Identity) ([]*ports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListForSupplier", trace.WithAttributes(attribute.String("enduser.id", caller.UserID.String())))
	defer span.End()

	result, err := s.inner.ListForSupplier(ctx, caller)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to list supplier orders", slog.String("supplier.id", caller.UserID.String()))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result)))
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, input ports.UpdateStatusInput) (*ports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		orderAttr(input.OrderID),
		attribute.String("enduser.role", string(caller.Role)),
		attribute.String("order.status.requested", input.Status),
	))
	defer span.End()

	result, err := s.inner.UpdateStatus(ctx, caller, input)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to update order status",
			slog.String("order.id", input.OrderID.String()),
			slog.String("status", input.Status))
	}
	s.metrics.recordStatus(ctx, string(result.Entity.Status))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "order status updated",
		slog.String("order.id", input.OrderID.String()),
		slog.String("status", string(result.Entity.Status)))
	return result, nil
}

func (s *Service) UpdatePayment(ctx context.Context, caller auth.Identity, input ports.UpdatePaymentInput) (*ports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdatePayment", trace.WithAttributes(
		orderAttr(input.OrderID),
		attribute.String("order.payment.requested", input.PaymentStatus),
	))
	defer span.End()

	result, err := s.inner.UpdatePayment(ctx, caller, input)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to update payment status", slog.String("order.id", input.OrderID.String()))
	}
	s.metrics.recordPayment(ctx, string(result.Entity.PaymentStatus))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "order payment updated",
		slog.String("order.id", input.OrderID.String()),
		slog.String("payment_status", string(result.Entity.PaymentStatus)))
	return result, nil
}

func (s *Service) Review(ctx context.Context, caller auth.Identity, input ports.ReviewInput) (*ports.OrderProjection, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Review", trace.WithAttributes(orderAttr(input.OrderID)))
	defer span.End()

	result, err := s.inner.Review(ctx, caller, input)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to review order", slog.String("order.id", input.OrderID.String()))
	}
	s.metrics.recordReview(ctx, input.Rating)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "order reviewed",
		slog.String("order.id", input.OrderID.String()),
		slog.Int("rating", input.Rating))
	return result, nil
}

func orderAttr(id uuid.UUID) attribute.KeyValue {
	return attribute.String("order.id", id.String())
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, catalogdomain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, application.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, application.ErrForbidden):
		return "forbidden"
	case errors.Is(err, application.ErrConflict):
		return "conflict"
	case errors.Is(err, ports.ErrProductNotFound):
		return "product_not_found"
	default:
		return "error"
	}
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	placed   metric.Int64Counter
	amount   metric.Float64Histogram
	rejected metric.Int64Counter
	status   metric.Int64Counter
	payments metric.Int64Counter
	reviews  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	amount, _ := m.Float64Histogram("orders.service.placed_amount", metric.WithDescription("Order totals at placement"))
	rejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Rejected placements by reason"))
	status, _ := m.Int64Counter("orders.service.status_changes", metric.WithDescription("Order status transitions by target status"))
	payments, _ := m.Int64Counter("orders.service.payment_changes", metric.WithDescription("Payment status changes by target status"))
	reviews, _ := m.Int64Counter("orders.service.reviews", metric.WithDescription("Order reviews by rating"))
	return serviceMetrics{placed: placed, amount: amount, rejected: rejected, status: status, payments: payments, reviews: reviews}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, total float64) {
	if m.placed != nil {
		m.placed.Add(ctx, 1)
	}
	if m.amount != nil {
		m.amount.Record(ctx, total)
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, reason string) {
	if m.rejected != nil {
		m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m serviceMetrics) recordStatus(ctx context.Context, status string) {
	if m.status != nil {
		m.status.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", status)))
	}
}

func (m serviceMetrics) recordPayment(ctx context.Context, status string) {
	if m.payments != nil {
		m.payments.Add(ctx, 1, metric.WithAttributes(attribute.String("order.payment_status", status)))
	}
}

func (m serviceMetrics) recordReview(ctx context.Context, rating int) {
	if m.reviews != nil {
		m.reviews.Add(ctx, 1, metric.WithAttributes(attribute.Int("order.rating", rating)))
	}
}

var _ ports.Service = (*Service)(nil)
