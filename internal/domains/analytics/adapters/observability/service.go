package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/ventrest-api/internal/domains/analytics/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

const tracerName = "github.com/Apurer/ventrest-api/internal/domains/analytics/adapters/observability/service"

// Service decorates the analytics port with tracing, logging, and metrics.
type Service struct {
	inner    ports.Service
	tracer   trace.Tracer
	logger   *slog.Logger
	requests metric.Int64Counter
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

// WithMeter injects the meter used for the dashboard request counter.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m != nil {
			s.requests, _ = m.Int64Counter("analytics.service.summaries", metric.WithDescription("Dashboard summaries served by role"))
		}
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
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
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) VendorSummary(ctx context.Context, caller auth.Identity, limit int) (*ports.VendorSummary, error) {
	ctx, span := s.start(ctx, "AnalyticsService.VendorSummary", caller, limit)
	defer span.End()

	result, err := s.inner.VendorSummary(ctx, caller, limit)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to build vendor summary", caller)
	}
	s.count(ctx, caller)
	span.SetAttributes(attribute.Int("analytics.orders.total", result.TotalOrders))
	return result, nil
}

func (s *Service) SupplierSummary(ctx context.Context, caller auth.Identity, limit int) (*ports.SupplierSummary, error) {
	ctx, span := s.start(ctx, "AnalyticsService.SupplierSummary", caller, limit)
	defer span.End()

	result, err := s.inner.SupplierSummary(ctx, caller, limit)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to build supplier summary", caller)
	}
	s.count(ctx, caller)
	span.SetAttributes(
		attribute.Int("analytics.orders.total", result.TotalOrders),
		attribute.Int("analytics.products.total", result.TotalProducts))
	return result, nil
}

func (s *Service) start(ctx context.Context, name string, caller auth.Identity, limit int) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("enduser.id", caller.UserID.String()),
		attribute.String("enduser.role", string(caller.Role)),
		attribute.Int("analytics.limit", limit),
	))
}

func (s *Service) count(ctx context.Context, caller auth.Identity) {
	if s.requests != nil {
		s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("enduser.role", string(caller.Role))))
	}
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string, caller auth.Identity) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.ErrorContext(ctx, msg, slog.String("user.id", caller.UserID.String()), slog.String("error", err.Error()))
	return err
}

var _ ports.Service = (*Service)(nil)
