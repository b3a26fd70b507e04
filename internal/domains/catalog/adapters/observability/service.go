package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

const tracerName = "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog port with tracing, logging, and metrics.
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

func (s *Service) Create(ctx context.Context, caller auth.Identity, input ports.CreateProductInput) (*ports.ProductProjection, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.Create", callerAttrs(caller)...)
	defer span.End()

	result, err := s.inner.Create(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create product", slog.String("supplier.id", caller.UserID.String()))
	}
	s.metrics.recordCreated(ctx, string(result.Entity.Category))
	span.SetAttributes(attribute.String("product.id", result.Entity.ID.String()))
	s.logInfo(ctx, "product created",
		slog.String("product.id", result.Entity.ID.String()),
		slog.String("supplier.id", caller.UserID.String()),
		slog.String("category", string(result.Entity.Category)))
	return result, nil
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, input ports.UpdateProductInput) (*ports.ProductProjection, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.Update", append(callerAttrs(caller), productAttr(input.ID))...)
	defer span.End()

	result, err := s.inner.Update(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update product", slog.String("product.id", input.ID.String()))
	}
	s.metrics.recordUpdated(ctx, string(result.Entity.Status))
	s.logInfo(ctx, "product updated",
		slog.String("product.id", input.ID.String()),
		slog.String("status", string(result.Entity.Status)),
		slog.Int("stock", result.Entity.Stock))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	ctx, span := s.startSpan(ctx, "CatalogService.Delete", append(callerAttrs(caller), productAttr(id))...)
	defer span.End()

	if err := s.inner.Delete(ctx, caller, id); err != nil {
		return s.handleError(ctx, span, err, "failed to deactivate product", slog.String("product.id", id.String()))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "product deactivated", slog.String("product.id", id.String()))
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ports.ProductProjection, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.Get", productAttr(id))
	defer span.End()

	result, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load product", slog.String("product.id", id.String()))
	}
	return result, nil
}

func (s *Service) List(ctx context.Context, input ports.ListProductsInput) ([]*ports.ProductProjection, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.List",
		attribute.String("product.filter.category", input.Category),
		attribute.Bool("product.filter.search", input.Search != ""))
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products", slog.String("category", input.Category))
	}
	span.SetAttributes(attribute.Int("product.result.count", len(result)))
	return result, nil
}

func (s *Service) ListMine(ctx context.Context, caller auth.Identity) ([]*ports.ProductProjection, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.ListMine", callerAttrs(caller)...)
	defer span.End()

	result, err := s.inner.ListMine(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list supplier products", slog.String("supplier.id", caller.UserID.String()))
	}
	span.SetAttributes(attribute.Int("product.result.count", len(result)))
	return result, nil
}

func (s *Service) ExportMine(ctx context.Context, caller auth.Identity, w io.Writer) error {
	ctx, span := s.startSpan(ctx, "CatalogService.ExportMine", callerAttrs(caller)...)
	defer span.End()

	if err := s.inner.ExportMine(ctx, caller, w); err != nil {
		return s.handleError(ctx, span, err, "failed to export products", slog.String("supplier.id", caller.UserID.String()))
	}
	s.logInfo(ctx, "products exported", slog.String("supplier.id", caller.UserID.String()))
	return nil
}

func (s *Service) SuggestPrice(ctx context.Context, caller auth.Identity, input ports.PriceSuggestionInput) (*ports.PriceSuggestion, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.SuggestPrice", append(callerAttrs(caller), productAttr(input.ProductID))...)
	defer span.End()

	result, err := s.inner.SuggestPrice(ctx, caller, input)
	if err != nil {
		s.metrics.recordSuggestion(ctx, false)
		return nil, s.handleError(ctx, span, err, "failed to suggest price", slog.String("product.id", input.ProductID.String()))
	}
	s.metrics.recordSuggestion(ctx, true)
	s.logInfo(ctx, "price suggested",
		slog.String("product.id", input.ProductID.String()),
		slog.String("current", result.CurrentPrice.StringFixed(2)),
		slog.String("suggested", result.SuggestedPrice.StringFixed(2)))
	return result, nil
}

func callerAttrs(caller auth.Identity) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("enduser.id", caller.UserID.String()),
		attribute.String("enduser.role", string(caller.Role)),
	}
}

func productAttr(id uuid.UUID) attribute.KeyValue {
	return attribute.String("product.id", id.String())
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
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
	created     metric.Int64Counter
	updated     metric.Int64Counter
	deleted     metric.Int64Counter
	suggestions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("catalog.service.created", metric.WithDescription("Number of products created"))
	updated, _ := m.Int64Counter("catalog.service.updated", metric.WithDescription("Number of products updated"))
	deleted, _ := m.Int64Counter("catalog.service.deactivated", metric.WithDescription("Number of products soft deleted"))
	suggestions, _ := m.Int64Counter("catalog.service.price_suggestions", metric.WithDescription("Price prediction calls by outcome"))
	return serviceMetrics{created: created, updated: updated, deleted: deleted, suggestions: suggestions}
}

func (m serviceMetrics) recordCreated(ctx context.Context, category string) {
	addCounter(ctx, m.created, 1, attribute.String("product.category", category))
}

func (m serviceMetrics) recordUpdated(ctx context.Context, status string) {
	addCounter(ctx, m.updated, 1, attribute.String("product.status", status))
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.deleted, 1)
}

func (m serviceMetrics) recordSuggestion(ctx context.Context, ok bool) {
	addCounter(ctx, m.suggestions, 1, attribute.Bool("success", ok))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
