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

	userdomain "github.com/Apurer/ventrest-api/internal/domains/users/domain"
	userports "github.com/Apurer/ventrest-api/internal/domains/users/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

const tracerName = "github.com/Apurer/ventrest-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
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

func (s *Service) Register(ctx context.Context, input userports.RegisterInput) (*userports.Session, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register", trace.WithAttributes(attribute.String("user.role", input.Role)))
	defer span.End()
	session, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user", slog.String("role", input.Role))
	}
	user := session.User.Entity
	s.metrics.recordRegistered(ctx, string(user.Role))
	span.SetAttributes(attribute.String("enduser.id", user.ID.String()))
	s.logInfo(ctx, "user registered", slog.String("user.id", user.ID.String()), slog.String("role", string(user.Role)))
	return session, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*userports.Session, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()
	session, err := s.inner.Login(ctx, email, password)
	if err != nil {
		s.metrics.recordLogin(ctx, false)
		return nil, s.handleError(ctx, span, err, "login failed")
	}
	s.metrics.recordLogin(ctx, true)
	span.SetAttributes(attribute.String("enduser.id", session.User.Entity.ID.String()))
	s.logInfo(ctx, "user logged in", slog.String("user.id", session.User.Entity.ID.String()))
	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	identity, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return auth.Identity{}, err
	}
	span.SetAttributes(callerAttrs(identity)...)
	return identity, nil
}

func (s *Service) Me(ctx context.Context, caller auth.Identity) (*userports.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Me", trace.WithAttributes(callerAttrs(caller)...))
	defer span.End()
	result, err := s.inner.Me(ctx, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load account", slog.String("user.id", caller.UserID.String()))
	}
	return result, nil
}

func (s *Service) UpdateProfile(ctx context.Context, caller auth.Identity, profile userdomain.Profile) (*userports.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateProfile", trace.WithAttributes(callerAttrs(caller)...))
	defer span.End()
	result, err := s.inner.UpdateProfile(ctx, caller, profile)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update profile", slog.String("user.id", caller.UserID.String()))
	}
	s.metrics.recordUpdated(ctx)
	s.logInfo(ctx, "profile updated", slog.String("user.id", caller.UserID.String()))
	return result, nil
}

func (s *Service) Deactivate(ctx context.Context, caller auth.Identity) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Deactivate", trace.WithAttributes(callerAttrs(caller)...))
	defer span.End()
	if err := s.inner.Deactivate(ctx, caller); err != nil {
		return s.handleError(ctx, span, err, "failed to deactivate account", slog.String("user.id", caller.UserID.String()))
	}
	s.metrics.recordDeactivated(ctx)
	s.logInfo(ctx, "account deactivated", slog.String("user.id", caller.UserID.String()))
	return nil
}

func callerAttrs(caller auth.Identity) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("enduser.id", caller.UserID.String()),
		attribute.String("enduser.role", string(caller.Role)),
	}
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	registered  metric.Int64Counter
	updated     metric.Int64Counter
	deactivated metric.Int64Counter
	logins      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of accounts registered"))
	updated, _ := m.Int64Counter("users.service.updated", metric.WithDescription("Number of profile updates"))
	deactivated, _ := m.Int64Counter("users.service.deactivated", metric.WithDescription("Number of accounts deactivated"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Login attempts by outcome"))
	return serviceMetrics{registered: registered, updated: updated, deactivated: deactivated, logins: logins}
}

func (m serviceMetrics) recordRegistered(ctx context.Context, role string) {
	if m.registered != nil {
		m.registered.Add(ctx, 1, metric.WithAttributes(attribute.String("user.role", role)))
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.updated != nil {
		m.updated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeactivated(ctx context.Context) {
	if m.deactivated != nil {
		m.deactivated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context, ok bool) {
	if m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", ok)))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
