package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	analyticsmemory "github.com/Apurer/ventrest-api/internal/domains/analytics/adapters/memory"
	"github.com/Apurer/ventrest-api/internal/domains/analytics/application"
	catalogmemory "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/memory"
	ordersmemory "github.com/Apurer/ventrest-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

func TestDecoratorSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	var logs bytes.Buffer
	catalog := catalogmemory.NewRepository()
	svc := New(application.NewService(analyticsmemory.NewSource(ordersmemory.NewStore(catalog), catalog)),
		WithTracer(provider.Tracer("test")),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)
	vendor := auth.Identity{UserID: uuid.New(), Role: auth.RoleVendor}

	_, err := svc.VendorSummary(context.Background(), vendor, 0)
	require.NoError(t, err)
	_, err = svc.SupplierSummary(context.Background(), vendor, 0)
	require.ErrorIs(t, err, application.ErrForbidden)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "AnalyticsService.VendorSummary", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "AnalyticsService.SupplierSummary", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, logs.String(), "failed to build supplier summary")
}
