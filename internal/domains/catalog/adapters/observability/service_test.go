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

	catalogmemory "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/application"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

func TestDecoratorRecordsSpansAndErrorLogs(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	svc := New(application.NewService(catalogmemory.NewRepository()),
		WithTracer(provider.Tracer("test")),
		WithLogger(logger),
	)

	_, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.ListMine(context.Background(), auth.Identity{UserID: uuid.New(), Role: auth.RoleSupplier})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "CatalogService.Get", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "CatalogService.ListMine", spans[1].Name())
	assert.Contains(t, logs.String(), "failed to load product")
}
