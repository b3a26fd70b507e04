package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type recordingWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestProducerPublishesKeyedJSONWithTraceHeaders(t *testing.T) {
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
	otel.SetTextMapPropagator(propagation.TraceContext{})

	writer := &recordingWriter{}
	producer := NewProducerWithWriter(writer, "orders")

	err := producer.Publish(context.Background(), "order-1", map[string]string{"status": "pending"})
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "order-1", string(msg.Key))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "pending", payload["status"])
	assert.NotEmpty(t, NewMessageCarrier(&msg).Get("traceparent"))
}

func TestProducerReturnsWriterErrors(t *testing.T) {
	producer := NewProducerWithWriter(&recordingWriter{err: errors.New("broker down")}, "orders")
	err := producer.Publish(context.Background(), "order-1", struct{}{})
	require.EqualError(t, err, "broker down")
}

func TestMessageCarrierOverwritesExistingHeader(t *testing.T) {
	msg := kafka.Message{}
	carrier := NewMessageCarrier(&msg)
	carrier.Set("traceparent", "a")
	carrier.Set("traceparent", "b")

	assert.Equal(t, "b", carrier.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, carrier.Keys())
}
