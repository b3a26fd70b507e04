package orders

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.temporal.io/sdk/temporal"

	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
)

func TestEncodeErrorRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
		want []error
	}{
		{"stock", fmt.Errorf("%w: %w", application.ErrInvalidInput, catalogdomain.ErrInsufficientStock), CodeInsufficientStock,
			[]error{application.ErrInvalidInput, catalogdomain.ErrInsufficientStock}},
		{"invalid", fmt.Errorf("%w: empty cart", application.ErrInvalidInput), CodeInvalidInput,
			[]error{application.ErrInvalidInput}},
		{"forbidden", application.ErrForbidden, CodeForbidden, []error{application.ErrForbidden}},
		{"idempotency", fmt.Errorf("%w: %w", application.ErrConflict, application.ErrIdempotencyConflict), CodeIdempotencyConflict,
			[]error{application.ErrConflict, application.ErrIdempotencyConflict}},
		{"product", ordersports.ErrProductNotFound, CodeProductNotFound, []error{ordersports.ErrProductNotFound}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeError(tc.err)
			var appErr *temporal.ApplicationError
			if assert.True(t, errors.As(encoded, &appErr)) {
				assert.Equal(t, tc.code, appErr.Type())
				assert.True(t, appErr.NonRetryable())
			}
			decoded := DecodeError(encoded)
			for _, want := range tc.want {
				assert.ErrorIs(t, decoded, want)
			}
			assert.Equal(t, tc.err.Error(), decoded.Error())
		})
	}
}

func TestUnknownErrorsStayRetryable(t *testing.T) {
	boom := errors.New("connection reset")
	assert.Same(t, boom, EncodeError(boom))
	assert.Same(t, boom, DecodeError(boom))
	assert.NoError(t, EncodeError(nil))
	assert.NoError(t, DecodeError(nil))
}
