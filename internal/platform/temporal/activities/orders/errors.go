package orders

import (
	"errors"

	"go.temporal.io/sdk/temporal"

	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
)

// Error codes carried as the Temporal application error type.
const (
	CodeInsufficientStock   = "orders.insufficient_stock"
	CodeInvalidInput        = "orders.invalid_input"
	CodeForbidden           = "orders.forbidden"
	CodeIdempotencyConflict = "orders.idempotency_conflict"
	CodeConflict            = "orders.conflict"
	CodeProductNotFound     = "orders.product_not_found"
	CodeNotFound            = "orders.not_found"
)

type codedError struct {
	code    string
	matches []error
}

// Order matters: the most specific match wins.
var codedErrors = []codedError{
	{CodeInsufficientStock, []error{application.ErrInvalidInput, catalogdomain.ErrInsufficientStock}},
	{CodeInvalidInput, []error{application.ErrInvalidInput}},
	{CodeForbidden, []error{application.ErrForbidden}},
	{CodeIdempotencyConflict, []error{application.ErrConflict, application.ErrIdempotencyConflict}},
	{CodeConflict, []error{application.ErrConflict}},
	{CodeProductNotFound, []error{ordersports.ErrProductNotFound}},
	{CodeNotFound, []error{ordersports.ErrNotFound}},
}

// EncodeError turns a known order error into a non-retryable application error.
// Unknown errors are returned unchanged so Temporal retries them.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range codedErrors {
		if matchesAll(err, c.matches) {
			return temporal.NewNonRetryableApplicationError(err.Error(), c.code, nil, err.Error())
		}
	}
	return err
}

// DecodeError restores the order errors behind an application error code.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, c := range codedErrors {
		if c.code != appErr.Type() {
			continue
		}
		msg := c.matches[len(c.matches)-1].Error()
		if appErr.HasDetails() {
			var detail string
			if derr := appErr.Details(&detail); derr == nil && detail != "" {
				msg = detail
			}
		}
		return &remoteError{msg: msg, causes: c.matches}
	}
	return err
}

func matchesAll(err error, targets []error) bool {
	for _, target := range targets {
		if !errors.Is(err, target) {
			return false
		}
	}
	return true
}

type remoteError struct {
	msg    string
	causes []error
}

func (e *remoteError) Error() string   { return e.msg }
func (e *remoteError) Unwrap() []error { return e.causes }
