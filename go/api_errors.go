package ventrestserver

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	analyticsapp "github.com/Apurer/ventrest-api/internal/domains/analytics/application"
	catalogapp "github.com/Apurer/ventrest-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	ordersapp "github.com/Apurer/ventrest-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	usersapp "github.com/Apurer/ventrest-api/internal/domains/users/application"
	usersports "github.com/Apurer/ventrest-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/ventrest-api/internal/shared/errors"
)

// responder maps service errors to RFC 7807 problems. Anything unmapped becomes a generic 500.
var responder = apierrors.NewChainedResponder("",
	notFoundMapper,
	familyMapper,
)

// respondServiceError answers with the problem matching err.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	responder.BadRequest(c, err.Error())
}

func respondUnauthorized(c *gin.Context, detail string) {
	responder.Unauthorized(c, detail)
}

func respondNotFound(c *gin.Context, resource string, id any) {
	responder.NotFound(c, resource, id)
}

type notFound struct {
	err      error
	resource string
}

var notFoundErrors = []notFound{
	{catalogports.ErrNotFound, "product"},
	{ordersports.ErrProductNotFound, "product"},
	{ordersports.ErrNotFound, "order"},
	{usersports.ErrNotFound, "user"},
}

func notFoundMapper(err error) (apierrors.ProblemDetail, bool) {
	for _, nf := range notFoundErrors {
		if errors.Is(err, nf.err) {
			return apierrors.ErrNotFound.
				WithDetail(err.Error()).
				WithExtension("resourceType", nf.resource), true
		}
	}
	return apierrors.ProblemDetail{}, false
}

type family struct {
	err     error
	problem apierrors.ProblemDetail
}

var families = []family{
	{usersapp.ErrAuthentication, apierrors.ErrUnauthorized},
	{usersapp.ErrInvalidInput, apierrors.ErrValidation},
	{usersapp.ErrConflict, apierrors.ErrConflict},
	{catalogapp.ErrInvalidInput, apierrors.ErrValidation},
	{catalogapp.ErrForbidden, apierrors.ErrForbidden},
	{catalogports.ErrPricingUnavailable, apierrors.ErrUpstream},
	{ordersapp.ErrInvalidInput, apierrors.ErrValidation},
	{ordersapp.ErrForbidden, apierrors.ErrForbidden},
	{ordersapp.ErrConflict, apierrors.ErrConflict},
	{analyticsapp.ErrInvalidInput, apierrors.ErrValidation},
	{analyticsapp.ErrForbidden, apierrors.ErrForbidden},
}

func familyMapper(err error) (apierrors.ProblemDetail, bool) {
	for _, f := range families {
		if errors.Is(err, f.err) {
			detail := err.Error()
			if f.problem.Status >= 500 {
				detail = fmt.Sprintf("%s, try again later", f.err.Error())
			}
			return f.problem.WithDetail(detail), true
		}
	}
	return apierrors.ProblemDetail{}, false
}
