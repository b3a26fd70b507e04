package ventrestserver

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	analyticsdomain "github.com/Apurer/ventrest-api/internal/domains/analytics/domain"
)

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, fmt.Errorf("%s must be a uuid", name))
		return uuid.Nil, false
	}
	return id, true
}

func parseDecimalQuery(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		respondBadRequest(c, fmt.Errorf("%s must be a number", name))
		return nil, false
	}
	return &value, true
}

// parseLimitQuery returns 0, the service default, only when limit is absent.
func parseLimitQuery(c *gin.Context) (int, bool) {
	raw, present := c.GetQuery("limit")
	if !present {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 || value > analyticsdomain.MaxLimit {
		respondBadRequest(c, analyticsdomain.ErrInvalidLimit)
		return 0, false
	}
	return value, true
}
