package ventrestserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	analyticsports "github.com/Apurer/ventrest-api/internal/domains/analytics/ports"
)

// AnalyticsAPI serves the vendor and supplier dashboards.
type AnalyticsAPI struct {
	service analyticsports.Service
}

// NewAnalyticsAPI creates an AnalyticsAPI backed by the provided service.
func NewAnalyticsAPI(service analyticsports.Service) AnalyticsAPI {
	return AnalyticsAPI{service: service}
}

// Get /api/analytics/vendor
func (api *AnalyticsAPI) VendorSummary(c *gin.Context) {
	limit, ok := parseLimitQuery(c)
	if !ok {
		return
	}
	summary, err := api.service.VendorSummary(c.Request.Context(), callerFrom(c), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromVendorSummary(summary))
}

// Get /api/analytics/supplier
func (api *AnalyticsAPI) SupplierSummary(c *gin.Context) {
	limit, ok := parseLimitQuery(c)
	if !ok {
		return
	}
	summary, err := api.service.SupplierSummary(c.Request.Context(), callerFrom(c), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromSupplierSummary(summary))
}
