// Package ventrestserver exposes the marketplace over HTTP+JSON.
package ventrestserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI, relative to /api.
	Pattern string
	// Public routes skip bearer authentication.
	Public bool
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the API implementations.
type ApiHandleFunctions struct {
	AuthAPI      AuthAPI
	ProductAPI   ProductAPI
	OrderAPI     OrderAPI
	AnalyticsAPI AnalyticsAPI
}

// RouterOptions carries the cross-cutting pieces of the router.
type RouterOptions struct {
	Authenticator Authenticator
	// Middleware runs on every request before routing.
	Middleware []gin.HandlerFunc
	// Metrics, when set, is served at GET /metrics.
	Metrics http.Handler
	// Ready reports dependency health for GET /healthz.
	Ready func(ctx context.Context) error
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	return NewRouterWithGinEngine(gin.New(), handleFunctions, opts)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	router.Use(gin.Recovery())
	router.Use(opts.Middleware...)

	router.GET("/healthz", healthHandler(opts.Ready))
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	api := router.Group("/api")
	requireAuth := RequireAuth(opts.Authenticator)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{route.HandlerFunc}
		if !route.Public {
			handlers = append([]gin.HandlerFunc{requireAuth}, handlers...)
		}
		api.Handle(route.Method, route.Pattern, handlers...)
	}
	router.NoRoute(func(c *gin.Context) {
		respondNotFound(c, "route", c.Request.URL.Path)
	})
	return router
}

// DefaultHandleFunc answers routes without an implementation.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func healthHandler(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			if err := ready(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Register", http.MethodPost, "/auth/register", true, handleFunctions.AuthAPI.Register},
		{"Login", http.MethodPost, "/auth/login", true, handleFunctions.AuthAPI.Login},
		{"Logout", http.MethodPost, "/auth/logout", false, handleFunctions.AuthAPI.Logout},
		{"Me", http.MethodGet, "/auth/me", false, handleFunctions.AuthAPI.Me},
		{"UpdateProfile", http.MethodPut, "/auth/profile", false, handleFunctions.AuthAPI.UpdateProfile},
		{"Deactivate", http.MethodDelete, "/auth/me", false, handleFunctions.AuthAPI.Deactivate},

		{"ListProducts", http.MethodGet, "/products", true, handleFunctions.ProductAPI.ListProducts},
		{"ListMyProducts", http.MethodGet, "/products/my-products", false, handleFunctions.ProductAPI.ListMyProducts},
		{"ExportMyProducts", http.MethodGet, "/products/my-products/export", false, handleFunctions.ProductAPI.ExportMyProducts},
		{"GetProduct", http.MethodGet, "/products/:id", true, handleFunctions.ProductAPI.GetProduct},
		{"CreateProduct", http.MethodPost, "/products", false, handleFunctions.ProductAPI.CreateProduct},
		{"UpdateProduct", http.MethodPut, "/products/:id", false, handleFunctions.ProductAPI.UpdateProduct},
		{"DeleteProduct", http.MethodDelete, "/products/:id", false, handleFunctions.ProductAPI.DeleteProduct},
		{"SuggestPrice", http.MethodPost, "/products/:id/price-suggestion", false, handleFunctions.ProductAPI.SuggestPrice},

		{"PlaceOrder", http.MethodPost, "/orders", false, handleFunctions.OrderAPI.PlaceOrder},
		{"Checkout", http.MethodPost, "/orders/checkout", false, handleFunctions.OrderAPI.Checkout},
		{"ListMyOrders", http.MethodGet, "/orders/my-orders", false, handleFunctions.OrderAPI.ListMyOrders},
		{"ListSupplierOrders", http.MethodGet, "/orders/supplier-orders", false, handleFunctions.OrderAPI.ListSupplierOrders},
		{"GetOrder", http.MethodGet, "/orders/:id", false, handleFunctions.OrderAPI.GetOrder},
		{"UpdateOrderStatus", http.MethodPut, "/orders/:id/status", false, handleFunctions.OrderAPI.UpdateStatus},
		{"UpdateOrderPayment", http.MethodPut, "/orders/:id/payment", false, handleFunctions.OrderAPI.UpdatePayment},
		{"ReviewOrder", http.MethodPost, "/orders/:id/review", false, handleFunctions.OrderAPI.Review},

		{"VendorAnalytics", http.MethodGet, "/analytics/vendor", false, handleFunctions.AnalyticsAPI.VendorSummary},
		{"SupplierAnalytics", http.MethodGet, "/analytics/supplier", false, handleFunctions.AnalyticsAPI.SupplierSummary},
	}
}
