package ventrestserver

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogports "github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductAPI wires HTTP transport with the catalog bounded context.
type ProductAPI struct {
	service catalogports.Service
}

// NewProductAPI creates a ProductAPI backed by the provided service.
func NewProductAPI(service catalogports.Service) ProductAPI {
	return ProductAPI{service: service}
}

// Get /api/products
// Lists active products filtered by category, search, price range and supplier
func (api *ProductAPI) ListProducts(c *gin.Context) {
	input := catalogports.ListProductsInput{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	var ok bool
	if input.MinPrice, ok = parseDecimalQuery(c, "minPrice"); !ok {
		return
	}
	if input.MaxPrice, ok = parseDecimalQuery(c, "maxPrice"); !ok {
		return
	}
	if raw := c.Query("supplier"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		input.SupplierID = id
	}
	products, err := api.service.List(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromProducts(products))
}

// Get /api/products/my-products
func (api *ProductAPI) ListMyProducts(c *gin.Context) {
	products, err := api.service.ListMine(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromProducts(products))
}

// Get /api/products/my-products/export
// Downloads the caller's catalog as a spreadsheet
func (api *ProductAPI) ExportMyProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := api.service.ExportMine(c.Request.Context(), callerFrom(c), &buf); err != nil {
		respondServiceError(c, err)
		return
	}
	filename := "products-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Get /api/products/:id
func (api *ProductAPI) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := api.service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromProduct(product))
}

// Post /api/products
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	product, err := api.service.Create(c.Request.Context(), callerFrom(c), catalogports.CreateProductInput{
		ProductMutationInput: payload.toMutation(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromProduct(product))
}

// Put /api/products/:id
func (api *ProductAPI) UpdateProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var payload ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	product, err := api.service.Update(c.Request.Context(), callerFrom(c), catalogports.UpdateProductInput{
		ID:                   id,
		ProductMutationInput: payload.toMutation(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromProduct(product))
}

// Delete /api/products/:id
func (api *ProductAPI) DeleteProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /api/products/:id/price-suggestion
// Asks the pricing model for a suggested price
func (api *ProductAPI) SuggestPrice(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var payload PriceSuggestionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	suggestion, err := api.service.SuggestPrice(c.Request.Context(), callerFrom(c), catalogports.PriceSuggestionInput{
		ProductID:  id,
		PriceQuery: catalogports.PriceQuery(payload),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromSuggestion(suggestion))
}
