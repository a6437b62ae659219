package handler

import (
	"net/http"

	"tariffengine/internal/middleware"
	"tariffengine/internal/service"
	"tariffengine/pkg/pagination"
	"tariffengine/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/products")
	{
		// Lookups are public so calculation clients can resolve descriptions.
		products.GET("", h.ListProducts)
		products.GET("/:hsCode", h.GetProduct)
		products.POST("", middleware.RequireRole("admin"), h.CreateProduct)
		products.DELETE("/:hsCode", middleware.RequireRole("admin"), h.DeleteProduct)
	}
}

// ListProducts returns the paginated HS-code reference table
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := pagination.Parse(c)

	products, total, err := h.productService.ListProducts(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch products: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, products, params.Page, params.Limit, total))
}

// GetProduct fetches a product by HS code
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        hsCode  path  string  true  "HS code"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/products/{hsCode} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	hsCode := c.Param("hsCode")

	product, found, err := h.productService.GetProduct(c.Request.Context(), hsCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch product: "+err.Error()))
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "No product for HS code "+hsCode))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// CreateProduct adds an HS-code reference entry
// @Summary      Create product
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.ProductRequest  true  "Product payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// DeleteProduct removes an HS-code reference entry
// @Summary      Delete product
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        hsCode  path  string  true  "HS code"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/products/{hsCode} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	hsCode := c.Param("hsCode")

	if err := h.productService.DeleteProduct(c.Request.Context(), hsCode); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Product deleted successfully"))
}
