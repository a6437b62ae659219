package handler

import (
	"net/http"

	"tariffengine/internal/middleware"
	"tariffengine/internal/service"
	"tariffengine/pkg/pagination"
	"tariffengine/pkg/response"

	"github.com/gin-gonic/gin"
)

type ShippingRateHandler struct {
	shippingService service.ShippingRateService
}

func NewShippingRateHandler(shippingService service.ShippingRateService) *ShippingRateHandler {
	return &ShippingRateHandler{shippingService: shippingService}
}

func (h *ShippingRateHandler) RegisterRoutes(router *gin.RouterGroup) {
	rates := router.Group("/api/shipping-rates")
	{
		rates.GET("", middleware.RequireRole("admin", "analyst"), h.ListShippingRates)
		rates.POST("", middleware.RequireRole("admin"), h.CreateShippingRate)
		rates.PUT("/:id", middleware.RequireRole("admin"), h.UpdateShippingRate)
		rates.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteShippingRate)
	}
}

// ListShippingRates returns the paginated shipping-rate table
// @Summary      List shipping rates
// @Tags         shipping-rates
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/shipping-rates [get]
func (h *ShippingRateHandler) ListShippingRates(c *gin.Context) {
	params := pagination.Parse(c)

	rates, total, err := h.shippingService.ListShippingRates(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch shipping rates: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, rates, params.Page, params.Limit, total))
}

// CreateShippingRate registers rates for a country pair
// @Summary      Create shipping rate
// @Tags         shipping-rates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.ShippingRateRequest  true  "Shipping rate payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/shipping-rates [post]
func (h *ShippingRateHandler) CreateShippingRate(c *gin.Context) {
	var req service.ShippingRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rate, err := h.shippingService.CreateShippingRate(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rate))
}

// UpdateShippingRate replaces the rates for a country pair
// @Summary      Update shipping rate
// @Tags         shipping-rates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  int                          true  "Shipping rate ID"
// @Param        payload  body  service.ShippingRateRequest  true  "Shipping rate payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/shipping-rates/{id} [put]
func (h *ShippingRateHandler) UpdateShippingRate(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}

	var req service.ShippingRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rate, err := h.shippingService.UpdateShippingRate(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rate))
}

// DeleteShippingRate removes a country pair's rates
// @Summary      Delete shipping rate
// @Tags         shipping-rates
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "Shipping rate ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/shipping-rates/{id} [delete]
func (h *ShippingRateHandler) DeleteShippingRate(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}

	if err := h.shippingService.DeleteShippingRate(c.Request.Context(), id, currentUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Shipping rate deleted successfully"))
}
