package handler

import (
	"errors"
	"net/http"

	"tariffengine/internal/middleware"
	"tariffengine/internal/service"
	"tariffengine/pkg/pagination"
	"tariffengine/pkg/response"

	"github.com/gin-gonic/gin"
)

// TariffHandler exposes the landed-cost calculation endpoint plus the
// operational endpoints around it (history, cache clearing).
type TariffHandler struct {
	calculatorService service.CalculatorService
	historyService    service.SearchHistoryService
	rateService       service.TariffRateCRUDService
}

func NewTariffHandler(
	calculatorService service.CalculatorService,
	historyService service.SearchHistoryService,
	rateService service.TariffRateCRUDService,
) *TariffHandler {
	return &TariffHandler{
		calculatorService: calculatorService,
		historyService:    historyService,
		rateService:       rateService,
	}
}

func (h *TariffHandler) RegisterRoutes(router *gin.RouterGroup) {
	tariff := router.Group("/api/tariff")
	{
		// Calculation is public; catalogue management is not.
		tariff.POST("/calculate", h.Calculate)
		tariff.GET("/history", middleware.RequireRole("admin", "analyst"), h.GetHistory)
		tariff.POST("/cache/clear", middleware.RequireRole("admin"), h.ClearCache)
	}
}

// Calculate runs the full landed-cost pipeline for one consignment
// @Summary      Calculate landed cost
// @Description  Computes customs value, duties, VAT/GST, shipping and total landed cost for a consignment
// @Tags         tariff
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CalculationRequest  true  "Calculation input"
// @Success      200      {object}  response.Response{data=service.CalculationResult}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/tariff/calculate [post]
func (h *TariffHandler) Calculate(c *gin.Context) {
	var req service.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.calculatorService.Calculate(c.Request.Context(), &req)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, validationErr.Error()))
			return
		}
		var noRouteErr *service.NoRouteError
		if errors.As(err, &noRouteErr) {
			c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, noRouteErr.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetHistory lists past calculations, newest first
// @Summary      Get calculation history
// @Tags         tariff
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/tariff/history [get]
func (h *TariffHandler) GetHistory(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.historyService.ListSearchHistory(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch history: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, entries, params.Page, params.Limit, total))
}

// ClearCache drops all cached resolved rates
// @Summary      Clear the rate cache
// @Description  Forces subsequent calculations to re-resolve rates from the store
// @Tags         tariff
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/tariff/cache/clear [post]
func (h *TariffHandler) ClearCache(c *gin.Context) {
	h.rateService.ClearRateCache(c.Request.Context(), currentUserID(c))

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Rate cache cleared"))
}
