package handler

import (
	"net/http"
	"strconv"

	"tariffengine/internal/middleware"
	"tariffengine/internal/service"
	"tariffengine/pkg/pagination"
	"tariffengine/pkg/response"

	"github.com/gin-gonic/gin"
)

type TariffRateHandler struct {
	rateService service.TariffRateCRUDService
}

func NewTariffRateHandler(rateService service.TariffRateCRUDService) *TariffRateHandler {
	return &TariffRateHandler{rateService: rateService}
}

func (h *TariffRateHandler) RegisterRoutes(router *gin.RouterGroup) {
	rates := router.Group("/api/tariff-rates")
	{
		rates.GET("", middleware.RequireRole("admin", "analyst"), h.ListTariffRates)
		rates.GET("/:id", middleware.RequireRole("admin", "analyst"), h.GetTariffRate)
		rates.POST("", middleware.RequireRole("admin"), h.CreateTariffRate)
		rates.PUT("/:id", middleware.RequireRole("admin"), h.UpdateTariffRate)
		rates.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteTariffRate)
	}
}

// ListTariffRates returns the paginated duty-rate catalogue
// @Summary      List tariff rates
// @Tags         tariff-rates
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/tariff-rates [get]
func (h *TariffRateHandler) ListTariffRates(c *gin.Context) {
	params := pagination.Parse(c)

	rates, total, err := h.rateService.ListTariffRates(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch tariff rates: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, rates, params.Page, params.Limit, total))
}

// GetTariffRate fetches a single rate by ID
// @Summary      Get tariff rate
// @Tags         tariff-rates
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "Tariff rate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/tariff-rates/{id} [get]
func (h *TariffRateHandler) GetTariffRate(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}

	rate, err := h.rateService.GetTariffRate(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rate))
}

// CreateTariffRate registers a new duty rate
// @Summary      Create tariff rate
// @Tags         tariff-rates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.TariffRateRequest  true  "Tariff rate payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/tariff-rates [post]
func (h *TariffRateHandler) CreateTariffRate(c *gin.Context) {
	var req service.TariffRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rate, err := h.rateService.CreateTariffRate(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rate))
}

// UpdateTariffRate replaces an existing duty rate
// @Summary      Update tariff rate
// @Tags         tariff-rates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  int                        true  "Tariff rate ID"
// @Param        payload  body  service.TariffRateRequest  true  "Tariff rate payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/tariff-rates/{id} [put]
func (h *TariffRateHandler) UpdateTariffRate(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}

	var req service.TariffRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rate, err := h.rateService.UpdateTariffRate(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rate))
}

// DeleteTariffRate removes a duty rate
// @Summary      Delete tariff rate
// @Tags         tariff-rates
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "Tariff rate ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/tariff-rates/{id} [delete]
func (h *TariffRateHandler) DeleteTariffRate(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}

	if err := h.rateService.DeleteTariffRate(c.Request.Context(), id, currentUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tariff rate deleted successfully"))
}

// --- shared handler helpers ---

func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func currentUserID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)
	return idStr
}
