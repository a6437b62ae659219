package handler

import (
	"net/http"

	"tariffengine/internal/middleware"
	"tariffengine/internal/service"
	"tariffengine/pkg/pagination"
	"tariffengine/pkg/response"

	"github.com/gin-gonic/gin"
)

type TradeAgreementHandler struct {
	agreementService service.TradeAgreementService
}

func NewTradeAgreementHandler(agreementService service.TradeAgreementService) *TradeAgreementHandler {
	return &TradeAgreementHandler{agreementService: agreementService}
}

func (h *TradeAgreementHandler) RegisterRoutes(router *gin.RouterGroup) {
	agreements := router.Group("/api/trade-agreements")
	{
		agreements.GET("", middleware.RequireRole("admin", "analyst"), h.ListAgreements)
		agreements.GET("/:id", middleware.RequireRole("admin", "analyst"), h.GetAgreement)
		agreements.POST("", middleware.RequireRole("admin"), h.CreateAgreement)
		agreements.PUT("/:id", middleware.RequireRole("admin"), h.UpdateAgreement)
		agreements.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteAgreement)
		agreements.POST("/:id/rates", middleware.RequireRole("admin"), h.AddPreferentialRate)
		agreements.DELETE("/:id/rates/:rateId", middleware.RequireRole("admin"), h.RemovePreferentialRate)
	}
}

// ListAgreements returns paginated trade agreements
// @Summary      List trade agreements
// @Tags         trade-agreements
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/trade-agreements [get]
func (h *TradeAgreementHandler) ListAgreements(c *gin.Context) {
	params := pagination.Parse(c)

	agreements, total, err := h.agreementService.ListAgreements(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch trade agreements: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, agreements, params.Page, params.Limit, total))
}

// GetAgreement fetches an agreement together with its preferential rates
// @Summary      Get trade agreement
// @Tags         trade-agreements
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "Agreement ID"
// @Success      200  {object}  response.Response{data=service.TradeAgreementResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/trade-agreements/{id} [get]
func (h *TradeAgreementHandler) GetAgreement(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}

	agreement, err := h.agreementService.GetAgreement(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, agreement))
}

// CreateAgreement registers a trade agreement
// @Summary      Create trade agreement
// @Tags         trade-agreements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.TradeAgreementRequest  true  "Agreement payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/trade-agreements [post]
func (h *TradeAgreementHandler) CreateAgreement(c *gin.Context) {
	var req service.TradeAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	agreement, err := h.agreementService.CreateAgreement(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, agreement))
}

// UpdateAgreement updates an agreement's name and validity window
// @Summary      Update trade agreement
// @Tags         trade-agreements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  int                            true  "Agreement ID"
// @Param        payload  body  service.TradeAgreementRequest  true  "Agreement payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/trade-agreements/{id} [put]
func (h *TradeAgreementHandler) UpdateAgreement(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}

	var req service.TradeAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	agreement, err := h.agreementService.UpdateAgreement(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, agreement))
}

// DeleteAgreement removes an agreement and all of its preferential rates
// @Summary      Delete trade agreement
// @Tags         trade-agreements
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "Agreement ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/trade-agreements/{id} [delete]
func (h *TradeAgreementHandler) DeleteAgreement(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}

	if err := h.agreementService.DeleteAgreement(c.Request.Context(), id, currentUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Trade agreement deleted successfully"))
}

// AddPreferentialRate attaches a preferential rate to an agreement
// @Summary      Add preferential rate
// @Tags         trade-agreements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  int                              true  "Agreement ID"
// @Param        payload  body  service.PreferentialRateRequest  true  "Preferential rate payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/trade-agreements/{id}/rates [post]
func (h *TradeAgreementHandler) AddPreferentialRate(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}

	var req service.PreferentialRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rate, err := h.agreementService.AddPreferentialRate(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rate))
}

// RemovePreferentialRate detaches a preferential rate from an agreement
// @Summary      Remove preferential rate
// @Tags         trade-agreements
// @Security     BearerAuth
// @Produce      json
// @Param        id      path  int  true  "Agreement ID"
// @Param        rateId  path  int  true  "Preferential rate ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/trade-agreements/{id}/rates/{rateId} [delete]
func (h *TradeAgreementHandler) RemovePreferentialRate(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}
	rateID, err := parseUintParam(c, "rateId")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid rate id"))
		return
	}

	if err := h.agreementService.RemovePreferentialRate(c.Request.Context(), id, rateID, currentUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Preferential rate removed successfully"))
}
