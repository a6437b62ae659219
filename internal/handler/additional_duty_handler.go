package handler

import (
	"net/http"

	"tariffengine/internal/middleware"
	"tariffengine/internal/service"
	"tariffengine/pkg/pagination"
	"tariffengine/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdditionalDutyHandler struct {
	dutyService service.AdditionalDutyService
}

func NewAdditionalDutyHandler(dutyService service.AdditionalDutyService) *AdditionalDutyHandler {
	return &AdditionalDutyHandler{dutyService: dutyService}
}

func (h *AdditionalDutyHandler) RegisterRoutes(router *gin.RouterGroup) {
	duties := router.Group("/api/additional-duties")
	{
		duties.GET("", middleware.RequireRole("admin", "analyst"), h.ListAdditionalDuties)
		duties.POST("", middleware.RequireRole("admin"), h.CreateAdditionalDuty)
		duties.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteAdditionalDuty)
	}
}

// ListAdditionalDuties returns the paginated remedial-duty schedules
// @Summary      List additional duties
// @Tags         additional-duties
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/additional-duties [get]
func (h *AdditionalDutyHandler) ListAdditionalDuties(c *gin.Context) {
	params := pagination.Parse(c)

	duties, total, err := h.dutyService.ListAdditionalDuties(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch additional duties: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, duties, params.Page, params.Limit, total))
}

// CreateAdditionalDuty registers a remedial-duty schedule for a trade lane
// @Summary      Create additional duty
// @Tags         additional-duties
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.AdditionalDutyRequest  true  "Additional duty payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/additional-duties [post]
func (h *AdditionalDutyHandler) CreateAdditionalDuty(c *gin.Context) {
	var req service.AdditionalDutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	duty, err := h.dutyService.CreateAdditionalDuty(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, duty))
}

// DeleteAdditionalDuty removes a remedial-duty schedule
// @Summary      Delete additional duty
// @Tags         additional-duties
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "Additional duty ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/additional-duties/{id} [delete]
func (h *AdditionalDutyHandler) DeleteAdditionalDuty(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return
	}

	if err := h.dutyService.DeleteAdditionalDuty(c.Request.Context(), id, currentUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Additional duty deleted successfully"))
}
