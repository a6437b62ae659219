package handler

import (
	"net/http"

	"tariffengine/internal/middleware"
	"tariffengine/internal/service"
	"tariffengine/pkg/pagination"
	"tariffengine/pkg/response"

	"github.com/gin-gonic/gin"
)

type CountryHandler struct {
	countryService service.CountryService
}

func NewCountryHandler(countryService service.CountryService) *CountryHandler {
	return &CountryHandler{countryService: countryService}
}

func (h *CountryHandler) RegisterRoutes(router *gin.RouterGroup) {
	countries := router.Group("/api/countries")
	{
		// Listing is public so calculation clients can populate pickers.
		countries.GET("", h.ListCountries)
		countries.GET("/:code/profile", middleware.RequireRole("admin", "analyst"), h.GetCountryProfile)
		countries.POST("", middleware.RequireRole("admin"), h.CreateCountry)
		countries.PUT("/:code/profile", middleware.RequireRole("admin"), h.UpsertCountryProfile)
	}
}

// ListCountries returns the paginated country reference table
// @Summary      List countries
// @Tags         countries
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/countries [get]
func (h *CountryHandler) ListCountries(c *gin.Context) {
	params := pagination.Parse(c)

	countries, total, err := h.countryService.ListCountries(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch countries: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, countries, params.Page, params.Limit, total))
}

// GetCountryProfile returns a country's calculation policy
// @Summary      Get country profile
// @Tags         countries
// @Security     BearerAuth
// @Produce      json
// @Param        code  path  string  true  "ISO alpha-2 country code"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/countries/{code}/profile [get]
func (h *CountryHandler) GetCountryProfile(c *gin.Context) {
	code := c.Param("code")

	profile, found, err := h.countryService.GetCountryProfile(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch country profile: "+err.Error()))
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "No profile for country "+code))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// CreateCountry adds a country to the reference table
// @Summary      Create country
// @Tags         countries
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CountryRequest  true  "Country payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/countries [post]
func (h *CountryHandler) CreateCountry(c *gin.Context) {
	var req service.CountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	country, err := h.countryService.CreateCountry(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, country))
}

// UpsertCountryProfile creates or replaces a country's calculation policy
// @Summary      Upsert country profile
// @Tags         countries
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        code     path  string                         true  "ISO alpha-2 country code"
// @Param        payload  body  service.CountryProfileRequest  true  "Profile payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/countries/{code}/profile [put]
func (h *CountryHandler) UpsertCountryProfile(c *gin.Context) {
	code := c.Param("code")

	var req service.CountryProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.countryService.UpsertCountryProfile(c.Request.Context(), code, req, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}
