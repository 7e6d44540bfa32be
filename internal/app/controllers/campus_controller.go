package controllers

import (
	"net/http"

	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/app/services"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// CampusController handles campus operations. All writes are SUPER_ADMIN only.
type CampusController struct {
	campusService services.CampusService
}

// NewCampusController creates a new CampusController
func NewCampusController(campusService services.CampusService) *CampusController {
	return &CampusController{campusService: campusService}
}

// CreateCampus creates a new campus
// @Summary Create campus
// @Tags campuses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CampusRequest true "Campus details"
// @Success 201 {object} dto.APIResponse{data=models.Campus} "Campus created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 409 {object} dto.ErrorResponse "Campus name or code already exists"
// @Router /campuses [post]
func (c *CampusController) CreateCampus(ctx *gin.Context) {
	var req dto.CampusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	campus, err := c.campusService.CreateCampus(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(campus, "Campus created successfully"))
}

// GetCampusByID retrieves a campus
// @Summary Get campus by ID
// @Tags campuses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campus ID"
// @Success 200 {object} dto.APIResponse{data=models.Campus}
// @Failure 400 {object} dto.ErrorResponse "Invalid campus ID"
// @Failure 404 {object} dto.ErrorResponse "Campus not found"
// @Router /campuses/{id} [get]
func (c *CampusController) GetCampusByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Campus")
	if !ok {
		return
	}

	campus, err := c.campusService.GetCampus(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(campus, ""))
}

// ListCampuses lists campuses
// @Summary List campuses
// @Tags campuses
// @Produce json
// @Security BearerAuth
// @Param search query string false "Match name or code"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.Campus}
// @Router /campuses [get]
func (c *CampusController) ListCampuses(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	campuses, total, err := c.campusService.ListCampuses(ctx.Request.Context(), queryString(ctx, "search"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, campuses, total, page, size)
}

// UpdateCampus updates a campus
// @Summary Update campus
// @Tags campuses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campus ID"
// @Param request body dto.CampusRequest true "Campus details"
// @Success 200 {object} dto.APIResponse{data=models.Campus}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Campus not found"
// @Failure 409 {object} dto.ErrorResponse "Campus name or code already exists"
// @Router /campuses/{id} [put]
func (c *CampusController) UpdateCampus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Campus")
	if !ok {
		return
	}
	var req dto.CampusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	campus, err := c.campusService.UpdateCampus(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(campus, "Campus updated successfully"))
}

// DeleteCampus deletes a campus with no departments, staff or students
// @Summary Delete campus
// @Tags campuses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campus ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Campus not found"
// @Failure 409 {object} dto.ErrorResponse "Campus has related records"
// @Router /campuses/{id} [delete]
func (c *CampusController) DeleteCampus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Campus")
	if !ok {
		return
	}

	if err := c.campusService.DeleteCampus(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Campus deleted successfully"))
}
