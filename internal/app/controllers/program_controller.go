package controllers

import (
	"net/http"

	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/app/services"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// ProgramController handles degree program operations
type ProgramController struct {
	programService services.ProgramService
}

// NewProgramController creates a new ProgramController
func NewProgramController(programService services.ProgramService) *ProgramController {
	return &ProgramController{programService: programService}
}

// CreateProgram creates a program under a department
// @Summary Create program
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProgramRequest true "Program details"
// @Success 201 {object} dto.APIResponse{data=models.Program}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Department outside the caller's campus"
// @Failure 409 {object} dto.ErrorResponse "Program code already exists"
// @Router /programs [post]
func (c *ProgramController) CreateProgram(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.ProgramRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	program, err := c.programService.CreateProgram(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(program, "Program created successfully"))
}

// GetProgramByID retrieves a program
// @Summary Get program by ID
// @Tags programs
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=models.Program}
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /programs/{id} [get]
func (c *ProgramController) GetProgramByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Program")
	if !ok {
		return
	}

	program, err := c.programService.GetProgram(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(program, ""))
}

// ListPrograms lists programs. Public so applicants can pick one.
// @Summary List programs
// @Tags programs
// @Produce json
// @Param campusId query int false "Filter by campus"
// @Param departmentId query int false "Filter by department"
// @Param active query bool false "Only active programs"
// @Param search query string false "Match name or code"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.Program}
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameter"
// @Router /programs [get]
func (c *ProgramController) ListPrograms(ctx *gin.Context) {
	campusID, ok := queryInt64(ctx, "campusId")
	if !ok {
		return
	}
	departmentID, ok := queryInt64(ctx, "departmentId")
	if !ok {
		return
	}
	active, ok := queryBool(ctx, "active")
	if !ok {
		return
	}
	filter := dto.ProgramFilter{
		CampusID:     campusID,
		DepartmentID: departmentID,
		IsActive:     active,
		Search:       queryString(ctx, "search"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	programs, total, err := c.programService.ListPrograms(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, programs, total, page, size)
}

// UpdateProgram updates a program
// @Summary Update program
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Param request body dto.ProgramRequest true "Program details"
// @Success 200 {object} dto.APIResponse{data=models.Program}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /programs/{id} [put]
func (c *ProgramController) UpdateProgram(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Program")
	if !ok {
		return
	}
	var req dto.ProgramRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	program, err := c.programService.UpdateProgram(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(program, "Program updated successfully"))
}

// DeleteProgram deletes a program with no applications
// @Summary Delete program
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 409 {object} dto.ErrorResponse "Program has applications"
// @Router /programs/{id} [delete]
func (c *ProgramController) DeleteProgram(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Program")
	if !ok {
		return
	}

	if err := c.programService.DeleteProgram(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Program deleted successfully"))
}
