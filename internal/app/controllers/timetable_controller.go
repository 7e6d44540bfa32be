package controllers

import (
	"net/http"

	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/app/services"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// TimetableController handles weekly timetable slots
type TimetableController struct {
	timetableService services.TimetableService
}

// NewTimetableController creates a new TimetableController
func NewTimetableController(timetableService services.TimetableService) *TimetableController {
	return &TimetableController{timetableService: timetableService}
}

// CreateEntry adds a slot
// @Summary Create timetable entry
// @Description Rejects slots that overlap an existing slot for the same room or teacher on the same day
// @Tags timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TimetableEntryRequest true "Slot"
// @Success 201 {object} dto.APIResponse{data=models.TimetableEntry}
// @Failure 400 {object} dto.ErrorResponse "Invalid times or department"
// @Failure 409 {object} dto.ErrorResponse "Room or teacher already booked"
// @Router /timetable [post]
func (c *TimetableController) CreateEntry(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.TimetableEntryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	entry, err := c.timetableService.CreateEntry(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(entry, "Timetable entry created"))
}

// GetEntry retrieves a slot
// @Summary Get timetable entry
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} dto.APIResponse{data=models.TimetableEntry}
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Router /timetable/{id} [get]
func (c *TimetableController) GetEntry(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Timetable entry")
	if !ok {
		return
	}

	entry, err := c.timetableService.GetEntry(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(entry, ""))
}

// ListEntries lists slots ordered by day and start time
// @Summary List timetable entries
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param campusId query int false "Filter by campus"
// @Param departmentId query int false "Filter by department"
// @Param programId query int false "Filter by program"
// @Param session query string false "Filter by session"
// @Param section query string false "Filter by section"
// @Param teacherId query int false "Filter by teacher"
// @Param room query string false "Filter by room"
// @Param dayOfWeek query int false "1 (Monday) to 7 (Sunday)"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.TimetableEntry}
// @Router /timetable [get]
func (c *TimetableController) ListEntries(ctx *gin.Context) {
	var filter dto.TimetableFilter
	var ok bool
	if filter.CampusID, ok = queryInt64(ctx, "campusId"); !ok {
		return
	}
	if filter.DepartmentID, ok = queryInt64(ctx, "departmentId"); !ok {
		return
	}
	if filter.ProgramID, ok = queryInt64(ctx, "programId"); !ok {
		return
	}
	if filter.TeacherID, ok = queryInt64(ctx, "teacherId"); !ok {
		return
	}
	if filter.DayOfWeek, ok = queryInt(ctx, "dayOfWeek"); !ok {
		return
	}
	filter.Session = queryString(ctx, "session")
	filter.Section = queryString(ctx, "section")
	filter.Room = queryString(ctx, "room")
	page, size := helpers.ParsePaginationParams(ctx)

	entries, total, err := c.timetableService.ListEntries(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, entries, total, page, size)
}

// UpdateEntry replaces a slot, re-checking conflicts against every other slot
// @Summary Update timetable entry
// @Tags timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Param request body dto.TimetableEntryRequest true "Slot"
// @Success 200 {object} dto.APIResponse{data=models.TimetableEntry}
// @Failure 409 {object} dto.ErrorResponse "Room or teacher already booked"
// @Router /timetable/{id} [put]
func (c *TimetableController) UpdateEntry(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Timetable entry")
	if !ok {
		return
	}
	var req dto.TimetableEntryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	entry, err := c.timetableService.UpdateEntry(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(entry, "Timetable entry updated"))
}

// DeleteEntry removes a slot
// @Summary Delete timetable entry
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Router /timetable/{id} [delete]
func (c *TimetableController) DeleteEntry(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Timetable entry")
	if !ok {
		return
	}

	if err := c.timetableService.DeleteEntry(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Timetable entry deleted"))
}
