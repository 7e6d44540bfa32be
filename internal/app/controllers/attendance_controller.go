package controllers

import (
	"net/http"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/app/services"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// AttendanceController handles staff attendance
type AttendanceController struct {
	attendanceService services.AttendanceService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendanceService: attendanceService}
}

// MarkAttendance records or replaces one employee's mark for a day
// @Summary Mark attendance
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkAttendanceRequest true "Attendance mark"
// @Success 200 {object} dto.APIResponse{data=models.AttendanceRecord}
// @Failure 400 {object} dto.ErrorResponse "Invalid status, date or times"
// @Failure 404 {object} dto.ErrorResponse "Employee not found"
// @Router /attendance [post]
func (c *AttendanceController) MarkAttendance(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	record, err := c.attendanceService.MarkAttendance(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(record, "Attendance marked"))
}

// BulkMarkAttendance marks several employees for one day in a single transaction
// @Summary Bulk mark attendance
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkAttendanceRequest true "Day and entries"
// @Success 200 {object} dto.APIResponse{data=[]models.AttendanceRecord}
// @Failure 400 {object} dto.ErrorResponse "Invalid entries"
// @Router /attendance/bulk [post]
func (c *AttendanceController) BulkMarkAttendance(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.BulkAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	records, err := c.attendanceService.BulkMarkAttendance(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(records, "Attendance marked"))
}

// ListAttendance lists attendance marks
// @Summary List attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param employeeId query int false "Filter by employee"
// @Param campusId query int false "Filter by campus (SUPER_ADMIN)"
// @Param period query string false "Month as YYYY-MM"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.AttendanceRecord}
// @Router /attendance [get]
func (c *AttendanceController) ListAttendance(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	employeeID, ok := queryInt64(ctx, "employeeId")
	if !ok {
		return
	}
	campusID, ok := queryInt64(ctx, "campusId")
	if !ok {
		return
	}
	filter := dto.AttendanceFilter{
		EmployeeID: employeeID,
		CampusID:   campusID,
		Period:     queryString(ctx, "period"),
		Status:     queryEnum[models.AttendanceStatus](ctx, "status"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	records, total, err := c.attendanceService.ListAttendance(ctx.Request.Context(), actor, filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, records, total, page, size)
}

// GetSummary reports an employee's month and the resulting pay ratio
// @Summary Monthly attendance summary
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param employeeId query int true "Employee ID"
// @Param period query string true "Month as YYYY-MM"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceSummaryResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid period"
// @Failure 404 {object} dto.ErrorResponse "Employee not found"
// @Router /attendance/summary [get]
func (c *AttendanceController) GetSummary(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	employeeID, ok := queryInt64(ctx, "employeeId")
	if !ok {
		return
	}
	if employeeID == nil {
		invalidQuery(ctx, "employeeId", "employeeId is required")
		return
	}

	summary, err := c.attendanceService.GetSummary(ctx.Request.Context(), actor, *employeeID, ctx.Query("period"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewAttendanceSummaryResponse(summary), ""))
}

// DeleteAttendance removes a mark
// @Summary Delete attendance mark
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attendance record ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /attendance/{id} [delete]
func (c *AttendanceController) DeleteAttendance(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Attendance record")
	if !ok {
		return
	}

	if err := c.attendanceService.DeleteAttendance(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Attendance record deleted"))
}
