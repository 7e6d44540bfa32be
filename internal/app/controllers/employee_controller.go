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

// EmployeeController handles HR employee records
type EmployeeController struct {
	employeeService services.EmployeeService
}

// NewEmployeeController creates a new EmployeeController
func NewEmployeeController(employeeService services.EmployeeService) *EmployeeController {
	return &EmployeeController{employeeService: employeeService}
}

// CreateEmployee creates an employee
// @Summary Create employee
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EmployeeRequest true "Employee details"
// @Success 201 {object} dto.APIResponse{data=models.Employee}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 409 {object} dto.ErrorResponse "Employee code or email already exists"
// @Router /employees [post]
func (c *EmployeeController) CreateEmployee(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.EmployeeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	employee, err := c.employeeService.CreateEmployee(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(employee, "Employee created successfully"))
}

// GetEmployeeByID retrieves an employee
// @Summary Get employee
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Success 200 {object} dto.APIResponse{data=models.Employee}
// @Failure 404 {object} dto.ErrorResponse "Employee not found"
// @Router /employees/{id} [get]
func (c *EmployeeController) GetEmployeeByID(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Employee")
	if !ok {
		return
	}

	employee, err := c.employeeService.GetEmployee(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(employee, ""))
}

// ListEmployees lists employees on the caller's campus
// @Summary List employees
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param campusId query int false "Filter by campus (SUPER_ADMIN)"
// @Param departmentId query int false "Filter by department"
// @Param status query string false "ACTIVE, ON_LEAVE or TERMINATED"
// @Param employmentType query string false "Filter by employment type"
// @Param search query string false "Match name, email or code"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.Employee}
// @Router /employees [get]
func (c *EmployeeController) ListEmployees(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	campusID, ok := queryInt64(ctx, "campusId")
	if !ok {
		return
	}
	departmentID, ok := queryInt64(ctx, "departmentId")
	if !ok {
		return
	}
	filter := dto.EmployeeFilter{
		CampusID:       campusID,
		DepartmentID:   departmentID,
		Status:         queryEnum[models.EmployeeStatus](ctx, "status"),
		EmploymentType: queryEnum[models.EmploymentType](ctx, "employmentType"),
		Search:         queryString(ctx, "search"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	employees, total, err := c.employeeService.ListEmployees(ctx.Request.Context(), actor, filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, employees, total, page, size)
}

// UpdateEmployee updates an employee
// @Summary Update employee
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Param request body dto.EmployeeRequest true "Employee details"
// @Success 200 {object} dto.APIResponse{data=models.Employee}
// @Failure 404 {object} dto.ErrorResponse "Employee not found"
// @Router /employees/{id} [put]
func (c *EmployeeController) UpdateEmployee(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Employee")
	if !ok {
		return
	}
	var req dto.EmployeeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	employee, err := c.employeeService.UpdateEmployee(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(employee, "Employee updated successfully"))
}

// DeleteEmployee deletes an employee with no payroll or timetable history
// @Summary Delete employee
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Employee has related records"
// @Router /employees/{id} [delete]
func (c *EmployeeController) DeleteEmployee(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Employee")
	if !ok {
		return
	}

	if err := c.employeeService.DeleteEmployee(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Employee deleted successfully"))
}
