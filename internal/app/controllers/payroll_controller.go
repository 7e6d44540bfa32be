package controllers

import (
	"net/http"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/app/services"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PayrollController handles salary structures, payroll runs and payslips
type PayrollController struct {
	payrollService services.PayrollService
	logger         zerolog.Logger
}

// NewPayrollController creates a new PayrollController
func NewPayrollController(payrollService services.PayrollService, logger zerolog.Logger) *PayrollController {
	return &PayrollController{
		payrollService: payrollService,
		logger:         logger,
	}
}

// CreateSalaryStructure adds a new salary structure and retires the previous one
// @Summary Create salary structure
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SalaryStructureRequest true "Salary components"
// @Success 201 {object} dto.APIResponse{data=models.SalaryStructure}
// @Failure 400 {object} dto.ErrorResponse "Negative amounts or invalid date"
// @Failure 404 {object} dto.ErrorResponse "Employee not found"
// @Router /payroll/salary-structures [post]
func (c *PayrollController) CreateSalaryStructure(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.SalaryStructureRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	structure, err := c.payrollService.CreateSalaryStructure(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(structure, "Salary structure created"))
}

// GetSalaryStructure retrieves a salary structure
// @Summary Get salary structure
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param id path int true "Salary structure ID"
// @Success 200 {object} dto.APIResponse{data=models.SalaryStructure}
// @Failure 404 {object} dto.ErrorResponse "Salary structure not found"
// @Router /payroll/salary-structures/{id} [get]
func (c *PayrollController) GetSalaryStructure(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Salary structure")
	if !ok {
		return
	}

	structure, err := c.payrollService.GetSalaryStructure(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(structure, ""))
}

// ListSalaryStructures lists salary structures, newest first
// @Summary List salary structures
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param employeeId query int false "Filter by employee"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.SalaryStructure}
// @Router /payroll/salary-structures [get]
func (c *PayrollController) ListSalaryStructures(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	employeeID, ok := queryInt64(ctx, "employeeId")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	structures, total, err := c.payrollService.ListSalaryStructures(ctx.Request.Context(), actor, employeeID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, structures, total, page, size)
}

// ProcessPayroll computes one employee's salary for a period
// @Summary Process payroll
// @Description Pro-rates earnings by the attendance ratio, withholds monthly income tax and stores a PENDING payroll
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProcessPayrollRequest true "Employee and period"
// @Success 201 {object} dto.APIResponse{data=models.Payroll}
// @Failure 400 {object} dto.ErrorResponse "No active salary structure or invalid period"
// @Failure 409 {object} dto.ErrorResponse "Salary already processed for this period"
// @Router /payroll/process [post]
func (c *PayrollController) ProcessPayroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.ProcessPayrollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	payroll, err := c.payrollService.ProcessPayroll(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(payroll, "Payroll processed"))
}

// BulkProcessPayroll processes every payable employee for a period
// @Summary Bulk process payroll
// @Description Employees already processed, without a salary structure or not yet joined are skipped. Individual failures do not stop the run.
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkProcessPayrollRequest true "Period and optional campus"
// @Success 200 {object} dto.APIResponse{data=dto.BulkProcessResult}
// @Failure 400 {object} dto.ErrorResponse "Invalid period"
// @Router /payroll/process-bulk [post]
func (c *PayrollController) BulkProcessPayroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.BulkProcessPayrollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.payrollService.BulkProcessPayroll(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("period", req.Period).
		Int("processed", len(result.Processed)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Msg("Bulk payroll run finished")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Payroll run finished"))
}

// GetPayroll retrieves a payroll record
// @Summary Get payroll
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payroll ID"
// @Success 200 {object} dto.APIResponse{data=models.Payroll}
// @Failure 404 {object} dto.ErrorResponse "Payroll not found"
// @Router /payroll/{id} [get]
func (c *PayrollController) GetPayroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Payroll")
	if !ok {
		return
	}

	payroll, err := c.payrollService.GetPayroll(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(payroll, ""))
}

// ListPayrolls lists payroll records
// @Summary List payrolls
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param employeeId query int false "Filter by employee"
// @Param campusId query int false "Filter by campus (SUPER_ADMIN)"
// @Param period query string false "Month as YYYY-MM"
// @Param status query string false "PENDING, APPROVED, PAID or REJECTED"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.Payroll}
// @Router /payroll [get]
func (c *PayrollController) ListPayrolls(ctx *gin.Context) {
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
	filter := dto.PayrollFilter{
		EmployeeID: employeeID,
		CampusID:   campusID,
		Period:     queryString(ctx, "period"),
		Status:     queryEnum[models.PayrollStatus](ctx, "status"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	payrolls, total, err := c.payrollService.ListPayrolls(ctx.Request.Context(), actor, filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, payrolls, total, page, size)
}

// ApprovePayroll approves a PENDING payroll
// @Summary Approve payroll
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payroll ID"
// @Success 200 {object} dto.APIResponse{data=models.Payroll}
// @Failure 409 {object} dto.ErrorResponse "Payroll is not PENDING"
// @Router /payroll/{id}/approve [post]
func (c *PayrollController) ApprovePayroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Payroll")
	if !ok {
		return
	}

	payroll, err := c.payrollService.ApprovePayroll(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(payroll, "Payroll approved"))
}

// RejectPayroll rejects a PENDING payroll so it can be deleted and reprocessed
// @Summary Reject payroll
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payroll ID"
// @Param request body dto.RejectPayrollRequest true "Reason"
// @Success 200 {object} dto.APIResponse{data=models.Payroll}
// @Failure 409 {object} dto.ErrorResponse "Payroll is not PENDING"
// @Router /payroll/{id}/reject [post]
func (c *PayrollController) RejectPayroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Payroll")
	if !ok {
		return
	}
	var req dto.RejectPayrollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	payroll, err := c.payrollService.RejectPayroll(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(payroll, "Payroll rejected"))
}

// PayPayroll marks an APPROVED payroll as paid and emails the payslip
// @Summary Pay payroll
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payroll ID"
// @Param request body dto.PayPayrollRequest true "Payment details"
// @Success 200 {object} dto.APIResponse{data=models.Payroll}
// @Failure 400 {object} dto.ErrorResponse "Reference required for non-cash payments"
// @Failure 409 {object} dto.ErrorResponse "Payroll is not APPROVED"
// @Router /payroll/{id}/pay [post]
func (c *PayrollController) PayPayroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Payroll")
	if !ok {
		return
	}
	var req dto.PayPayrollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	payroll, err := c.payrollService.PayPayroll(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(payroll, "Payroll paid"))
}

// DeletePayroll deletes a REJECTED payroll
// @Summary Delete payroll
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payroll ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Only rejected payrolls can be deleted"
// @Router /payroll/{id} [delete]
func (c *PayrollController) DeletePayroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Payroll")
	if !ok {
		return
	}

	if err := c.payrollService.DeletePayroll(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Payroll deleted"))
}

// GetPayslip returns the itemized payslip for a payroll
// @Summary Get payslip
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payroll ID"
// @Success 200 {object} dto.APIResponse{data=dto.PayslipResponse}
// @Failure 404 {object} dto.ErrorResponse "Payroll not found"
// @Router /payroll/{id}/payslip [get]
func (c *PayrollController) GetPayslip(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Payroll")
	if !ok {
		return
	}

	payslip, err := c.payrollService.GetPayslip(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(payslip, ""))
}

// CalculateTax previews the annual and monthly tax for an income
// @Summary Calculate income tax
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TaxCalculationRequest true "Annual taxable income"
// @Success 200 {object} dto.APIResponse{data=dto.TaxCalculationResponse}
// @Failure 400 {object} dto.ErrorResponse "Negative income"
// @Router /payroll/tax/calculate [post]
func (c *PayrollController) CalculateTax(ctx *gin.Context) {
	var req dto.TaxCalculationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if req.AnnualIncome.LessThan(decimal.Zero) {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Annual income cannot be negative").
			WithField("annualIncome")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.payrollService.CalculateTax(req.AnnualIncome)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
