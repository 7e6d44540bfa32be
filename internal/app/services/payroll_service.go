package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/email"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/campusly/campusly/internal/pkg/tax"
	"github.com/campusly/campusly/internal/pkg/validation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Reasons reported for employees skipped by bulk processing
const (
	SkipAlreadyProcessed    = "already processed for this period"
	SkipNoSalaryStructure   = "no active salary structure"
	SkipStructureNotInForce = "salary structure starts after the period"
	SkipNotJoined           = "joined after the period ended"
)

// PayrollService processes salaries and runs the approval workflow
type PayrollService interface {
	CreateSalaryStructure(ctx context.Context, actor authz.Actor, req *dto.SalaryStructureRequest) (*models.SalaryStructure, error)
	GetSalaryStructure(ctx context.Context, actor authz.Actor, id int64) (*models.SalaryStructure, error)
	ListSalaryStructures(ctx context.Context, actor authz.Actor, employeeID *int64, page, size int) ([]*models.SalaryStructure, int64, error)

	ProcessPayroll(ctx context.Context, actor authz.Actor, req *dto.ProcessPayrollRequest) (*models.Payroll, error)
	BulkProcessPayroll(ctx context.Context, actor authz.Actor, req *dto.BulkProcessPayrollRequest) (*dto.BulkProcessResult, error)
	ProcessPeriod(ctx context.Context, period string, campusID *int64, processedBy *int64) (*dto.BulkProcessResult, error)

	GetPayroll(ctx context.Context, actor authz.Actor, id int64) (*models.Payroll, error)
	ListPayrolls(ctx context.Context, actor authz.Actor, filter dto.PayrollFilter, page, size int) ([]*models.Payroll, int64, error)
	ApprovePayroll(ctx context.Context, actor authz.Actor, id int64) (*models.Payroll, error)
	RejectPayroll(ctx context.Context, actor authz.Actor, id int64, req *dto.RejectPayrollRequest) (*models.Payroll, error)
	PayPayroll(ctx context.Context, actor authz.Actor, id int64, req *dto.PayPayrollRequest) (*models.Payroll, error)
	DeletePayroll(ctx context.Context, actor authz.Actor, id int64) error
	GetPayslip(ctx context.Context, actor authz.Actor, id int64) (*dto.PayslipResponse, error)

	CalculateTax(annualIncome decimal.Decimal) (*dto.TaxCalculationResponse, error)
}

// SalaryStructureStore persists salary structures
type SalaryStructureStore interface {
	CreateActive(ctx context.Context, s *models.SalaryStructure) error
	GetByID(ctx context.Context, id int64) (*models.SalaryStructure, error)
	GetActive(ctx context.Context, employeeID int64) (*models.SalaryStructure, error)
	List(ctx context.Context, employeeID *int64, offset, limit uint64) ([]*models.SalaryStructure, int64, error)
}

// PayrollStore persists processed payrolls
type PayrollStore interface {
	Create(ctx context.Context, p *models.Payroll) error
	GetByID(ctx context.Context, id int64) (*models.Payroll, error)
	ExistsForPeriod(ctx context.Context, employeeID int64, period string) (bool, error)
	List(ctx context.Context, filter dto.PayrollFilter, offset, limit uint64) ([]*models.Payroll, int64, error)
	UpdateWorkflow(ctx context.Context, p *models.Payroll, from models.PayrollStatus) error
	DeleteRejected(ctx context.Context, id int64) error
}

// PayableEmployeeLister lists employees eligible for salary processing
type PayableEmployeeLister interface {
	EmployeeReader
	ListPayable(ctx context.Context, campusID *int64) ([]*models.Employee, error)
}

type payrollService struct {
	structureRepo SalaryStructureStore
	payrollRepo   PayrollStore
	employeeRepo  PayableEmployeeLister
	attendance    AttendanceSummarizer
	calculator    *tax.Calculator
	mailer        email.EmailService
	logger        zerolog.Logger
	now           Clock
}

// NewPayrollService creates a new PayrollService
func NewPayrollService(
	structureRepo SalaryStructureStore,
	payrollRepo PayrollStore,
	employeeRepo PayableEmployeeLister,
	attendance AttendanceSummarizer,
	calculator *tax.Calculator,
	mailer email.EmailService,
	logger zerolog.Logger,
) PayrollService {
	return &payrollService{
		structureRepo: structureRepo,
		payrollRepo:   payrollRepo,
		employeeRepo:  employeeRepo,
		attendance:    attendance,
		calculator:    calculator,
		mailer:        mailer,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *payrollService) authorizeEmployee(ctx context.Context, actor authz.Actor, employeeID int64) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(employee.CampusID); err != nil {
		return nil, err
	}
	return employee, nil
}

// CreateSalaryStructure replaces the employee's active structure
func (s *payrollService) CreateSalaryStructure(ctx context.Context, actor authz.Actor, req *dto.SalaryStructureRequest) (*models.SalaryStructure, error) {
	if !req.BasicSalary.IsPositive() {
		return nil, invalidf("basicSalary must be greater than zero")
	}
	amounts := map[string]decimal.Decimal{
		"houseRentAllowance": req.HouseRentAllowance,
		"medicalAllowance":   req.MedicalAllowance,
		"transportAllowance": req.TransportAllowance,
		"otherAllowances":    req.OtherAllowances,
		"providentFund":      req.ProvidentFund,
		"otherDeductions":    req.OtherDeductions,
	}
	for name, amount := range amounts {
		if amount.IsNegative() {
			return nil, invalidf("%s cannot be negative", name)
		}
	}
	effectiveFrom, err := parseDate("effectiveFrom", req.EffectiveFrom)
	if err != nil {
		return nil, err
	}

	employee, err := s.authorizeEmployee(ctx, actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if employee.Status == models.EmployeeTerminated {
		return nil, apperrors.NewBadRequestError("cannot create a salary structure for a terminated employee")
	}

	createdBy := actor.UserID
	structure := &models.SalaryStructure{
		EmployeeID:         req.EmployeeID,
		BasicSalary:        req.BasicSalary.Round(2),
		HouseRentAllowance: req.HouseRentAllowance.Round(2),
		MedicalAllowance:   req.MedicalAllowance.Round(2),
		TransportAllowance: req.TransportAllowance.Round(2),
		OtherAllowances:    req.OtherAllowances.Round(2),
		ProvidentFund:      req.ProvidentFund.Round(2),
		OtherDeductions:    req.OtherDeductions.Round(2),
		EffectiveFrom:      effectiveFrom,
		IsActive:           true,
		CreatedBy:          &createdBy,
	}
	if err := s.structureRepo.CreateActive(ctx, structure); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("employeeID", structure.EmployeeID).
		Int64("structureID", structure.ID).
		Str("gross", structure.GrossMonthly().String()).
		Msg("Salary structure activated")
	return structure, nil
}

// GetSalaryStructure returns one salary structure
func (s *payrollService) GetSalaryStructure(ctx context.Context, actor authz.Actor, id int64) (*models.SalaryStructure, error) {
	structure, err := s.structureRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeEmployee(ctx, actor, structure.EmployeeID); err != nil {
		return nil, err
	}
	return structure, nil
}

// ListSalaryStructures lists structures, newest first. Campus-bound callers must name an employee.
func (s *payrollService) ListSalaryStructures(ctx context.Context, actor authz.Actor, employeeID *int64, page, size int) ([]*models.SalaryStructure, int64, error) {
	if employeeID != nil {
		if _, err := s.authorizeEmployee(ctx, actor, *employeeID); err != nil {
			return nil, 0, err
		}
	} else if !actor.IsSuperAdmin() {
		return nil, 0, invalidf("employeeId is required")
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.structureRepo.List(ctx, employeeID, offset, limit)
}

// validatePeriod rejects malformed periods and months that have not started yet
func (s *payrollService) validatePeriod(period string) (time.Time, time.Time, error) {
	if !validation.IsValidPeriod(period) {
		return time.Time{}, time.Time{}, invalidf("period must be in YYYY-MM format")
	}
	start, end, err := helpers.PeriodBounds(period)
	if err != nil {
		return time.Time{}, time.Time{}, invalidf("period must be in YYYY-MM format")
	}
	now := s.now().UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if start.After(current) {
		return time.Time{}, time.Time{}, invalidf("payroll cannot be processed for a future period")
	}
	return start, end, nil
}

// ComputePayroll applies the attendance ratio to each earning, then tax and fixed deductions.
// Earnings are rounded to 2 places individually and net salary never goes below zero.
func ComputePayroll(structure *models.SalaryStructure, summary *models.AttendanceSummary, calculator *tax.Calculator) *models.Payroll {
	ratio := summary.AttendanceRatio
	adjust := func(amount decimal.Decimal) decimal.Decimal {
		return amount.Mul(ratio).Round(2)
	}

	p := &models.Payroll{
		EmployeeID:         structure.EmployeeID,
		SalaryStructureID:  structure.ID,
		Period:             summary.Period,
		WorkingDays:        summary.WorkingDays,
		PaidDays:           summary.PaidDays,
		AttendanceRatio:    ratio,
		BasicSalary:        adjust(structure.BasicSalary),
		HouseRentAllowance: adjust(structure.HouseRentAllowance),
		MedicalAllowance:   adjust(structure.MedicalAllowance),
		TransportAllowance: adjust(structure.TransportAllowance),
		OtherAllowances:    adjust(structure.OtherAllowances),
		ProvidentFund:      structure.ProvidentFund,
		OtherDeductions:    structure.OtherDeductions,
		Status:             models.PayrollPending,
	}

	p.GrossSalary = p.BasicSalary.Add(p.HouseRentAllowance).Add(p.MedicalAllowance).
		Add(p.TransportAllowance).Add(p.OtherAllowances)
	p.IncomeTax = calculator.MonthlyTax(p.GrossSalary.Mul(decimal.NewFromInt(12)))
	p.TotalDeductions = p.ProvidentFund.Add(p.OtherDeductions).Add(p.IncomeTax)
	p.NetSalary = p.GrossSalary.Sub(p.TotalDeductions)
	if p.NetSalary.IsNegative() {
		p.NetSalary = decimal.Zero
	}
	return p
}

// process computes and stores one employee's payroll
func (s *payrollService) process(ctx context.Context, employee *models.Employee, period string, periodEnd time.Time, processedBy *int64) (*models.Payroll, error) {
	if !employee.Status.IsPayable() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("employee is %s and cannot be paid", employee.Status))
	}
	if employee.JoiningDate.After(periodEnd) {
		return nil, apperrors.NewBadRequestError(SkipNotJoined)
	}

	exists, err := s.payrollRepo.ExistsForPeriod(ctx, employee.ID, period)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrPayrollAlreadyProcessed
	}

	structure, err := s.structureRepo.GetActive(ctx, employee.ID)
	if err != nil {
		return nil, err
	}
	if structure.EffectiveFrom.After(periodEnd) {
		return nil, apperrors.ErrStructureNotYetEffective
	}
	summary, err := s.attendance.Summarize(ctx, employee.ID, period)
	if err != nil {
		return nil, err
	}

	p := ComputePayroll(structure, summary, s.calculator)
	p.ProcessedBy = processedBy
	p.ProcessedAt = s.now()
	p.EmployeeName = employee.FullName
	p.EmployeeCode = employee.EmployeeCode
	p.CampusID = employee.CampusID

	if err := s.payrollRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ProcessPayroll processes one employee's salary for a period
func (s *payrollService) ProcessPayroll(ctx context.Context, actor authz.Actor, req *dto.ProcessPayrollRequest) (*models.Payroll, error) {
	_, end, err := s.validatePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	employee, err := s.authorizeEmployee(ctx, actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	processedBy := actor.UserID
	p, err := s.process(ctx, employee, req.Period, end, &processedBy)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("payrollID", p.ID).
		Int64("employeeID", p.EmployeeID).
		Str("period", p.Period).
		Str("net", p.NetSalary.String()).
		Msg("Payroll processed")
	return p, nil
}

// BulkProcessPayroll processes every payable employee in the actor's scope
func (s *payrollService) BulkProcessPayroll(ctx context.Context, actor authz.Actor, req *dto.BulkProcessPayrollRequest) (*dto.BulkProcessResult, error) {
	campusID, err := actor.ScopeCampus(req.CampusID)
	if err != nil {
		return nil, err
	}
	processedBy := actor.UserID
	return s.ProcessPeriod(ctx, req.Period, campusID, &processedBy)
}

// ProcessPeriod processes every payable employee, optionally limited to one campus.
// Existing payrolls and missing structures are skipped; other errors are collected as failures.
func (s *payrollService) ProcessPeriod(ctx context.Context, period string, campusID *int64, processedBy *int64) (*dto.BulkProcessResult, error) {
	_, end, err := s.validatePeriod(period)
	if err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.ListPayable(ctx, campusID)
	if err != nil {
		return nil, err
	}

	result := &dto.BulkProcessResult{
		Period:    period,
		Processed: make([]*models.Payroll, 0, len(employees)),
		Skipped:   make([]dto.SkippedPayroll, 0),
		Failed:    make([]dto.FailedPayroll, 0),
	}

	for _, employee := range employees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := s.process(ctx, employee, period, end, processedBy)
		switch {
		case err == nil:
			result.Processed = append(result.Processed, p)
		case errors.Is(err, apperrors.ErrPayrollAlreadyProcessed):
			result.Skipped = append(result.Skipped, dto.SkippedPayroll{EmployeeID: employee.ID, Reason: SkipAlreadyProcessed})
		case errors.Is(err, apperrors.ErrNoActiveSalaryStructure):
			result.Skipped = append(result.Skipped, dto.SkippedPayroll{EmployeeID: employee.ID, Reason: SkipNoSalaryStructure})
		case errors.Is(err, apperrors.ErrStructureNotYetEffective):
			result.Skipped = append(result.Skipped, dto.SkippedPayroll{EmployeeID: employee.ID, Reason: SkipStructureNotInForce})
		case employee.JoiningDate.After(end):
			result.Skipped = append(result.Skipped, dto.SkippedPayroll{EmployeeID: employee.ID, Reason: SkipNotJoined})
		default:
			s.logger.Error().Err(err).Int64("employeeID", employee.ID).Str("period", period).Msg("Payroll processing failed")
			result.Failed = append(result.Failed, dto.FailedPayroll{EmployeeID: employee.ID, Error: err.Error()})
		}
	}

	event := s.logger.Info()
	if campusID != nil {
		event = event.Int64("campusID", *campusID)
	}
	event.
		Str("period", period).
		Int("processed", len(result.Processed)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Msg("Bulk payroll run finished")
	return result, nil
}

// GetPayroll returns one payroll record
func (s *payrollService) GetPayroll(ctx context.Context, actor authz.Actor, id int64) (*models.Payroll, error) {
	p, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(p.CampusID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPayrolls returns a page of payroll records
func (s *payrollService) ListPayrolls(ctx context.Context, actor authz.Actor, filter dto.PayrollFilter, page, size int) ([]*models.Payroll, int64, error) {
	campusID, err := actor.ScopeCampus(filter.CampusID)
	if err != nil {
		return nil, 0, err
	}
	filter.CampusID = campusID
	if filter.Period != nil && !validation.IsValidPeriod(*filter.Period) {
		return nil, 0, invalidf("period must be in YYYY-MM format")
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, invalidf("unknown payroll status %q", *filter.Status)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.payrollRepo.List(ctx, filter, offset, limit)
}

// transition loads a payroll, checks the workflow and persists the change made by apply
func (s *payrollService) transition(ctx context.Context, actor authz.Actor, id int64, to models.PayrollStatus, apply func(p *models.Payroll, now time.Time)) (*models.Payroll, error) {
	p, err := s.GetPayroll(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	from := p.Status
	if !from.CanTransitionTo(to) {
		return nil, apperrors.NewTransitionError(fmt.Sprintf("cannot move payroll from %s to %s", from, to))
	}

	p.Status = to
	apply(p, s.now())
	if err := s.payrollRepo.UpdateWorkflow(ctx, p, from); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("payrollID", p.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Int64("by", actor.UserID).
		Msg("Payroll status changed")
	return p, nil
}

// ApprovePayroll moves a PENDING payroll to APPROVED
func (s *payrollService) ApprovePayroll(ctx context.Context, actor authz.Actor, id int64) (*models.Payroll, error) {
	return s.transition(ctx, actor, id, models.PayrollApproved, func(p *models.Payroll, now time.Time) {
		approver := actor.UserID
		p.ApprovedBy = &approver
		p.ApprovedAt = &now
	})
}

// RejectPayroll moves a PENDING payroll to REJECTED with remarks
func (s *payrollService) RejectPayroll(ctx context.Context, actor authz.Actor, id int64, req *dto.RejectPayrollRequest) (*models.Payroll, error) {
	remarks := cleanOptional(&req.Remarks)
	if remarks == nil {
		return nil, invalidf("remarks are required when rejecting a payroll")
	}
	return s.transition(ctx, actor, id, models.PayrollRejected, func(p *models.Payroll, _ time.Time) {
		p.Remarks = remarks
	})
}

// PayPayroll moves an APPROVED payroll to PAID and emails the payslip
func (s *payrollService) PayPayroll(ctx context.Context, actor authz.Actor, id int64, req *dto.PayPayrollRequest) (*models.Payroll, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, invalidf("unknown payment method %q", req.PaymentMethod)
	}
	method := req.PaymentMethod
	reference := cleanOptional(req.Reference)
	if method != models.PaymentCash && reference == nil {
		return nil, invalidf("reference is required for %s payments", method)
	}

	p, err := s.transition(ctx, actor, id, models.PayrollPaid, func(p *models.Payroll, now time.Time) {
		p.PaidAt = &now
		p.PaymentMethod = &method
		p.PaymentReference = reference
	})
	if err != nil {
		return nil, err
	}

	s.sendPayslip(ctx, p)
	return p, nil
}

// sendPayslip notifies the employee. Failures are logged only.
func (s *payrollService) sendPayslip(ctx context.Context, p *models.Payroll) {
	employee, err := s.employeeRepo.GetByID(ctx, p.EmployeeID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("payrollID", p.ID).Msg("Could not load employee for payslip email")
		return
	}
	err = s.mailer.SendPayslip(email.PayslipNotice{
		ToEmail:       employee.Email,
		ToName:        employee.FullName,
		Period:        p.Period,
		GrossSalary:   p.GrossSalary.StringFixed(2),
		NetSalary:     p.NetSalary.StringFixed(2),
		PaymentMethod: string(*p.PaymentMethod),
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("payrollID", p.ID).Msg("Failed to send payslip email")
	}
}

// DeletePayroll removes a REJECTED payroll so the period can be reprocessed
func (s *payrollService) DeletePayroll(ctx context.Context, actor authz.Actor, id int64) error {
	p, err := s.GetPayroll(ctx, actor, id)
	if err != nil {
		return err
	}
	if p.Status != models.PayrollRejected {
		return apperrors.NewTransitionError("only rejected payrolls can be deleted")
	}
	return s.payrollRepo.DeleteRejected(ctx, id)
}

func taxResponse(result tax.Result) dto.TaxCalculationResponse {
	lines := make([]dto.TaxBracketLine, 0, len(result.Breakdown))
	for _, b := range result.Breakdown {
		lines = append(lines, dto.TaxBracketLine{
			LowerBound:    b.LowerBound,
			UpperBound:    b.UpperBound,
			Rate:          b.Rate,
			TaxableAmount: b.TaxableAmount,
			Tax:           b.Tax,
		})
	}
	return dto.TaxCalculationResponse{
		AnnualIncome: result.AnnualIncome,
		AnnualTax:    result.AnnualTax,
		MonthlyTax:   result.MonthlyTax,
		Breakdown:    lines,
	}
}

// GetPayslip renders a payroll with its employee and tax breakdown
func (s *payrollService) GetPayslip(ctx context.Context, actor authz.Actor, id int64) (*dto.PayslipResponse, error) {
	p, err := s.GetPayroll(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	employee, err := s.employeeRepo.GetByID(ctx, p.EmployeeID)
	if err != nil {
		return nil, err
	}

	return &dto.PayslipResponse{
		PayrollID:       p.ID,
		Period:          p.Period,
		Status:          p.Status,
		Employee:        employee,
		WorkingDays:     p.WorkingDays,
		PaidDays:        p.PaidDays,
		AttendanceRatio: p.AttendanceRatio,
		Earnings: dto.PayslipEarnings{
			BasicSalary:        p.BasicSalary,
			HouseRentAllowance: p.HouseRentAllowance,
			MedicalAllowance:   p.MedicalAllowance,
			TransportAllowance: p.TransportAllowance,
			OtherAllowances:    p.OtherAllowances,
			Gross:              p.GrossSalary,
		},
		Deductions: dto.PayslipDeductions{
			ProvidentFund:   p.ProvidentFund,
			OtherDeductions: p.OtherDeductions,
			IncomeTax:       p.IncomeTax,
			Total:           p.TotalDeductions,
		},
		NetSalary:     p.NetSalary,
		Tax:           taxResponse(s.calculator.Calculate(p.GrossSalary.Mul(decimal.NewFromInt(12)))),
		PaymentMethod: p.PaymentMethod,
		PaymentRef:    p.PaymentReference,
	}, nil
}

// CalculateTax returns the progressive tax on an annual income
func (s *payrollService) CalculateTax(annualIncome decimal.Decimal) (*dto.TaxCalculationResponse, error) {
	if annualIncome.IsNegative() {
		return nil, invalidf("annualIncome cannot be negative")
	}
	resp := taxResponse(s.calculator.Calculate(annualIncome))
	return &resp, nil
}
