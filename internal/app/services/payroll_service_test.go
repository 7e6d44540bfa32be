package services

import (
	"context"
	"testing"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s: got %s want %s", field, got, want)
}

func lecturerStructure(employeeID int64) *models.SalaryStructure {
	return &models.SalaryStructure{
		ID:                 10,
		EmployeeID:         employeeID,
		BasicSalary:        dec("85000"),
		HouseRentAllowance: dec("25000"),
		MedicalAllowance:   dec("5000"),
		TransportAllowance: dec("4000"),
		OtherAllowances:    decimal.Zero,
		ProvidentFund:      dec("4250"),
		OtherDeductions:    decimal.Zero,
		IsActive:           true,
	}
}

func TestComputePayroll(t *testing.T) {
	calc := tax.NewCalculator()

	t.Run("full attendance", func(t *testing.T) {
		p := ComputePayroll(lecturerStructure(1), &models.AttendanceSummary{Period: "2025-03", AttendanceRatio: dec("1")}, calc)

		assertDecimal(t, "119000", p.GrossSalary, "gross")
		// 1,428,000 a year: 15,000 in the second slab plus 28,500 in the third
		assertDecimal(t, "3625", p.IncomeTax, "tax")
		assertDecimal(t, "7875", p.TotalDeductions, "deductions")
		assertDecimal(t, "111125", p.NetSalary, "net")
		assert.Equal(t, models.PayrollPending, p.Status)
	})

	t.Run("half attendance scales earnings only", func(t *testing.T) {
		p := ComputePayroll(lecturerStructure(1), &models.AttendanceSummary{Period: "2025-03", AttendanceRatio: dec("0.5")}, calc)

		assertDecimal(t, "42500", p.BasicSalary, "basic")
		assertDecimal(t, "59500", p.GrossSalary, "gross")
		assertDecimal(t, "4250", p.ProvidentFund, "provident fund")
		assertDecimal(t, "237.5", p.IncomeTax, "tax")
		assertDecimal(t, "55012.5", p.NetSalary, "net")
	})

	t.Run("net salary never negative", func(t *testing.T) {
		s := &models.SalaryStructure{EmployeeID: 1, BasicSalary: dec("1000"), ProvidentFund: dec("5000")}
		p := ComputePayroll(s, &models.AttendanceSummary{AttendanceRatio: dec("1")}, calc)

		assertDecimal(t, "1000", p.GrossSalary, "gross")
		assert.True(t, p.NetSalary.IsZero())
	})
}

type payrollFixture struct {
	svc        *payrollService
	structures *fakeStructures
	payrolls   *fakePayrolls
	mailer     *fakeMailer
	actor      authz.Actor
}

func newPayrollFixture() *payrollFixture {
	joined := time.Date(2020, time.January, 6, 0, 0, 0, 0, time.UTC)
	employees := fakeEmployees{
		1: {ID: 1, CampusID: 1, FullName: "Sana Iqbal", Email: "sana@campusly.test", EmployeeCode: "EMP-001", Status: models.EmployeeActive, JoiningDate: joined},
		2: {ID: 2, CampusID: 1, FullName: "Bilal Ahmed", Email: "bilal@campusly.test", EmployeeCode: "EMP-002", Status: models.EmployeeActive, JoiningDate: joined},
		3: {ID: 3, CampusID: 2, FullName: "Hina Shah", Email: "hina@campusly.test", EmployeeCode: "EMP-003", Status: models.EmployeeActive, JoiningDate: joined},
		4: {ID: 4, CampusID: 1, FullName: "Omar Malik", Email: "omar@campusly.test", EmployeeCode: "EMP-004", Status: models.EmployeeTerminated, JoiningDate: joined},
		5: {ID: 5, CampusID: 1, FullName: "Ayesha Khan", Email: "ayesha@campusly.test", EmployeeCode: "EMP-005", Status: models.EmployeeActive,
			JoiningDate: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)},
	}

	structures := newFakeStructures()
	structures.active[1] = lecturerStructure(1)
	structures.active[3] = lecturerStructure(3)
	structures.active[5] = lecturerStructure(5)

	payrolls := newFakePayrolls()
	mailer := &fakeMailer{}
	svc := NewPayrollService(structures, payrolls, employees, fakeSummarizer{}, tax.NewCalculator(), mailer, testLogger).(*payrollService)
	svc.now = fixedClock

	campus := int64(1)
	return &payrollFixture{
		svc:        svc,
		structures: structures,
		payrolls:   payrolls,
		mailer:     mailer,
		actor:      authz.Actor{UserID: 7, Role: models.RoleHR, CampusID: &campus},
	}
}

func TestProcessPayroll(t *testing.T) {
	ctx := context.Background()

	t.Run("processes once per period", func(t *testing.T) {
		f := newPayrollFixture()
		p, err := f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 1, Period: "2025-03"})
		require.NoError(t, err)
		assert.Equal(t, models.PayrollPending, p.Status)
		assert.Equal(t, int64(7), *p.ProcessedBy)
		assertDecimal(t, "111125", p.NetSalary, "net")

		_, err = f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 1, Period: "2025-03"})
		assert.ErrorIs(t, err, apperrors.ErrPayrollAlreadyProcessed)
	})

	t.Run("rejects future period", func(t *testing.T) {
		f := newPayrollFixture()
		_, err := f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 1, Period: "2025-05"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("current month is allowed", func(t *testing.T) {
		f := newPayrollFixture()
		_, err := f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 1, Period: "2025-04"})
		assert.NoError(t, err)
	})

	t.Run("requires an active structure", func(t *testing.T) {
		f := newPayrollFixture()
		_, err := f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 2, Period: "2025-03"})
		assert.ErrorIs(t, err, apperrors.ErrNoActiveSalaryStructure)
	})

	t.Run("structure starting after the period is not applied", func(t *testing.T) {
		f := newPayrollFixture()
		f.structures.active[1].EffectiveFrom = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

		_, err := f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 1, Period: "2025-01"})
		assert.ErrorIs(t, err, apperrors.ErrStructureNotYetEffective)
		assert.Empty(t, f.payrolls.byID)

		_, err = f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 1, Period: "2025-04"})
		assert.NoError(t, err)
	})

	t.Run("current month is judged in UTC", func(t *testing.T) {
		f := newPayrollFixture()
		// 1 May 02:00 at UTC+5 is still 30 April in UTC
		f.svc.now = func() time.Time {
			return time.Date(2025, time.May, 1, 2, 0, 0, 0, time.FixedZone("PKT", 5*60*60))
		}
		_, err := f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 1, Period: "2025-05"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("refuses terminated employees", func(t *testing.T) {
		f := newPayrollFixture()
		_, err := f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 4, Period: "2025-03"})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("refuses employees of other campuses", func(t *testing.T) {
		f := newPayrollFixture()
		_, err := f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 3, Period: "2025-03"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestBulkProcessPayroll(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture()

	result, err := f.svc.BulkProcessPayroll(ctx, f.actor, &dto.BulkProcessPayrollRequest{Period: "2025-03"})
	require.NoError(t, err)

	require.Len(t, result.Processed, 1)
	assert.Equal(t, int64(1), result.Processed[0].EmployeeID)
	assert.Empty(t, result.Failed)
	assert.ElementsMatch(t, []dto.SkippedPayroll{
		{EmployeeID: 2, Reason: SkipNoSalaryStructure},
		{EmployeeID: 5, Reason: SkipNotJoined},
	}, result.Skipped)

	again, err := f.svc.BulkProcessPayroll(ctx, f.actor, &dto.BulkProcessPayrollRequest{Period: "2025-03"})
	require.NoError(t, err)
	assert.Empty(t, again.Processed)
	assert.Contains(t, again.Skipped, dto.SkippedPayroll{EmployeeID: 1, Reason: SkipAlreadyProcessed})

	_, err = f.svc.BulkProcessPayroll(ctx, f.actor, &dto.BulkProcessPayrollRequest{Period: "2025-03", CampusID: models.Int64Ptr(2)})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestBulkProcessSkipsStructuresNotInForce(t *testing.T) {
	f := newPayrollFixture()
	f.structures.active[1].EffectiveFrom = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	result, err := f.svc.BulkProcessPayroll(context.Background(), f.actor, &dto.BulkProcessPayrollRequest{Period: "2025-03"})
	require.NoError(t, err)

	assert.Empty(t, result.Processed)
	assert.Empty(t, result.Failed)
	assert.Contains(t, result.Skipped, dto.SkippedPayroll{EmployeeID: 1, Reason: SkipStructureNotInForce})
}

func TestPayrollWorkflow(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture()

	p, err := f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 1, Period: "2025-03"})
	require.NoError(t, err)

	_, err = f.svc.PayPayroll(ctx, f.actor, p.ID, &dto.PayPayrollRequest{PaymentMethod: models.PaymentCash})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition, "pending payroll cannot be paid")

	approved, err := f.svc.ApprovePayroll(ctx, f.actor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayrollApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, fixedNow, *approved.ApprovedAt)

	_, err = f.svc.PayPayroll(ctx, f.actor, p.ID, &dto.PayPayrollRequest{PaymentMethod: models.PaymentBankTransfer})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "bank transfers need a reference")

	paid, err := f.svc.PayPayroll(ctx, f.actor, p.ID, &dto.PayPayrollRequest{
		PaymentMethod: models.PaymentBankTransfer,
		Reference:     models.StringPtr("TRX-1001"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PayrollPaid, paid.Status)
	assert.Equal(t, "TRX-1001", *paid.PaymentReference)

	require.Len(t, f.mailer.payslips, 1)
	assert.Equal(t, "sana@campusly.test", f.mailer.payslips[0].ToEmail)
	assert.Equal(t, "111125.00", f.mailer.payslips[0].NetSalary)

	err = f.svc.DeletePayroll(ctx, f.actor, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition, "paid payroll cannot be deleted")
}

func TestRejectedPayrollCanBeReprocessed(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture()

	p, err := f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 1, Period: "2025-03"})
	require.NoError(t, err)

	_, err = f.svc.RejectPayroll(ctx, f.actor, p.ID, &dto.RejectPayrollRequest{Remarks: "  "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	rejected, err := f.svc.RejectPayroll(ctx, f.actor, p.ID, &dto.RejectPayrollRequest{Remarks: "attendance disputed"})
	require.NoError(t, err)
	assert.Equal(t, models.PayrollRejected, rejected.Status)

	require.NoError(t, f.svc.DeletePayroll(ctx, f.actor, p.ID))
	_, err = f.svc.ProcessPayroll(ctx, f.actor, &dto.ProcessPayrollRequest{EmployeeID: 1, Period: "2025-03"})
	assert.NoError(t, err)
}

func TestCreateSalaryStructure(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture()

	req := &dto.SalaryStructureRequest{
		EmployeeID:    2,
		BasicSalary:   dec("60000"),
		ProvidentFund: dec("3000"),
		EffectiveFrom: "2025-01-01",
	}
	s, err := f.svc.CreateSalaryStructure(ctx, f.actor, req)
	require.NoError(t, err)
	assert.True(t, s.IsActive)
	assert.Same(t, s, f.structures.active[2])

	bad := *req
	bad.BasicSalary = decimal.Zero
	_, err = f.svc.CreateSalaryStructure(ctx, f.actor, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	bad = *req
	bad.OtherDeductions = dec("-1")
	_, err = f.svc.CreateSalaryStructure(ctx, f.actor, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCalculateTax(t *testing.T) {
	f := newPayrollFixture()

	resp, err := f.svc.CalculateTax(dec("2000000"))
	require.NoError(t, err)
	assertDecimal(t, "115000", resp.AnnualTax, "annual")
	assert.NotEmpty(t, resp.Breakdown)

	_, err = f.svc.CalculateTax(dec("-5"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
