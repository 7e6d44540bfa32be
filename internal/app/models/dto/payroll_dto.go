package dto

import (
	"github.com/campusly/campusly/internal/app/models"
	"github.com/shopspring/decimal"
)

// SalaryStructureRequest creates a new active salary structure
type SalaryStructureRequest struct {
	EmployeeID         int64           `json:"employeeId" binding:"required,min=1" example:"3"`
	BasicSalary        decimal.Decimal `json:"basicSalary" swaggertype:"string" example:"85000"`
	HouseRentAllowance decimal.Decimal `json:"houseRentAllowance" swaggertype:"string" example:"25000"`
	MedicalAllowance   decimal.Decimal `json:"medicalAllowance" swaggertype:"string" example:"5000"`
	TransportAllowance decimal.Decimal `json:"transportAllowance" swaggertype:"string" example:"4000"`
	OtherAllowances    decimal.Decimal `json:"otherAllowances" swaggertype:"string" example:"0"`
	ProvidentFund      decimal.Decimal `json:"providentFund" swaggertype:"string" example:"4250"`
	OtherDeductions    decimal.Decimal `json:"otherDeductions" swaggertype:"string" example:"0"`
	EffectiveFrom      string          `json:"effectiveFrom" binding:"required,datetime=2006-01-02" example:"2025-01-01"`
}

// ProcessPayrollRequest processes one employee's salary for a period
type ProcessPayrollRequest struct {
	EmployeeID int64  `json:"employeeId" binding:"required,min=1" example:"3"`
	Period     string `json:"period" binding:"required,period" example:"2025-03"`
}

// BulkProcessPayrollRequest processes every eligible employee for a period
type BulkProcessPayrollRequest struct {
	Period   string `json:"period" binding:"required,period" example:"2025-03"`
	CampusID *int64 `json:"campusId" binding:"omitempty,min=1"`
}

// SkippedPayroll explains why an employee was not processed
type SkippedPayroll struct {
	EmployeeID int64  `json:"employeeId"`
	Reason     string `json:"reason"`
}

// FailedPayroll reports an unexpected processing error
type FailedPayroll struct {
	EmployeeID int64  `json:"employeeId"`
	Error      string `json:"error"`
}

// BulkProcessResult is the outcome of a bulk run
type BulkProcessResult struct {
	Period    string            `json:"period"`
	Processed []*models.Payroll `json:"processed"`
	Skipped   []SkippedPayroll  `json:"skipped"`
	Failed    []FailedPayroll   `json:"failed"`
}

// RejectPayrollRequest rejects a pending payroll
type RejectPayrollRequest struct {
	Remarks string `json:"remarks" binding:"required" example:"Attendance disputed"`
}

// PayPayrollRequest marks an approved payroll as paid
type PayPayrollRequest struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required" example:"BANK_TRANSFER"`
	Reference     *string              `json:"reference" binding:"omitempty,max=100" example:"TRX-99812"`
}

// PayrollFilter narrows payroll listings
type PayrollFilter struct {
	EmployeeID *int64
	CampusID   *int64
	Period     *string
	Status     *models.PayrollStatus
}

// TaxCalculationRequest asks for the tax on an annual income
type TaxCalculationRequest struct {
	AnnualIncome decimal.Decimal `json:"annualIncome" swaggertype:"string" example:"2000000"`
}

// TaxBracketLine is one slab of a tax breakdown
type TaxBracketLine struct {
	LowerBound    decimal.Decimal  `json:"lowerBound" swaggertype:"string"`
	UpperBound    *decimal.Decimal `json:"upperBound,omitempty" swaggertype:"string"`
	Rate          decimal.Decimal  `json:"rate" swaggertype:"string"`
	TaxableAmount decimal.Decimal  `json:"taxableAmount" swaggertype:"string"`
	Tax           decimal.Decimal  `json:"tax" swaggertype:"string"`
}

// TaxCalculationResponse is the tax due on an annual income
type TaxCalculationResponse struct {
	AnnualIncome decimal.Decimal  `json:"annualIncome" swaggertype:"string"`
	AnnualTax    decimal.Decimal  `json:"annualTax" swaggertype:"string"`
	MonthlyTax   decimal.Decimal  `json:"monthlyTax" swaggertype:"string"`
	Breakdown    []TaxBracketLine `json:"breakdown"`
}

// PayslipEarnings lists attendance-adjusted earning components
type PayslipEarnings struct {
	BasicSalary        decimal.Decimal `json:"basicSalary" swaggertype:"string"`
	HouseRentAllowance decimal.Decimal `json:"houseRentAllowance" swaggertype:"string"`
	MedicalAllowance   decimal.Decimal `json:"medicalAllowance" swaggertype:"string"`
	TransportAllowance decimal.Decimal `json:"transportAllowance" swaggertype:"string"`
	OtherAllowances    decimal.Decimal `json:"otherAllowances" swaggertype:"string"`
	Gross              decimal.Decimal `json:"gross" swaggertype:"string"`
}

// PayslipDeductions lists the deductions taken from gross salary
type PayslipDeductions struct {
	ProvidentFund   decimal.Decimal `json:"providentFund" swaggertype:"string"`
	OtherDeductions decimal.Decimal `json:"otherDeductions" swaggertype:"string"`
	IncomeTax       decimal.Decimal `json:"incomeTax" swaggertype:"string"`
	Total           decimal.Decimal `json:"total" swaggertype:"string"`
}

// PayslipResponse is the printable view of a payroll record
type PayslipResponse struct {
	PayrollID       int64                  `json:"payrollId"`
	Period          string                 `json:"period"`
	Status          models.PayrollStatus   `json:"status"`
	Employee        *models.Employee       `json:"employee"`
	WorkingDays     int                    `json:"workingDays"`
	PaidDays        decimal.Decimal        `json:"paidDays" swaggertype:"string"`
	AttendanceRatio decimal.Decimal        `json:"attendanceRatio" swaggertype:"string"`
	Earnings        PayslipEarnings        `json:"earnings"`
	Deductions      PayslipDeductions      `json:"deductions"`
	NetSalary       decimal.Decimal        `json:"netSalary" swaggertype:"string"`
	Tax             TaxCalculationResponse `json:"tax"`
	PaymentMethod   *models.PaymentMethod  `json:"paymentMethod,omitempty"`
	PaymentRef      *string                `json:"paymentReference,omitempty"`
}
