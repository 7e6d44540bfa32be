package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryStructure holds an employee's recurring monthly pay components
type SalaryStructure struct {
	ID                 int64           `json:"id" db:"id"`
	EmployeeID         int64           `json:"employeeId" db:"employee_id"`
	BasicSalary        decimal.Decimal `json:"basicSalary" db:"basic_salary"`
	HouseRentAllowance decimal.Decimal `json:"houseRentAllowance" db:"house_rent_allowance"`
	MedicalAllowance   decimal.Decimal `json:"medicalAllowance" db:"medical_allowance"`
	TransportAllowance decimal.Decimal `json:"transportAllowance" db:"transport_allowance"`
	OtherAllowances    decimal.Decimal `json:"otherAllowances" db:"other_allowances"`
	ProvidentFund      decimal.Decimal `json:"providentFund" db:"provident_fund"`
	OtherDeductions    decimal.Decimal `json:"otherDeductions" db:"other_deductions"`
	EffectiveFrom      time.Time       `json:"effectiveFrom" db:"effective_from"`
	IsActive           bool            `json:"isActive" db:"is_active"`
	CreatedBy          *int64          `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time       `json:"updatedAt" db:"updated_at"`
}

// GrossMonthly is the unadjusted sum of earning components
func (s *SalaryStructure) GrossMonthly() decimal.Decimal {
	return s.BasicSalary.Add(s.HouseRentAllowance).Add(s.MedicalAllowance).
		Add(s.TransportAllowance).Add(s.OtherAllowances)
}

// PayrollStatus is the approval state of a processed salary
type PayrollStatus string

const (
	PayrollPending  PayrollStatus = "PENDING"
	PayrollApproved PayrollStatus = "APPROVED"
	PayrollRejected PayrollStatus = "REJECTED"
	PayrollPaid     PayrollStatus = "PAID"
)

// IsValid reports whether s is a known status
func (s PayrollStatus) IsValid() bool {
	switch s {
	case PayrollPending, PayrollApproved, PayrollRejected, PayrollPaid:
		return true
	}
	return false
}

// CanTransitionTo reports whether the approval workflow allows s -> next
func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	switch s {
	case PayrollPending:
		return next == PayrollApproved || next == PayrollRejected
	case PayrollApproved:
		return next == PayrollPaid
	}
	return false
}

// PaymentMethod is how a paid salary was disbursed
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCheque       PaymentMethod = "CHEQUE"
	PaymentCash         PaymentMethod = "CASH"
)

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	return m == PaymentBankTransfer || m == PaymentCheque || m == PaymentCash
}

// Payroll is one employee's processed salary for one period
type Payroll struct {
	ID                 int64           `json:"id" db:"id"`
	EmployeeID         int64           `json:"employeeId" db:"employee_id"`
	SalaryStructureID  int64           `json:"salaryStructureId" db:"salary_structure_id"`
	Period             string          `json:"period" db:"period"`
	WorkingDays        int             `json:"workingDays" db:"working_days"`
	PaidDays           decimal.Decimal `json:"paidDays" db:"paid_days"`
	AttendanceRatio    decimal.Decimal `json:"attendanceRatio" db:"attendance_ratio"`
	BasicSalary        decimal.Decimal `json:"basicSalary" db:"basic_salary"`
	HouseRentAllowance decimal.Decimal `json:"houseRentAllowance" db:"house_rent_allowance"`
	MedicalAllowance   decimal.Decimal `json:"medicalAllowance" db:"medical_allowance"`
	TransportAllowance decimal.Decimal `json:"transportAllowance" db:"transport_allowance"`
	OtherAllowances    decimal.Decimal `json:"otherAllowances" db:"other_allowances"`
	GrossSalary        decimal.Decimal `json:"grossSalary" db:"gross_salary"`
	ProvidentFund      decimal.Decimal `json:"providentFund" db:"provident_fund"`
	OtherDeductions    decimal.Decimal `json:"otherDeductions" db:"other_deductions"`
	IncomeTax          decimal.Decimal `json:"incomeTax" db:"income_tax"`
	TotalDeductions    decimal.Decimal `json:"totalDeductions" db:"total_deductions"`
	NetSalary          decimal.Decimal `json:"netSalary" db:"net_salary"`
	Status             PayrollStatus   `json:"status" db:"status"`
	ProcessedBy        *int64          `json:"processedBy,omitempty" db:"processed_by"`
	ProcessedAt        time.Time       `json:"processedAt" db:"processed_at"`
	ApprovedBy         *int64          `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt         *time.Time      `json:"approvedAt,omitempty" db:"approved_at"`
	PaidAt             *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	PaymentMethod      *PaymentMethod  `json:"paymentMethod,omitempty" db:"payment_method"`
	PaymentReference   *string         `json:"paymentReference,omitempty" db:"payment_reference"`
	Remarks            *string         `json:"remarks,omitempty" db:"remarks"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time       `json:"updatedAt" db:"updated_at"`

	// Joined for listings and payslips
	EmployeeName string `json:"employeeName,omitempty" db:"-"`
	EmployeeCode string `json:"employeeCode,omitempty" db:"-"`
	CampusID     int64  `json:"campusId,omitempty" db:"-"`
}
