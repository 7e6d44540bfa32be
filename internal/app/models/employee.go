package models

import "time"

// EmploymentType is the contract basis of an employee
type EmploymentType string

const (
	EmploymentPermanent EmploymentType = "PERMANENT"
	EmploymentContract  EmploymentType = "CONTRACT"
	EmploymentVisiting  EmploymentType = "VISITING"
)

// IsValid reports whether t is a known employment type
func (t EmploymentType) IsValid() bool {
	return t == EmploymentPermanent || t == EmploymentContract || t == EmploymentVisiting
}

// EmployeeStatus is the HR state of an employee
type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "ACTIVE"
	EmployeeOnLeave    EmployeeStatus = "ON_LEAVE"
	EmployeeTerminated EmployeeStatus = "TERMINATED"
)

// IsValid reports whether s is a known status
func (s EmployeeStatus) IsValid() bool {
	return s == EmployeeActive || s == EmployeeOnLeave || s == EmployeeTerminated
}

// IsPayable reports whether salary may be processed for an employee in this state
func (s EmployeeStatus) IsPayable() bool {
	return s == EmployeeActive || s == EmployeeOnLeave
}

// Employee is a staff member on the HR roll
type Employee struct {
	ID             int64          `json:"id" db:"id"`
	CampusID       int64          `json:"campusId" db:"campus_id"`
	DepartmentID   *int64         `json:"departmentId,omitempty" db:"department_id"`
	UserID         *int64         `json:"userId,omitempty" db:"user_id"`
	EmployeeCode   string         `json:"employeeCode" db:"employee_code"`
	FullName       string         `json:"fullName" db:"full_name"`
	Email          string         `json:"email" db:"email"`
	Phone          *string        `json:"phone,omitempty" db:"phone"`
	Designation    string         `json:"designation" db:"designation"`
	EmploymentType EmploymentType `json:"employmentType" db:"employment_type"`
	Status         EmployeeStatus `json:"status" db:"status"`
	JoiningDate    time.Time      `json:"joiningDate" db:"joining_date"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}
