package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceStatus is the mark recorded for an employee on one day
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLeave   AttendanceStatus = "LEAVE"
	AttendanceHalfDay AttendanceStatus = "HALF_DAY"
	AttendanceLate    AttendanceStatus = "LATE"
)

// IsValid reports whether s is a known status
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLeave, AttendanceHalfDay, AttendanceLate:
		return true
	}
	return false
}

// AttendanceRecord is one employee-day
type AttendanceRecord struct {
	ID         int64            `json:"id" db:"id"`
	EmployeeID int64            `json:"employeeId" db:"employee_id"`
	Date       time.Time        `json:"date" db:"attendance_date"`
	Status     AttendanceStatus `json:"status" db:"status"`
	CheckIn    *string          `json:"checkIn,omitempty" db:"check_in"`
	CheckOut   *string          `json:"checkOut,omitempty" db:"check_out"`
	Remarks    *string          `json:"remarks,omitempty" db:"remarks"`
	MarkedBy   *int64           `json:"markedBy,omitempty" db:"marked_by"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time        `json:"updatedAt" db:"updated_at"`
}

// AttendanceSummary aggregates one employee's period
type AttendanceSummary struct {
	EmployeeID      int64
	Period          string
	WorkingDays     int
	Present         int
	Absent          int
	Leave           int
	HalfDay         int
	Late            int
	PaidDays        decimal.Decimal
	AttendanceRatio decimal.Decimal
}
