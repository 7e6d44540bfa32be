package dto

import (
	"github.com/campusly/campusly/internal/app/models"
	"github.com/shopspring/decimal"
)

// MarkAttendanceRequest marks or overwrites one employee-day
type MarkAttendanceRequest struct {
	EmployeeID int64                   `json:"employeeId" binding:"required,min=1" example:"3"`
	Date       string                  `json:"date" binding:"required,datetime=2006-01-02" example:"2025-03-10"`
	Status     models.AttendanceStatus `json:"status" binding:"required" example:"PRESENT"`
	CheckIn    *string                 `json:"checkIn" example:"09:02"`
	CheckOut   *string                 `json:"checkOut" example:"17:10"`
	Remarks    *string                 `json:"remarks"`
}

// BulkAttendanceEntry is one employee's mark in a bulk request
type BulkAttendanceEntry struct {
	EmployeeID int64                   `json:"employeeId" binding:"required,min=1"`
	Status     models.AttendanceStatus `json:"status" binding:"required"`
	CheckIn    *string                 `json:"checkIn"`
	CheckOut   *string                 `json:"checkOut"`
	Remarks    *string                 `json:"remarks"`
}

// BulkAttendanceRequest marks many employees for one date
type BulkAttendanceRequest struct {
	Date    string                `json:"date" binding:"required,datetime=2006-01-02" example:"2025-03-10"`
	Entries []BulkAttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

// AttendanceFilter narrows attendance listings
type AttendanceFilter struct {
	EmployeeID *int64
	CampusID   *int64
	Period     *string
	Status     *models.AttendanceStatus
}

// AttendanceSummaryResponse reports one employee's month
type AttendanceSummaryResponse struct {
	EmployeeID      int64           `json:"employeeId"`
	Period          string          `json:"period" example:"2025-03"`
	WorkingDays     int             `json:"workingDays"`
	Present         int             `json:"present"`
	Absent          int             `json:"absent"`
	Leave           int             `json:"leave"`
	HalfDay         int             `json:"halfDay"`
	Late            int             `json:"late"`
	PaidDays        decimal.Decimal `json:"paidDays" swaggertype:"string"`
	AttendanceRatio decimal.Decimal `json:"attendanceRatio" swaggertype:"string"`
}

// NewAttendanceSummaryResponse converts a computed summary
func NewAttendanceSummaryResponse(s *models.AttendanceSummary) AttendanceSummaryResponse {
	return AttendanceSummaryResponse{
		EmployeeID:      s.EmployeeID,
		Period:          s.Period,
		WorkingDays:     s.WorkingDays,
		Present:         s.Present,
		Absent:          s.Absent,
		Leave:           s.Leave,
		HalfDay:         s.HalfDay,
		Late:            s.Late,
		PaidDays:        s.PaidDays,
		AttendanceRatio: s.AttendanceRatio,
	}
}
