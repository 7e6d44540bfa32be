package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Department represents a department in a campus
type Department struct {
	ID          int64     `json:"id" db:"id"`
	CampusID    int64     `json:"campusId" db:"campus_id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	Campus      *Campus   `json:"campus,omitempty"`
}

// Program is a degree program offered by a department
type Program struct {
	ID            int64           `json:"id" db:"id"`
	DepartmentID  int64           `json:"departmentId" db:"department_id"`
	CampusID      int64           `json:"campusId" db:"campus_id"` // joined from departments
	Name          string          `json:"name" db:"name"`
	Code          string          `json:"code" db:"code"`
	DurationYears int             `json:"durationYears" db:"duration_years"`
	TotalSeats    int             `json:"totalSeats" db:"total_seats"`
	MinPercentage decimal.Decimal `json:"minPercentage" db:"min_percentage"`
	IsActive      bool            `json:"isActive" db:"is_active"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}
