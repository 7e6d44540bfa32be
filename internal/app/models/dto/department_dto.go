package dto

import "github.com/shopspring/decimal"

// DepartmentRequest creates or replaces a department
type DepartmentRequest struct {
	CampusID    int64   `json:"campusId" binding:"required,min=1" example:"1"`
	Name        string  `json:"name" binding:"required,max=150" example:"Computer Science"`
	Code        string  `json:"code" binding:"required,max=20" example:"CS"`
	Description *string `json:"description"`
}

// DepartmentFilter narrows department listings
type DepartmentFilter struct {
	CampusID *int64
	Search   *string
}

// ProgramRequest creates or replaces a program
type ProgramRequest struct {
	DepartmentID  int64           `json:"departmentId" binding:"required,min=1" example:"1"`
	Name          string          `json:"name" binding:"required,max=150" example:"BS Computer Science"`
	Code          string          `json:"code" binding:"required,max=20" example:"BSCS"`
	DurationYears int             `json:"durationYears" binding:"required,min=1,max=8" example:"4"`
	TotalSeats    int             `json:"totalSeats" binding:"min=0" example:"60"`
	MinPercentage decimal.Decimal `json:"minPercentage" swaggertype:"string" example:"60"`
	IsActive      *bool           `json:"isActive"`
}

// ProgramFilter narrows program listings
type ProgramFilter struct {
	CampusID     *int64
	DepartmentID *int64
	IsActive     *bool
	Search       *string
}
