package dto

import "github.com/campusly/campusly/internal/app/models"

// StudentRequest creates or replaces a student record
type StudentRequest struct {
	ProgramID   int64                `json:"programId" binding:"required,min=1" example:"1"`
	RollNumber  string               `json:"rollNumber" binding:"required,max=40" example:"BSCS-2025-0001"`
	FullName    string               `json:"fullName" binding:"required,max=150" example:"Hina Raza"`
	Email       string               `json:"email" binding:"required,email" example:"hina@example.com"`
	Phone       *string              `json:"phone" binding:"omitempty,max=30"`
	DateOfBirth *string              `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Batch       string               `json:"batch" binding:"required,len=4" example:"2025"`
	Status      models.StudentStatus `json:"status" example:"ACTIVE"`
}

// StudentFilter narrows student listings
type StudentFilter struct {
	CampusID     *int64
	DepartmentID *int64
	ProgramID    *int64
	Batch        *string
	Status       *models.StudentStatus
	Search       *string
}
