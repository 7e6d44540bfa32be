package dto

import "github.com/campusly/campusly/internal/app/models"

// EmployeeRequest creates or replaces an employee
type EmployeeRequest struct {
	CampusID       int64                 `json:"campusId" binding:"required,min=1" example:"1"`
	DepartmentID   *int64                `json:"departmentId" binding:"omitempty,min=1"`
	UserID         *int64                `json:"userId" binding:"omitempty,min=1"`
	EmployeeCode   string                `json:"employeeCode" binding:"required,max=20" example:"EMP-0012"`
	FullName       string                `json:"fullName" binding:"required,max=150" example:"Usman Tariq"`
	Email          string                `json:"email" binding:"required,email" example:"usman@campus.edu"`
	Phone          *string               `json:"phone" binding:"omitempty,max=30"`
	Designation    string                `json:"designation" binding:"required,max=100" example:"Lecturer"`
	EmploymentType models.EmploymentType `json:"employmentType" binding:"required" example:"PERMANENT"`
	Status         models.EmployeeStatus `json:"status" example:"ACTIVE"`
	JoiningDate    string                `json:"joiningDate" binding:"required,datetime=2006-01-02" example:"2023-08-01"`
}

// EmployeeFilter narrows employee listings
type EmployeeFilter struct {
	CampusID       *int64
	DepartmentID   *int64
	Status         *models.EmployeeStatus
	EmploymentType *models.EmploymentType
	Search         *string
}
