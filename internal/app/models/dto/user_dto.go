package dto

import "github.com/campusly/campusly/internal/app/models"

// CreateUserRequest creates a staff account
type CreateUserRequest struct {
	Email    string      `json:"email" binding:"required,email" example:"hr@campus.edu"`
	Password string      `json:"password" binding:"required,min=8" example:"Secret123"`
	FullName string      `json:"fullName" binding:"required,max=150" example:"Ayesha Khan"`
	Role     models.Role `json:"role" binding:"required" example:"HR"`
	CampusID *int64      `json:"campusId" binding:"omitempty,min=1" example:"1"`
}

// UpdateUserStatusRequest enables or disables an account
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// UserFilter narrows user listings
type UserFilter struct {
	Role     *models.Role
	CampusID *int64
	Search   *string
}
