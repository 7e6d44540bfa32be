package dto

// CampusRequest creates or replaces a campus
type CampusRequest struct {
	Name     string  `json:"name" binding:"required,max=150" example:"Main Campus"`
	Code     string  `json:"code" binding:"required,max=20" example:"MAIN"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
	Email    *string `json:"email" binding:"omitempty,email"`
	IsActive *bool   `json:"isActive"`
}
