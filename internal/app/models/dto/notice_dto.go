package dto

import (
	"time"

	"github.com/campusly/campusly/internal/app/models"
)

// NoticeRequest creates or replaces a notice
type NoticeRequest struct {
	CampusID  *int64                `json:"campusId" binding:"omitempty,min=1"`
	Title     string                `json:"title" binding:"required,max=255" example:"Mid-term schedule"`
	Body      string                `json:"body" binding:"required" example:"Mid-term exams start on 14 April."`
	Audience  models.NoticeAudience `json:"audience" example:"ALL"`
	PublishAt *time.Time            `json:"publishAt"`
	ExpiresAt *time.Time            `json:"expiresAt"`
}

// NoticeFilter narrows notice listings
type NoticeFilter struct {
	CampusID *int64
	Audience *models.NoticeAudience
	// IncludeGlobal adds notices with no campus when CampusID is set
	IncludeGlobal bool
	Search        *string
}
