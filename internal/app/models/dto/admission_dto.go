package dto

import (
	"time"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/shopspring/decimal"
)

// ApplicationRequest is submitted by an applicant and reused for updates
type ApplicationRequest struct {
	ProgramID      int64            `json:"programId" binding:"required,min=1" example:"1"`
	Session        string           `json:"session" binding:"required,len=4" example:"2025"`
	ApplicantName  string           `json:"applicantName" binding:"required,max=150" example:"Bilal Ahmed"`
	ApplicantEmail string           `json:"applicantEmail" binding:"required,email" example:"bilal@example.com"`
	ApplicantPhone *string          `json:"applicantPhone" binding:"omitempty,max=30"`
	DateOfBirth    string           `json:"dateOfBirth" binding:"required,datetime=2006-01-02" example:"2006-04-12"`
	MatricObtained decimal.Decimal  `json:"matricObtained" swaggertype:"string" example:"950"`
	MatricTotal    decimal.Decimal  `json:"matricTotal" swaggertype:"string" example:"1100"`
	InterObtained  decimal.Decimal  `json:"interObtained" swaggertype:"string" example:"880"`
	InterTotal     decimal.Decimal  `json:"interTotal" swaggertype:"string" example:"1100"`
	TestObtained   *decimal.Decimal `json:"testObtained" swaggertype:"string" example:"72"`
	TestTotal      *decimal.Decimal `json:"testTotal" swaggertype:"string" example:"100"`
}

// UpdateApplicationStatusRequest moves an application through review
type UpdateApplicationStatusRequest struct {
	Status  models.ApplicationStatus `json:"status" binding:"required" example:"UNDER_REVIEW"`
	Remarks *string                  `json:"remarks"`
}

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	ProgramID *int64
	CampusID  *int64
	Session   *string
	Status    *models.ApplicationStatus
	Search    *string
}

// GenerateMeritListRequest ranks the pool of one program and session
type GenerateMeritListRequest struct {
	ProgramID  int64  `json:"programId" binding:"required,min=1" example:"1"`
	Session    string `json:"session" binding:"required,len=4" example:"2025"`
	TotalSeats *int   `json:"totalSeats" binding:"omitempty,min=0" example:"50"`
}

// MeritListEntry is one ranked applicant
type MeritListEntry struct {
	ApplicationID    int64                    `json:"applicationId"`
	Rank             int                      `json:"rank"`
	ApplicantName    string                   `json:"applicantName"`
	ApplicantEmail   string                   `json:"applicantEmail"`
	EligibilityScore decimal.Decimal          `json:"eligibilityScore" swaggertype:"string"`
	InterPercentage  decimal.Decimal          `json:"interPercentage" swaggertype:"string"`
	Status           models.ApplicationStatus `json:"status"`
	SubmittedAt      time.Time                `json:"submittedAt"`
}

// MeritListResponse summarizes a merit list run
type MeritListResponse struct {
	ProgramID      int64            `json:"programId"`
	Session        string           `json:"session"`
	AvailableSeats int              `json:"availableSeats"`
	Selected       int              `json:"selected"`
	Waitlisted     int              `json:"waitlisted"`
	Rejected       int              `json:"rejected"`
	Entries        []MeritListEntry `json:"entries"`
}

// UploadDocumentForm is the non-file part of a document upload
type UploadDocumentForm struct {
	DocumentType string `form:"documentType" binding:"required,max=50" example:"INTER_TRANSCRIPT"`
}

// EnrollmentResponse is returned when a selected applicant becomes a student
type EnrollmentResponse struct {
	Application *models.AdmissionApplication `json:"application"`
	Student     *models.Student              `json:"student"`
}
