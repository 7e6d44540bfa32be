package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the admission workflow state
type ApplicationStatus string

const (
	ApplicationSubmitted   ApplicationStatus = "SUBMITTED"
	ApplicationUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationSelected    ApplicationStatus = "SELECTED"
	ApplicationWaitlisted  ApplicationStatus = "WAITLISTED"
	ApplicationAdmitted    ApplicationStatus = "ADMITTED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
)

// applicationTransitions lists the manual status changes; SELECTED and WAITLISTED
// are also assigned by merit list runs, and ADMITTED only by enrollment.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationSubmitted:   {ApplicationUnderReview, ApplicationRejected},
	ApplicationUnderReview: {ApplicationSelected, ApplicationWaitlisted, ApplicationRejected},
	ApplicationSelected:    {ApplicationAdmitted},
	ApplicationWaitlisted:  {ApplicationSelected, ApplicationRejected},
}

// IsValid reports whether s is a known status
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationSubmitted, ApplicationUnderReview, ApplicationSelected,
		ApplicationWaitlisted, ApplicationAdmitted, ApplicationRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the workflow allows moving from s to next
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsEditable reports whether applicant details may still change
func (s ApplicationStatus) IsEditable() bool {
	return s == ApplicationSubmitted || s == ApplicationUnderReview
}

// InMeritPool reports whether a merit list run considers applications in this state
func (s ApplicationStatus) InMeritPool() bool {
	switch s {
	case ApplicationSubmitted, ApplicationUnderReview, ApplicationSelected, ApplicationWaitlisted:
		return true
	}
	return false
}

// AdmissionApplication is one applicant's request for a program seat
type AdmissionApplication struct {
	ID               int64               `json:"id" db:"id"`
	ProgramID        int64               `json:"programId" db:"program_id"`
	Session          string              `json:"session" db:"session"`
	ApplicantName    string              `json:"applicantName" db:"applicant_name"`
	ApplicantEmail   string              `json:"applicantEmail" db:"applicant_email"`
	ApplicantPhone   *string             `json:"applicantPhone,omitempty" db:"applicant_phone"`
	DateOfBirth      time.Time           `json:"dateOfBirth" db:"date_of_birth"`
	MatricObtained   decimal.Decimal     `json:"matricObtained" db:"matric_obtained"`
	MatricTotal      decimal.Decimal     `json:"matricTotal" db:"matric_total"`
	InterObtained    decimal.Decimal     `json:"interObtained" db:"inter_obtained"`
	InterTotal       decimal.Decimal     `json:"interTotal" db:"inter_total"`
	TestObtained     decimal.NullDecimal `json:"testObtained" db:"test_obtained"`
	TestTotal        decimal.NullDecimal `json:"testTotal" db:"test_total"`
	EligibilityScore decimal.Decimal     `json:"eligibilityScore" db:"eligibility_score"`
	MeritRank        *int                `json:"meritRank,omitempty" db:"merit_rank"`
	Status           ApplicationStatus   `json:"status" db:"status"`
	Remarks          *string             `json:"remarks,omitempty" db:"remarks"`
	ReviewedBy       *int64              `json:"reviewedBy,omitempty" db:"reviewed_by"`
	SubmittedAt      time.Time           `json:"submittedAt" db:"submitted_at"`
	CreatedAt        time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time           `json:"updatedAt" db:"updated_at"`
}

// ApplicationDocument is an uploaded supporting file
type ApplicationDocument struct {
	ID            int64     `json:"id" db:"id"`
	ApplicationID int64     `json:"applicationId" db:"application_id"`
	DocumentType  string    `json:"documentType" db:"document_type"`
	OriginalName  string    `json:"originalName" db:"original_name"`
	StoragePath   string    `json:"-" db:"storage_path"`
	URL           string    `json:"url" db:"url"`
	FileSize      int64     `json:"fileSize" db:"file_size"`
	MimeType      string    `json:"mimeType" db:"mime_type"`
	UploadedAt    time.Time `json:"uploadedAt" db:"uploaded_at"`
}

// MeritEntryUpdate is one persisted outcome of a merit list run
type MeritEntryUpdate struct {
	ApplicationID int64
	Rank          *int
	Status        ApplicationStatus
	Remarks       *string
}
