package dto

import (
	"time"

	"github.com/campusly/campusly/internal/app/models"
)

// IssueCertificateRequest issues a certificate to a student
type IssueCertificateRequest struct {
	StudentID       int64                  `json:"studentId" binding:"required,min=1" example:"12"`
	CertificateType models.CertificateType `json:"certificateType" binding:"required" example:"BONAFIDE"`
	Title           string                 `json:"title" binding:"required,max=255" example:"Bonafide Certificate"`
	IssuedOn        *string                `json:"issuedOn" binding:"omitempty,datetime=2006-01-02"`
}

// RevokeCertificateRequest revokes an issued certificate
type RevokeCertificateRequest struct {
	Reason string `json:"reason" binding:"required" example:"Issued in error"`
}

// CertificateFilter narrows certificate listings
type CertificateFilter struct {
	StudentID       *int64
	CampusID        *int64
	CertificateType *models.CertificateType
	Status          *models.CertificateStatus
}

// CertificateVerification is the public result of a serial lookup
type CertificateVerification struct {
	Valid           bool                     `json:"valid"`
	SerialNumber    string                   `json:"serialNumber"`
	Status          models.CertificateStatus `json:"status,omitempty"`
	StudentName     string                   `json:"studentName,omitempty"`
	CertificateType models.CertificateType   `json:"certificateType,omitempty"`
	IssuedOn        *time.Time               `json:"issuedOn,omitempty"`
}
