package models

import "time"

// CertificateType is the kind of document issued to a student
type CertificateType string

const (
	CertificateDegree     CertificateType = "DEGREE"
	CertificateCompletion CertificateType = "COMPLETION"
	CertificateCharacter  CertificateType = "CHARACTER"
	CertificateBonafide   CertificateType = "BONAFIDE"
	CertificateTranscript CertificateType = "TRANSCRIPT"
)

// IsValid reports whether t is a known certificate type
func (t CertificateType) IsValid() bool {
	switch t {
	case CertificateDegree, CertificateCompletion, CertificateCharacter, CertificateBonafide, CertificateTranscript:
		return true
	}
	return false
}

// RequiresGraduation reports whether only graduated students may receive this type
func (t CertificateType) RequiresGraduation() bool {
	return t == CertificateDegree || t == CertificateCompletion
}

// CertificateStatus is ISSUED until revoked
type CertificateStatus string

const (
	CertificateIssued  CertificateStatus = "ISSUED"
	CertificateRevoked CertificateStatus = "REVOKED"
)

// Certificate is an issued document with a verifiable serial
type Certificate struct {
	ID              int64             `json:"id" db:"id"`
	StudentID       int64             `json:"studentId" db:"student_id"`
	CertificateType CertificateType   `json:"certificateType" db:"certificate_type"`
	SerialNumber    string            `json:"serialNumber" db:"serial_number"`
	Title           string            `json:"title" db:"title"`
	IssuedOn        time.Time         `json:"issuedOn" db:"issued_on"`
	Status          CertificateStatus `json:"status" db:"status"`
	RevokedAt       *time.Time        `json:"revokedAt,omitempty" db:"revoked_at"`
	RevokeReason    *string           `json:"revokeReason,omitempty" db:"revoke_reason"`
	IssuedBy        *int64            `json:"issuedBy,omitempty" db:"issued_by"`
	CreatedAt       time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time         `json:"updatedAt" db:"updated_at"`

	StudentName string `json:"studentName,omitempty" db:"-"`
	RollNumber  string `json:"rollNumber,omitempty" db:"-"`
	CampusID    int64  `json:"campusId,omitempty" db:"-"`
}
