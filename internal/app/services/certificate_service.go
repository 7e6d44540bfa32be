package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/app/repositories"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const serialAttempts = 5

// CertificateService issues, revokes and verifies student certificates
type CertificateService interface {
	IssueCertificate(ctx context.Context, actor authz.Actor, req *dto.IssueCertificateRequest) (*models.Certificate, error)
	GetCertificate(ctx context.Context, actor authz.Actor, id int64) (*models.Certificate, error)
	ListCertificates(ctx context.Context, actor authz.Actor, filter dto.CertificateFilter, page, size int) ([]*models.Certificate, int64, error)
	RevokeCertificate(ctx context.Context, actor authz.Actor, id int64, req *dto.RevokeCertificateRequest) (*models.Certificate, error)
	VerifyCertificate(ctx context.Context, serial string) (*dto.CertificateVerification, error)
}

// CertificateStore persists certificates
type CertificateStore interface {
	Create(ctx context.Context, c *models.Certificate) error
	GetByID(ctx context.Context, id int64) (*models.Certificate, error)
	GetBySerial(ctx context.Context, serial string) (*models.Certificate, error)
	List(ctx context.Context, filter dto.CertificateFilter, offset, limit uint64) ([]*models.Certificate, int64, error)
	Revoke(ctx context.Context, id int64, reason string, at time.Time) error
}

// StudentReader loads students
type StudentReader interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
}

type certificateService struct {
	certRepo    CertificateStore
	studentRepo StudentReader
	logger      zerolog.Logger
	now         Clock
	newSerial   func(year int) string
}

// NewCertificateService creates a new CertificateService
func NewCertificateService(certRepo CertificateStore, studentRepo StudentReader, logger zerolog.Logger) CertificateService {
	return &certificateService{
		certRepo:    certRepo,
		studentRepo: studentRepo,
		logger:      logger,
		now:         time.Now,
		newSerial:   NewCertificateSerial,
	}
}

// NewCertificateSerial returns a serial of the form CERT-<year>-<8 uppercase hex>
func NewCertificateSerial(year int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("CERT-%d-%s", year, strings.ToUpper(id[:8]))
}

// IssueCertificate issues a certificate. Degree and completion certificates require a graduated student.
func (s *certificateService) IssueCertificate(ctx context.Context, actor authz.Actor, req *dto.IssueCertificateRequest) (*models.Certificate, error) {
	if !req.CertificateType.IsValid() {
		return nil, invalidf("unknown certificate type %q", req.CertificateType)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalidf("title is required")
	}
	issuedOn := helpers.DateOnly(s.now())
	if req.IssuedOn != nil {
		date, err := parseOptionalDate("issuedOn", req.IssuedOn)
		if err != nil {
			return nil, err
		}
		if date != nil {
			issuedOn = *date
		}
	}

	student, err := s.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(student.CampusID); err != nil {
		return nil, err
	}
	if req.CertificateType.RequiresGraduation() && student.Status != models.StudentGraduated {
		return nil, apperrors.NewBadRequestError(
			fmt.Sprintf("%s certificates can only be issued to graduated students", req.CertificateType))
	}

	issuedBy := actor.UserID
	cert := &models.Certificate{
		StudentID:       student.ID,
		CertificateType: req.CertificateType,
		Title:           title,
		IssuedOn:        issuedOn,
		Status:          models.CertificateIssued,
		IssuedBy:        &issuedBy,
		StudentName:     student.FullName,
		RollNumber:      student.RollNumber,
		CampusID:        student.CampusID,
	}

	for attempt := 1; ; attempt++ {
		cert.SerialNumber = s.newSerial(issuedOn.Year())
		err = s.certRepo.Create(ctx, cert)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrDuplicateSerial) || attempt == serialAttempts {
			return nil, err
		}
		s.logger.Warn().Str("serial", cert.SerialNumber).Int("attempt", attempt).Msg("Certificate serial collision, retrying")
	}

	s.logger.Info().
		Int64("certificateID", cert.ID).
		Int64("studentID", cert.StudentID).
		Str("serial", cert.SerialNumber).
		Str("type", string(cert.CertificateType)).
		Msg("Certificate issued")
	return cert, nil
}

// GetCertificate returns one certificate
func (s *certificateService) GetCertificate(ctx context.Context, actor authz.Actor, id int64) (*models.Certificate, error) {
	cert, err := s.certRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(cert.CampusID); err != nil {
		return nil, err
	}
	return cert, nil
}

// ListCertificates returns a page of certificates
func (s *certificateService) ListCertificates(ctx context.Context, actor authz.Actor, filter dto.CertificateFilter, page, size int) ([]*models.Certificate, int64, error) {
	campusID, err := actor.ScopeCampus(filter.CampusID)
	if err != nil {
		return nil, 0, err
	}
	filter.CampusID = campusID
	if filter.CertificateType != nil && !filter.CertificateType.IsValid() {
		return nil, 0, invalidf("unknown certificate type %q", *filter.CertificateType)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.certRepo.List(ctx, filter, offset, limit)
}

// RevokeCertificate revokes an issued certificate with a reason
func (s *certificateService) RevokeCertificate(ctx context.Context, actor authz.Actor, id int64, req *dto.RevokeCertificateRequest) (*models.Certificate, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, invalidf("reason is required")
	}
	cert, err := s.GetCertificate(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if cert.Status == models.CertificateRevoked {
		return nil, apperrors.NewTransitionError("certificate is already revoked")
	}

	at := s.now()
	if err := s.certRepo.Revoke(ctx, id, reason, at); err != nil {
		return nil, err
	}
	cert.Status = models.CertificateRevoked
	cert.RevokedAt = &at
	cert.RevokeReason = &reason

	s.logger.Info().Int64("certificateID", id).Str("serial", cert.SerialNumber).Msg("Certificate revoked")
	return cert, nil
}

// VerifyCertificate looks a serial up for public verification. Unknown serials are reported invalid, not as errors.
func (s *certificateService) VerifyCertificate(ctx context.Context, serial string) (*dto.CertificateVerification, error) {
	serial = strings.ToUpper(strings.TrimSpace(serial))
	result := &dto.CertificateVerification{SerialNumber: serial}
	if serial == "" {
		return result, nil
	}

	cert, err := s.certRepo.GetBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, apperrors.ErrCertificateNotFound) {
			return result, nil
		}
		return nil, err
	}

	issuedOn := cert.IssuedOn
	result.Valid = cert.Status == models.CertificateIssued
	result.Status = cert.Status
	result.StudentName = cert.StudentName
	result.CertificateType = cert.CertificateType
	result.IssuedOn = &issuedOn
	return result, nil
}
