package services

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/app/repositories"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCertificateSerial(t *testing.T) {
	serial := NewCertificateSerial(2025)
	assert.Regexp(t, regexp.MustCompile(`^CERT-2025-[0-9A-F]{8}$`), serial)
	assert.NotEqual(t, serial, NewCertificateSerial(2025))
}

func newCertificateFixture(collisions int) (*certificateService, *fakeCertificates, authz.Actor) {
	store := &fakeCertificates{collisions: collisions}
	students := fakeStudents{
		1: {ID: 1, CampusID: 1, FullName: "Zara Ali", RollNumber: "BSCS-2021-0001", Status: models.StudentGraduated},
		2: {ID: 2, CampusID: 1, FullName: "Usman Tariq", RollNumber: "BSCS-2023-0007", Status: models.StudentActive},
	}
	svc := NewCertificateService(store, students, testLogger).(*certificateService)
	svc.now = fixedClock

	n := 0
	svc.newSerial = func(year int) string {
		n++
		return fmt.Sprintf("CERT-%d-%08X", year, n)
	}

	campus := int64(1)
	return svc, store, authz.Actor{UserID: 3, Role: models.RoleAdmin, CampusID: &campus}
}

func TestIssueCertificate(t *testing.T) {
	ctx := context.Background()

	t.Run("degree requires graduation", func(t *testing.T) {
		svc, _, actor := newCertificateFixture(0)
		_, err := svc.IssueCertificate(ctx, actor, &dto.IssueCertificateRequest{
			StudentID: 2, CertificateType: models.CertificateDegree, Title: "Bachelor of Science",
		})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)

		cert, err := svc.IssueCertificate(ctx, actor, &dto.IssueCertificateRequest{
			StudentID: 2, CertificateType: models.CertificateBonafide, Title: "Bonafide Certificate",
		})
		require.NoError(t, err)
		assert.Equal(t, models.CertificateIssued, cert.Status)
		assert.Equal(t, 2025, cert.IssuedOn.Year())
	})

	t.Run("retries serial collisions", func(t *testing.T) {
		svc, store, actor := newCertificateFixture(2)
		cert, err := svc.IssueCertificate(ctx, actor, &dto.IssueCertificateRequest{
			StudentID: 1, CertificateType: models.CertificateDegree, Title: "Bachelor of Science",
		})
		require.NoError(t, err)
		assert.Equal(t, "CERT-2025-00000003", cert.SerialNumber)
		assert.Contains(t, store.bySerial, cert.SerialNumber)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		svc, _, actor := newCertificateFixture(serialAttempts)
		_, err := svc.IssueCertificate(ctx, actor, &dto.IssueCertificateRequest{
			StudentID: 1, CertificateType: models.CertificateCharacter, Title: "Character Certificate",
		})
		assert.ErrorIs(t, err, repositories.ErrDuplicateSerial)
	})
}

func TestVerifyCertificate(t *testing.T) {
	ctx := context.Background()
	svc, store, actor := newCertificateFixture(0)

	cert, err := svc.IssueCertificate(ctx, actor, &dto.IssueCertificateRequest{
		StudentID: 1, CertificateType: models.CertificateDegree, Title: "Bachelor of Science",
	})
	require.NoError(t, err)

	result, err := svc.VerifyCertificate(ctx, "  "+cert.SerialNumber+" ")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "Zara Ali", result.StudentName)

	store.bySerial[cert.SerialNumber].Status = models.CertificateRevoked
	result, err = svc.VerifyCertificate(ctx, cert.SerialNumber)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, models.CertificateRevoked, result.Status)

	result, err = svc.VerifyCertificate(ctx, "CERT-1999-DEADBEEF")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Empty(t, result.Status)
}
