package controllers

import (
	"context"
	"net/http"
	"testing"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCertificateService struct {
	mock.Mock
}

func (m *mockCertificateService) IssueCertificate(ctx context.Context, actor authz.Actor, req *dto.IssueCertificateRequest) (*models.Certificate, error) {
	args := m.Called(ctx, actor, req)
	c, _ := args.Get(0).(*models.Certificate)
	return c, args.Error(1)
}

func (m *mockCertificateService) GetCertificate(ctx context.Context, actor authz.Actor, id int64) (*models.Certificate, error) {
	args := m.Called(ctx, actor, id)
	c, _ := args.Get(0).(*models.Certificate)
	return c, args.Error(1)
}

func (m *mockCertificateService) ListCertificates(ctx context.Context, actor authz.Actor, filter dto.CertificateFilter, page, size int) ([]*models.Certificate, int64, error) {
	args := m.Called(ctx, actor, filter, page, size)
	c, _ := args.Get(0).([]*models.Certificate)
	return c, args.Get(1).(int64), args.Error(2)
}

func (m *mockCertificateService) RevokeCertificate(ctx context.Context, actor authz.Actor, id int64, req *dto.RevokeCertificateRequest) (*models.Certificate, error) {
	args := m.Called(ctx, actor, id, req)
	c, _ := args.Get(0).(*models.Certificate)
	return c, args.Error(1)
}

func (m *mockCertificateService) VerifyCertificate(ctx context.Context, serial string) (*dto.CertificateVerification, error) {
	args := m.Called(ctx, serial)
	v, _ := args.Get(0).(*dto.CertificateVerification)
	return v, args.Error(1)
}

func newCertificateRouter(svc *mockCertificateService) *gin.Engine {
	ctrl := NewCertificateController(svc, zerolog.Nop())
	r := gin.New()
	r.GET("/certificates/verify/:serial", ctrl.VerifyCertificate)
	admin := authz.Actor{UserID: 2, Role: models.RoleAdmin, CampusID: models.Int64Ptr(1)}
	g := r.Group("/certificates", withActor(admin))
	g.POST("", ctrl.IssueCertificate)
	g.POST("/:id/revoke", ctrl.RevokeCertificate)
	return r
}

func TestVerifyCertificateIsPublic(t *testing.T) {
	svc := new(mockCertificateService)
	r := newCertificateRouter(svc)
	svc.On("VerifyCertificate", mock.Anything, "CERT-2025-1A2B3C4D").
		Return(&dto.CertificateVerification{Valid: true, SerialNumber: "CERT-2025-1A2B3C4D", Status: models.CertificateIssued}, nil).Once()
	svc.On("VerifyCertificate", mock.Anything, "CERT-1999-00000000").
		Return(&dto.CertificateVerification{SerialNumber: "CERT-1999-00000000"}, nil).Once()

	w := doJSON(r, http.MethodGet, "/certificates/verify/CERT-2025-1A2B3C4D", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)

	w = doJSON(r, http.MethodGet, "/certificates/verify/CERT-1999-00000000", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
	svc.AssertExpectations(t)
}

func TestIssueCertificateNotEligible(t *testing.T) {
	svc := new(mockCertificateService)
	r := newCertificateRouter(svc)
	svc.On("IssueCertificate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewBadRequestError("student must be graduated to receive a DEGREE certificate")).Once()

	w := doJSON(r, http.MethodPost, "/certificates", `{"studentId":2,"certificateType":"DEGREE","title":"Bachelor of Science"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be graduated")
}

func TestRevokeCertificateRequiresReason(t *testing.T) {
	svc := new(mockCertificateService)
	r := newCertificateRouter(svc)

	w := doJSON(r, http.MethodPost, "/certificates/5/revoke", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"reason"`)
	svc.AssertNotCalled(t, "RevokeCertificate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
