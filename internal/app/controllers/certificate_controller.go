package controllers

import (
	"net/http"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/app/services"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CertificateController handles certificate issue, revocation and public verification
type CertificateController struct {
	certificateService services.CertificateService
	logger             zerolog.Logger
}

// NewCertificateController creates a new CertificateController
func NewCertificateController(certificateService services.CertificateService, logger zerolog.Logger) *CertificateController {
	return &CertificateController{
		certificateService: certificateService,
		logger:             logger,
	}
}

// IssueCertificate issues a certificate with a unique serial number
// @Summary Issue certificate
// @Description DEGREE and COMPLETION certificates require a GRADUATED student
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.IssueCertificateRequest true "Certificate details"
// @Success 201 {object} dto.APIResponse{data=models.Certificate}
// @Failure 400 {object} dto.ErrorResponse "Student not eligible"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /certificates [post]
func (c *CertificateController) IssueCertificate(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.IssueCertificateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	cert, err := c.certificateService.IssueCertificate(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("serial", cert.SerialNumber).Int64("studentId", cert.StudentID).Msg("Certificate issued")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(cert, "Certificate issued"))
}

// GetCertificate retrieves a certificate
// @Summary Get certificate
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {object} dto.APIResponse{data=models.Certificate}
// @Failure 404 {object} dto.ErrorResponse "Certificate not found"
// @Router /certificates/{id} [get]
func (c *CertificateController) GetCertificate(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Certificate")
	if !ok {
		return
	}

	cert, err := c.certificateService.GetCertificate(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(cert, ""))
}

// ListCertificates lists certificates
// @Summary List certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "Filter by student"
// @Param campusId query int false "Filter by campus (SUPER_ADMIN)"
// @Param certificateType query string false "Filter by type"
// @Param status query string false "ISSUED or REVOKED"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.Certificate}
// @Router /certificates [get]
func (c *CertificateController) ListCertificates(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	studentID, ok := queryInt64(ctx, "studentId")
	if !ok {
		return
	}
	campusID, ok := queryInt64(ctx, "campusId")
	if !ok {
		return
	}
	filter := dto.CertificateFilter{
		StudentID:       studentID,
		CampusID:        campusID,
		CertificateType: queryEnum[models.CertificateType](ctx, "certificateType"),
		Status:          queryEnum[models.CertificateStatus](ctx, "status"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	certs, total, err := c.certificateService.ListCertificates(ctx.Request.Context(), actor, filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, certs, total, page, size)
}

// RevokeCertificate revokes an issued certificate
// @Summary Revoke certificate
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Param request body dto.RevokeCertificateRequest true "Reason"
// @Success 200 {object} dto.APIResponse{data=models.Certificate}
// @Failure 409 {object} dto.ErrorResponse "Certificate already revoked"
// @Router /certificates/{id}/revoke [post]
func (c *CertificateController) RevokeCertificate(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Certificate")
	if !ok {
		return
	}
	var req dto.RevokeCertificateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	cert, err := c.certificateService.RevokeCertificate(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("serial", cert.SerialNumber).Msg("Certificate revoked")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(cert, "Certificate revoked"))
}

// VerifyCertificate checks a serial number
// @Summary Verify certificate
// @Description Public endpoint. Unknown serials return valid=false rather than 404.
// @Tags certificates
// @Produce json
// @Param serial path string true "Serial number, e.g. CERT-2025-1A2B3C4D"
// @Success 200 {object} dto.APIResponse{data=dto.CertificateVerification}
// @Router /certificates/verify/{serial} [get]
func (c *CertificateController) VerifyCertificate(ctx *gin.Context) {
	result, err := c.certificateService.VerifyCertificate(ctx.Request.Context(), ctx.Param("serial"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, ""))
}
