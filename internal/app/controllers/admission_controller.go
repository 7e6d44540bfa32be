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

// AdmissionController handles applications, merit lists and enrollment
type AdmissionController struct {
	admissionService services.AdmissionService
	logger           zerolog.Logger
}

// NewAdmissionController creates a new AdmissionController
func NewAdmissionController(admissionService services.AdmissionService, logger zerolog.Logger) *AdmissionController {
	return &AdmissionController{
		admissionService: admissionService,
		logger:           logger,
	}
}

// SubmitApplication accepts a public admission application
// @Summary Submit application
// @Description Public endpoint. The eligibility score is computed from matric, intermediate and optional entry test marks.
// @Tags admissions
// @Accept json
// @Produce json
// @Param request body dto.ApplicationRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=models.AdmissionApplication} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid marks or inactive program"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate application"
// @Router /admissions/applications [post]
func (c *AdmissionController) SubmitApplication(ctx *gin.Context) {
	var req dto.ApplicationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.admissionService.SubmitApplication(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("applicationId", app.ID).Int64("programId", app.ProgramID).Msg("Admission application submitted")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(app, "Application submitted successfully"))
}

// GetApplication retrieves an application
// @Summary Get application
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.AdmissionApplication}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admissions/applications/{id} [get]
func (c *AdmissionController) GetApplication(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}

	app, err := c.admissionService.GetApplication(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, ""))
}

// ListApplications lists applications on the caller's campus
// @Summary List applications
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param programId query int false "Filter by program"
// @Param campusId query int false "Filter by campus (SUPER_ADMIN)"
// @Param session query string false "Filter by session year"
// @Param status query string false "Filter by status"
// @Param search query string false "Match applicant name or email"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.AdmissionApplication}
// @Router /admissions/applications [get]
func (c *AdmissionController) ListApplications(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	programID, ok := queryInt64(ctx, "programId")
	if !ok {
		return
	}
	campusID, ok := queryInt64(ctx, "campusId")
	if !ok {
		return
	}
	filter := dto.ApplicationFilter{
		ProgramID: programID,
		CampusID:  campusID,
		Session:   queryString(ctx, "session"),
		Status:    queryEnum[models.ApplicationStatus](ctx, "status"),
		Search:    queryString(ctx, "search"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	apps, total, err := c.admissionService.ListApplications(ctx.Request.Context(), actor, filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, apps, total, page, size)
}

// UpdateApplication edits an application that is still open
// @Summary Update application
// @Tags admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.ApplicationRequest true "Application"
// @Success 200 {object} dto.APIResponse{data=models.AdmissionApplication}
// @Failure 409 {object} dto.ErrorResponse "Application is no longer editable"
// @Router /admissions/applications/{id} [put]
func (c *AdmissionController) UpdateApplication(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}
	var req dto.ApplicationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.admissionService.UpdateApplication(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, "Application updated successfully"))
}

// UpdateApplicationStatus moves an application through review
// @Summary Change application status
// @Tags admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.AdmissionApplication}
// @Failure 409 {object} dto.ErrorResponse "Transition not allowed"
// @Router /admissions/applications/{id}/status [patch]
func (c *AdmissionController) UpdateApplicationStatus(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.admissionService.UpdateStatus(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, "Application status updated"))
}

// DeleteApplication removes an application that was never admitted
// @Summary Delete application
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Application already admitted"
// @Router /admissions/applications/{id} [delete]
func (c *AdmissionController) DeleteApplication(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}

	if err := c.admissionService.DeleteApplication(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Application deleted successfully"))
}

// UploadDocument attaches a scanned document to an application
// @Summary Upload application document
// @Tags admissions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param documentType formData string true "Document type, e.g. CNIC or TRANSCRIPT"
// @Param file formData file true "Document file"
// @Success 201 {object} dto.APIResponse{data=models.ApplicationDocument}
// @Failure 400 {object} dto.ErrorResponse "Missing file or unsupported type"
// @Router /admissions/applications/{id}/documents [post]
func (c *AdmissionController) UploadDocument(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "No document provided").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	doc, err := c.admissionService.UploadDocument(ctx.Request.Context(), actor, id, ctx.PostForm("documentType"), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(doc, "Document uploaded successfully"))
}

// ListDocuments lists an application's documents
// @Summary List application documents
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]models.ApplicationDocument}
// @Router /admissions/applications/{id}/documents [get]
func (c *AdmissionController) ListDocuments(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}

	docs, err := c.admissionService.ListDocuments(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(docs, ""))
}

// GenerateMeritList ranks the pool and assigns seats
// @Summary Generate merit list
// @Description Ranks SUBMITTED, UNDER_REVIEW and WAITLISTED applications by eligibility score, selects up to the available seats and waitlists the rest. Applicants below the program's minimum percentage are rejected.
// @Tags admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateMeritListRequest true "Program and session"
// @Success 200 {object} dto.APIResponse{data=dto.MeritListResponse}
// @Failure 403 {object} dto.ErrorResponse "Program outside the caller's campus"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /admissions/merit-lists [post]
func (c *AdmissionController) GenerateMeritList(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.GenerateMeritListRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.admissionService.GenerateMeritList(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("programId", req.ProgramID).
		Str("session", req.Session).
		Int("selected", resp.Selected).
		Int("waitlisted", resp.Waitlisted).
		Msg("Merit list generated")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Merit list generated"))
}

// GetMeritList returns the current ranking
// @Summary Get merit list
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param programId query int true "Program ID"
// @Param session query string true "Session year"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]dto.MeritListEntry}
// @Failure 400 {object} dto.ErrorResponse "programId and session are required"
// @Router /admissions/merit-lists [get]
func (c *AdmissionController) GetMeritList(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	programID, ok := queryInt64(ctx, "programId")
	if !ok {
		return
	}
	session := queryString(ctx, "session")
	if programID == nil || session == nil {
		invalidQuery(ctx, "programId", "programId and session are required")
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	entries, total, err := c.admissionService.GetMeritList(ctx.Request.Context(), actor, *programID, *session, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, entries, total, page, size)
}

// Enroll admits a SELECTED applicant and creates the student record
// @Summary Enroll applicant
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 201 {object} dto.APIResponse{data=dto.EnrollmentResponse}
// @Failure 409 {object} dto.ErrorResponse "Application is not SELECTED"
// @Router /admissions/applications/{id}/enroll [post]
func (c *AdmissionController) Enroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}

	resp, err := c.admissionService.Enroll(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("applicationId", id).Int64("studentId", resp.Student.ID).Msg("Applicant enrolled")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Applicant enrolled successfully"))
}
