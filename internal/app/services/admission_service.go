package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/email"
	"github.com/campusly/campusly/internal/pkg/filestorage"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/campusly/campusly/internal/pkg/merit"
	"github.com/campusly/campusly/internal/pkg/validation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RemarkBelowEligibility is recorded on pool members that fail the program threshold
const RemarkBelowEligibility = "below minimum eligibility"

// AdmissionService handles applications, merit lists and enrollment
type AdmissionService interface {
	SubmitApplication(ctx context.Context, req *dto.ApplicationRequest) (*models.AdmissionApplication, error)
	GetApplication(ctx context.Context, actor authz.Actor, id int64) (*models.AdmissionApplication, error)
	ListApplications(ctx context.Context, actor authz.Actor, filter dto.ApplicationFilter, page, size int) ([]*models.AdmissionApplication, int64, error)
	UpdateApplication(ctx context.Context, actor authz.Actor, id int64, req *dto.ApplicationRequest) (*models.AdmissionApplication, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateApplicationStatusRequest) (*models.AdmissionApplication, error)
	DeleteApplication(ctx context.Context, actor authz.Actor, id int64) error
	UploadDocument(ctx context.Context, actor authz.Actor, id int64, documentType string, file *multipart.FileHeader) (*models.ApplicationDocument, error)
	ListDocuments(ctx context.Context, actor authz.Actor, id int64) ([]*models.ApplicationDocument, error)
	GenerateMeritList(ctx context.Context, actor authz.Actor, req *dto.GenerateMeritListRequest) (*dto.MeritListResponse, error)
	GetMeritList(ctx context.Context, actor authz.Actor, programID int64, session string, page, size int) ([]dto.MeritListEntry, int64, error)
	Enroll(ctx context.Context, actor authz.Actor, id int64) (*dto.EnrollmentResponse, error)
}

// ApplicationStore persists admission applications
type ApplicationStore interface {
	Create(ctx context.Context, app *models.AdmissionApplication) error
	GetByID(ctx context.Context, id int64) (*models.AdmissionApplication, error)
	List(ctx context.Context, filter dto.ApplicationFilter, offset, limit uint64) ([]*models.AdmissionApplication, int64, error)
	Update(ctx context.Context, app *models.AdmissionApplication) error
	UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, remarks *string, reviewedBy *int64) error
	Delete(ctx context.Context, id int64) error
	ListPool(ctx context.Context, programID int64, session string) ([]*models.AdmissionApplication, error)
	ListRanked(ctx context.Context, programID int64, session string) ([]*models.AdmissionApplication, error)
	CountAdmitted(ctx context.Context, programID int64, session string) (int, error)
	ApplyMeritList(ctx context.Context, updates []models.MeritEntryUpdate) error
	Enroll(ctx context.Context, app *models.AdmissionApplication, student *models.Student, rollNumber func(seq int) string) error
	CreateDocument(ctx context.Context, doc *models.ApplicationDocument) error
	ListDocuments(ctx context.Context, applicationID int64) ([]*models.ApplicationDocument, error)
}

// ProgramReader loads programs
type ProgramReader interface {
	GetByID(ctx context.Context, id int64) (*models.Program, error)
}

type admissionService struct {
	appRepo     ApplicationStore
	programRepo ProgramReader
	storage     filestorage.FileStorage
	mailer      email.EmailService
	logger      zerolog.Logger
	now         Clock
}

// NewAdmissionService creates a new AdmissionService
func NewAdmissionService(
	appRepo ApplicationStore,
	programRepo ProgramReader,
	storage filestorage.FileStorage,
	mailer email.EmailService,
	logger zerolog.Logger,
) AdmissionService {
	return &admissionService{
		appRepo:     appRepo,
		programRepo: programRepo,
		storage:     storage,
		mailer:      mailer,
		logger:      logger,
		now:         time.Now,
	}
}

func checkMarks(name string, obtained, total decimal.Decimal) error {
	if !total.IsPositive() {
		return invalidf("%s total must be greater than zero", name)
	}
	if obtained.IsNegative() {
		return invalidf("%s obtained cannot be negative", name)
	}
	if obtained.GreaterThan(total) {
		return invalidf("%s obtained cannot exceed %s total", name, name)
	}
	return nil
}

// applicationFromRequest validates applicant input and computes the eligibility score
func (s *admissionService) applicationFromRequest(req *dto.ApplicationRequest) (*models.AdmissionApplication, error) {
	session := strings.TrimSpace(req.Session)
	if !validation.IsValidSession(session) {
		return nil, invalidf("session must be a four digit year")
	}
	applicantEmail := strings.ToLower(strings.TrimSpace(req.ApplicantEmail))
	if !validation.IsValidEmail(applicantEmail) {
		return nil, apperrors.ErrInvalidEmail
	}
	name := strings.TrimSpace(req.ApplicantName)
	if name == "" {
		return nil, invalidf("applicant name cannot be empty")
	}
	dob, err := parseDate("dateOfBirth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	if !dob.Before(helpers.DateOnly(s.now())) {
		return nil, invalidf("dateOfBirth must be in the past")
	}

	if err := checkMarks("matric", req.MatricObtained, req.MatricTotal); err != nil {
		return nil, err
	}
	if err := checkMarks("intermediate", req.InterObtained, req.InterTotal); err != nil {
		return nil, err
	}

	app := &models.AdmissionApplication{
		ProgramID:      req.ProgramID,
		Session:        session,
		ApplicantName:  name,
		ApplicantEmail: applicantEmail,
		ApplicantPhone: cleanOptional(req.ApplicantPhone),
		DateOfBirth:    dob,
		MatricObtained: req.MatricObtained,
		MatricTotal:    req.MatricTotal,
		InterObtained:  req.InterObtained,
		InterTotal:     req.InterTotal,
	}

	var test *merit.Marks
	switch {
	case req.TestObtained != nil && req.TestTotal != nil:
		if err := checkMarks("test", *req.TestObtained, *req.TestTotal); err != nil {
			return nil, err
		}
		app.TestObtained = decimal.NewNullDecimal(*req.TestObtained)
		app.TestTotal = decimal.NewNullDecimal(*req.TestTotal)
		test = &merit.Marks{Obtained: *req.TestObtained, Total: *req.TestTotal}
	case req.TestObtained != nil || req.TestTotal != nil:
		return nil, invalidf("testObtained and testTotal must be given together")
	}

	app.EligibilityScore = merit.Score(matricMarks(app), interMarks(app), test)
	return app, nil
}

func matricMarks(app *models.AdmissionApplication) merit.Marks {
	return merit.Marks{Obtained: app.MatricObtained, Total: app.MatricTotal}
}

func interMarks(app *models.AdmissionApplication) merit.Marks {
	return merit.Marks{Obtained: app.InterObtained, Total: app.InterTotal}
}

// SubmitApplication records a new application from the public form
func (s *admissionService) SubmitApplication(ctx context.Context, req *dto.ApplicationRequest) (*models.AdmissionApplication, error) {
	app, err := s.applicationFromRequest(req)
	if err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, app.ProgramID)
	if err != nil {
		return nil, err
	}
	if !program.IsActive {
		return nil, apperrors.NewBadRequestError("program is not accepting applications")
	}

	app.Status = models.ApplicationSubmitted
	app.SubmittedAt = s.now()
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("applicationID", app.ID).
		Int64("programID", app.ProgramID).
		Str("session", app.Session).
		Str("score", app.EligibilityScore.String()).
		Msg("Admission application submitted")
	return app, nil
}

// loadScoped returns an application and its program after checking the actor's campus
func (s *admissionService) loadScoped(ctx context.Context, actor authz.Actor, id int64) (*models.AdmissionApplication, *models.Program, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	program, err := s.programRepo.GetByID(ctx, app.ProgramID)
	if err != nil {
		return nil, nil, err
	}
	if err := actor.AuthorizeCampus(program.CampusID); err != nil {
		return nil, nil, err
	}
	return app, program, nil
}

// GetApplication returns one application
func (s *admissionService) GetApplication(ctx context.Context, actor authz.Actor, id int64) (*models.AdmissionApplication, error) {
	app, _, err := s.loadScoped(ctx, actor, id)
	return app, err
}

// ListApplications returns a page of applications ordered by score
func (s *admissionService) ListApplications(ctx context.Context, actor authz.Actor, filter dto.ApplicationFilter, page, size int) ([]*models.AdmissionApplication, int64, error) {
	campusID, err := actor.ScopeCampus(filter.CampusID)
	if err != nil {
		return nil, 0, err
	}
	filter.CampusID = campusID
	filter.Search = cleanOptional(filter.Search)
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, invalidf("unknown application status %q", *filter.Status)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.appRepo.List(ctx, filter, offset, limit)
}

// UpdateApplication rewrites applicant details and rescores while the application is editable
func (s *admissionService) UpdateApplication(ctx context.Context, actor authz.Actor, id int64, req *dto.ApplicationRequest) (*models.AdmissionApplication, error) {
	existing, _, err := s.loadScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !existing.Status.IsEditable() {
		return nil, apperrors.NewTransitionError(fmt.Sprintf("application in status %s can no longer be edited", existing.Status))
	}

	app, err := s.applicationFromRequest(req)
	if err != nil {
		return nil, err
	}
	if app.ProgramID != existing.ProgramID {
		program, err := s.programRepo.GetByID(ctx, app.ProgramID)
		if err != nil {
			return nil, err
		}
		if err := actor.AuthorizeCampus(program.CampusID); err != nil {
			return nil, err
		}
	}

	app.ID = existing.ID
	app.Status = existing.Status
	app.MeritRank = existing.MeritRank
	app.Remarks = existing.Remarks
	app.ReviewedBy = existing.ReviewedBy
	app.SubmittedAt = existing.SubmittedAt
	app.CreatedAt = existing.CreatedAt
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateStatus applies a manual review decision. SELECTED and WAITLISTED come
// from merit list runs and ADMITTED from enrollment.
func (s *admissionService) UpdateStatus(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateApplicationStatusRequest) (*models.AdmissionApplication, error) {
	if !req.Status.IsValid() {
		return nil, invalidf("unknown application status %q", req.Status)
	}
	if req.Status != models.ApplicationUnderReview && req.Status != models.ApplicationRejected {
		return nil, apperrors.NewTransitionError(fmt.Sprintf("status %s is assigned by merit list or enrollment", req.Status))
	}

	app, _, err := s.loadScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.NewTransitionError(fmt.Sprintf("cannot move application from %s to %s", app.Status, req.Status))
	}

	remarks := cleanOptional(req.Remarks)
	reviewer := actor.UserID
	if err := s.appRepo.UpdateStatus(ctx, id, app.Status, req.Status, remarks, &reviewer); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("applicationID", id).
		Str("from", string(app.Status)).
		Str("to", string(req.Status)).
		Int64("reviewedBy", reviewer).
		Msg("Application status changed")

	app.Status = req.Status
	app.ReviewedBy = &reviewer
	if remarks != nil {
		app.Remarks = remarks
	}
	return app, nil
}

// DeleteApplication removes an application that is still SUBMITTED
func (s *admissionService) DeleteApplication(ctx context.Context, actor authz.Actor, id int64) error {
	app, _, err := s.loadScoped(ctx, actor, id)
	if err != nil {
		return err
	}
	if app.Status != models.ApplicationSubmitted {
		return apperrors.NewTransitionError("only submitted applications can be deleted")
	}
	return s.appRepo.Delete(ctx, id)
}

// UploadDocument stores a supporting file for an application
func (s *admissionService) UploadDocument(ctx context.Context, actor authz.Actor, id int64, documentType string, file *multipart.FileHeader) (*models.ApplicationDocument, error) {
	if _, _, err := s.loadScoped(ctx, actor, id); err != nil {
		return nil, err
	}
	documentType = strings.ToUpper(strings.TrimSpace(documentType))
	if documentType == "" {
		return nil, invalidf("documentType is required")
	}

	info, err := s.storage.SaveFile(file, fmt.Sprintf("applications/%d", id))
	if err != nil {
		if errors.Is(err, filestorage.ErrFileTooLarge) || errors.Is(err, filestorage.ErrUnsupportedType) {
			return nil, apperrors.NewBadRequestError(err.Error())
		}
		return nil, fmt.Errorf("error storing document: %w", err)
	}

	doc := &models.ApplicationDocument{
		ApplicationID: id,
		DocumentType:  documentType,
		OriginalName:  info.OriginalName,
		StoragePath:   info.StoragePath,
		URL:           info.URL,
		FileSize:      info.FileSize,
		MimeType:      info.MimeType,
	}
	if err := s.appRepo.CreateDocument(ctx, doc); err != nil {
		if delErr := s.storage.DeleteFile(info.StoragePath); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", info.StoragePath).Msg("Failed to remove orphaned document file")
		}
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns the documents uploaded for an application
func (s *admissionService) ListDocuments(ctx context.Context, actor authz.Actor, id int64) ([]*models.ApplicationDocument, error) {
	if _, _, err := s.loadScoped(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.appRepo.ListDocuments(ctx, id)
}

func meritEntry(app *models.AdmissionApplication) dto.MeritListEntry {
	entry := dto.MeritListEntry{
		ApplicationID:    app.ID,
		ApplicantName:    app.ApplicantName,
		ApplicantEmail:   app.ApplicantEmail,
		EligibilityScore: app.EligibilityScore,
		InterPercentage:  interMarks(app).Percent().Round(2),
		Status:           app.Status,
		SubmittedAt:      app.SubmittedAt,
	}
	if app.MeritRank != nil {
		entry.Rank = *app.MeritRank
	}
	return entry
}

// GenerateMeritList ranks the pool of a program and session and persists the outcome.
// Ineligible applicants are rejected; the rest are ranked into the available seats.
func (s *admissionService) GenerateMeritList(ctx context.Context, actor authz.Actor, req *dto.GenerateMeritListRequest) (*dto.MeritListResponse, error) {
	session := strings.TrimSpace(req.Session)
	if !validation.IsValidSession(session) {
		return nil, invalidf("session must be a four digit year")
	}

	program, err := s.programRepo.GetByID(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(program.CampusID); err != nil {
		return nil, err
	}

	pool, err := s.appRepo.ListPool(ctx, program.ID, session)
	if err != nil {
		return nil, err
	}
	admitted, err := s.appRepo.CountAdmitted(ctx, program.ID, session)
	if err != nil {
		return nil, err
	}

	seats := program.TotalSeats
	if req.TotalSeats != nil {
		seats = *req.TotalSeats
	}
	seats -= admitted
	if seats < 0 {
		seats = 0
	}

	byID := make(map[int64]*models.AdmissionApplication, len(pool))
	candidates := make([]merit.Candidate, 0, len(pool))
	updates := make([]models.MeritEntryUpdate, 0, len(pool))
	resp := &dto.MeritListResponse{
		ProgramID:      program.ID,
		Session:        session,
		AvailableSeats: seats,
		Entries:        make([]dto.MeritListEntry, 0, len(pool)),
	}

	for _, app := range pool {
		byID[app.ID] = app
		if !merit.Eligible(interMarks(app), program.MinPercentage) {
			remark := RemarkBelowEligibility
			updates = append(updates, models.MeritEntryUpdate{
				ApplicationID: app.ID,
				Status:        models.ApplicationRejected,
				Remarks:       &remark,
			})
			resp.Rejected++
			continue
		}
		candidates = append(candidates, merit.Candidate{
			ID:           app.ID,
			Score:        app.EligibilityScore,
			InterPercent: interMarks(app).Percent(),
			SubmittedAt:  app.SubmittedAt,
		})
	}

	placements := merit.Rank(candidates, seats)
	for _, p := range placements {
		rank := p.Rank
		status := models.ApplicationStatus(p.Outcome)
		updates = append(updates, models.MeritEntryUpdate{ApplicationID: p.ID, Rank: &rank, Status: status})
		if status == models.ApplicationSelected {
			resp.Selected++
		} else {
			resp.Waitlisted++
		}
	}

	if err := s.appRepo.ApplyMeritList(ctx, updates); err != nil {
		return nil, err
	}

	var changed []*models.AdmissionApplication
	for _, u := range updates {
		app := byID[u.ApplicationID]
		previous := app.Status
		app.Status = u.Status
		app.MeritRank = u.Rank
		if u.Remarks != nil {
			app.Remarks = u.Remarks
		}
		if u.Rank != nil {
			resp.Entries = append(resp.Entries, meritEntry(app))
		}
		if previous != app.Status {
			changed = append(changed, app)
		}
	}

	s.logger.Info().
		Int64("programID", program.ID).
		Str("session", session).
		Int("pool", len(pool)).
		Int("seats", seats).
		Int("selected", resp.Selected).
		Int("waitlisted", resp.Waitlisted).
		Int("rejected", resp.Rejected).
		Int64("generatedBy", actor.UserID).
		Msg("Merit list generated")

	s.notifyDecisions(program, changed)
	return resp, nil
}

// notifyDecisions emails applicants whose status changed. Failures are logged only.
func (s *admissionService) notifyDecisions(program *models.Program, apps []*models.AdmissionApplication) {
	for _, app := range apps {
		msg := email.AdmissionDecision{
			ToEmail:     app.ApplicantEmail,
			ToName:      app.ApplicantName,
			ProgramName: program.Name,
			Session:     app.Session,
			Status:      string(app.Status),
			Rank:        app.MeritRank,
		}
		if app.Remarks != nil {
			msg.Remarks = *app.Remarks
		}
		if err := s.mailer.SendAdmissionDecision(msg); err != nil {
			s.logger.Warn().Err(err).Int64("applicationID", app.ID).Msg("Failed to send admission decision email")
		}
	}
}

// GetMeritList returns the persisted ranking of a program and session, paginated in memory
func (s *admissionService) GetMeritList(ctx context.Context, actor authz.Actor, programID int64, session string, page, size int) ([]dto.MeritListEntry, int64, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, 0, err
	}
	if err := actor.AuthorizeCampus(program.CampusID); err != nil {
		return nil, 0, err
	}

	ranked, err := s.appRepo.ListRanked(ctx, programID, strings.TrimSpace(session))
	if err != nil {
		return nil, 0, err
	}

	start, end := helpers.CalculateSliceIndices(page, size, len(ranked))
	entries := make([]dto.MeritListEntry, 0, end-start)
	for _, app := range ranked[start:end] {
		entries = append(entries, meritEntry(app))
	}
	return entries, int64(len(ranked)), nil
}

// Enroll turns a SELECTED application into a student with the next roll number
func (s *admissionService) Enroll(ctx context.Context, actor authz.Actor, id int64) (*dto.EnrollmentResponse, error) {
	app, program, err := s.loadScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationSelected {
		return nil, apperrors.NewTransitionError(fmt.Sprintf("only selected applications can be enrolled, application is %s", app.Status))
	}

	dob := app.DateOfBirth
	student := &models.Student{
		CampusID:      program.CampusID,
		DepartmentID:  program.DepartmentID,
		ProgramID:     program.ID,
		ApplicationID: &app.ID,
		FullName:      app.ApplicantName,
		Email:         app.ApplicantEmail,
		Phone:         app.ApplicantPhone,
		DateOfBirth:   &dob,
		Batch:         app.Session,
		Status:        models.StudentActive,
		EnrolledOn:    helpers.DateOnly(s.now()),
	}

	rollNumber := func(seq int) string {
		return fmt.Sprintf("%s-%s-%04d", program.Code, app.Session, seq)
	}
	if err := s.appRepo.Enroll(ctx, app, student, rollNumber); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("applicationID", app.ID).
		Int64("studentID", student.ID).
		Str("rollNumber", student.RollNumber).
		Msg("Applicant enrolled")

	return &dto.EnrollmentResponse{Application: app, Student: student}, nil
}
