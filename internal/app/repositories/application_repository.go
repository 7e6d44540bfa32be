package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/db"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/dberrors"
	"github.com/campusly/campusly/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var applicationColumns = []string{
	"a.id", "a.program_id", "a.session", "a.applicant_name", "a.applicant_email", "a.applicant_phone",
	"a.date_of_birth", "a.matric_obtained", "a.matric_total", "a.inter_obtained", "a.inter_total",
	"a.test_obtained", "a.test_total", "a.eligibility_score", "a.merit_rank", "a.status", "a.remarks",
	"a.reviewed_by", "a.submitted_at", "a.created_at", "a.updated_at",
}

var meritPoolStatuses = []models.ApplicationStatus{
	models.ApplicationSubmitted, models.ApplicationUnderReview,
	models.ApplicationSelected, models.ApplicationWaitlisted,
}

// ApplicationRepository handles admission applications and their documents
type ApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db, sb: statementBuilder()}
}

func (r *ApplicationRepository) selectQuery() squirrel.SelectBuilder {
	return r.sb.Select(applicationColumns...).From("admission_applications a")
}

func scanApplication(row pgx.Row) (*models.AdmissionApplication, error) {
	var a models.AdmissionApplication
	err := row.Scan(
		&a.ID, &a.ProgramID, &a.Session, &a.ApplicantName, &a.ApplicantEmail, &a.ApplicantPhone,
		&a.DateOfBirth, &a.MatricObtained, &a.MatricTotal, &a.InterObtained, &a.InterTotal,
		&a.TestObtained, &a.TestTotal, &a.EligibilityScore, &a.MeritRank, &a.Status, &a.Remarks,
		&a.ReviewedBy, &a.SubmittedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectApplications(rows pgx.Rows) ([]*models.AdmissionApplication, error) {
	defer rows.Close()
	apps := make([]*models.AdmissionApplication, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func mapApplicationWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "admission_applications_program_session_email_key"):
		return apperrors.ErrApplicationAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrProgramNotFound
	}
	return fmt.Errorf("error saving application: %w", err)
}

// Create inserts a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *models.AdmissionApplication) error {
	sql, args, err := r.sb.Insert("admission_applications").
		Columns("program_id", "session", "applicant_name", "applicant_email", "applicant_phone",
			"date_of_birth", "matric_obtained", "matric_total", "inter_obtained", "inter_total",
			"test_obtained", "test_total", "eligibility_score", "status").
		Values(app.ProgramID, app.Session, app.ApplicantName, app.ApplicantEmail, app.ApplicantPhone,
			app.DateOfBirth, app.MatricObtained, app.MatricTotal, app.InterObtained, app.InterTotal,
			app.TestObtained, app.TestTotal, app.EligibilityScore, app.Status).
		Suffix("RETURNING id, submitted_at, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&app.ID, &app.SubmittedAt, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return mapApplicationWriteError(err)
	}
	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.AdmissionApplication, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}
	return app, nil
}

// List returns a page of applications, highest score first
func (r *ApplicationRepository) List(ctx context.Context, filter dto.ApplicationFilter, offset, limit uint64) ([]*models.AdmissionApplication, int64, error) {
	conds := squirrel.And{}
	if filter.ProgramID != nil {
		conds = append(conds, squirrel.Eq{"a.program_id": *filter.ProgramID})
	}
	if filter.CampusID != nil {
		conds = append(conds, squirrel.Expr(
			"a.program_id IN (SELECT p.id FROM programs p JOIN departments d ON d.id = p.department_id WHERE d.campus_id = ?)",
			*filter.CampusID))
	}
	if filter.Session != nil {
		conds = append(conds, squirrel.Eq{"a.session": *filter.Session})
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"a.status": *filter.Status})
	}
	if filter.Search != nil {
		pattern := likePattern(*filter.Search)
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"a.applicant_name": pattern},
			squirrel.ILike{"a.applicant_email": pattern},
		})
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("admission_applications a").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.selectQuery().Where(conds).
		OrderBy("a.eligibility_score DESC", "a.submitted_at", "a.id").
		Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing applications: %w", err)
	}
	apps, err := collectApplications(rows)
	return apps, total, err
}

// Update rewrites applicant details and the recomputed score
func (r *ApplicationRepository) Update(ctx context.Context, app *models.AdmissionApplication) error {
	sql, args, err := r.sb.Update("admission_applications").
		Set("program_id", app.ProgramID).
		Set("session", app.Session).
		Set("applicant_name", app.ApplicantName).
		Set("applicant_email", app.ApplicantEmail).
		Set("applicant_phone", app.ApplicantPhone).
		Set("date_of_birth", app.DateOfBirth).
		Set("matric_obtained", app.MatricObtained).
		Set("matric_total", app.MatricTotal).
		Set("inter_obtained", app.InterObtained).
		Set("inter_total", app.InterTotal).
		Set("test_obtained", app.TestObtained).
		Set("test_total", app.TestTotal).
		Set("eligibility_score", app.EligibilityScore).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": app.ID, "status": []models.ApplicationStatus{models.ApplicationSubmitted, models.ApplicationUnderReview}}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update application query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&app.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewTransitionError("application can no longer be edited")
		}
		return mapApplicationWriteError(err)
	}
	return nil
}

// UpdateStatus moves an application from one status to another. The from
// status guards against concurrent reviewers.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, remarks *string, reviewedBy *int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE admission_applications
		SET status = $1, remarks = COALESCE($2, remarks), reviewed_by = COALESCE($3, reviewed_by), updated_at = NOW()
		WHERE id = $4 AND status = $5`,
		to, remarks, reviewedBy, id, from)
	if err != nil {
		return fmt.Errorf("error updating application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewTransitionError(fmt.Sprintf("application is no longer %s", from))
	}
	return nil
}

// Delete removes an application that is still SUBMITTED
func (r *ApplicationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM admission_applications WHERE id = $1 AND status = $2`, id, models.ApplicationSubmitted)
	if err != nil {
		return fmt.Errorf("error deleting application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewTransitionError("only submitted applications can be deleted")
	}
	return nil
}

// ListPool returns every application of a program and session that a merit list run considers
func (r *ApplicationRepository) ListPool(ctx context.Context, programID int64, session string) ([]*models.AdmissionApplication, error) {
	sql, args, err := r.selectQuery().
		Where(squirrel.Eq{"a.program_id": programID, "a.session": session, "a.status": meritPoolStatuses}).
		OrderBy("a.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build merit pool query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading merit pool: %w", err)
	}
	return collectApplications(rows)
}

// ListRanked returns the ranked applications of a program and session. Admitted applications
// keep the rank they were selected with and come first; the rest follow in current rank order.
func (r *ApplicationRepository) ListRanked(ctx context.Context, programID int64, session string) ([]*models.AdmissionApplication, error) {
	sql, args, err := r.selectQuery().
		Where(squirrel.Eq{"a.program_id": programID, "a.session": session}).
		Where(squirrel.NotEq{"a.merit_rank": nil}).
		OrderBy("(a.status = 'ADMITTED') DESC", "a.merit_rank", "a.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build merit list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading merit list: %w", err)
	}
	return collectApplications(rows)
}

// CountAdmitted returns how many seats of a program and session are already taken
func (r *ApplicationRepository) CountAdmitted(ctx context.Context, programID int64, session string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM admission_applications
		WHERE program_id = $1 AND session = $2 AND status = $3`,
		programID, session, models.ApplicationAdmitted).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting admitted applications: %w", err)
	}
	return n, nil
}

// ApplyMeritList persists ranks and statuses of one merit list run in a single transaction.
// An application that left the merit pool since it was read fails the whole run.
func (r *ApplicationRepository) ApplyMeritList(ctx context.Context, updates []models.MeritEntryUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	pool := make([]string, len(meritPoolStatuses))
	for i, st := range meritPoolStatuses {
		pool[i] = string(st)
	}

	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, u := range updates {
			batch.Queue(`
				UPDATE admission_applications
				SET merit_rank = $1, status = $2, remarks = COALESCE($3, remarks), updated_at = NOW()
				WHERE id = $4 AND status::text = ANY($5)`,
				u.Rank, u.Status, u.Remarks, u.ApplicationID, pool)
		}

		results := tx.SendBatch(ctx, batch)
		for _, u := range updates {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				logger.Error().Err(err).Int64("applicationID", u.ApplicationID).Msg("Error applying merit list entry")
				return fmt.Errorf("error applying merit list: %w", err)
			}
			if tag.RowsAffected() == 0 {
				_ = results.Close()
				return apperrors.NewTransitionError(fmt.Sprintf("application %d changed while the merit list was generated", u.ApplicationID))
			}
		}
		return results.Close()
	})
}

// Enroll creates a student from a SELECTED application and marks the application ADMITTED.
// rollNumber receives the next sequence number for the program and batch.
func (r *ApplicationRepository) Enroll(ctx context.Context, app *models.AdmissionApplication, student *models.Student, rollNumber func(seq int) string) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var programCode string
		// Serializes roll number allocation per program
		err := tx.QueryRow(ctx, `SELECT code FROM programs WHERE id = $1 FOR UPDATE`, app.ProgramID).Scan(&programCode)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrProgramNotFound
			}
			return fmt.Errorf("error locking program: %w", err)
		}

		var last int
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(CAST(SPLIT_PART(roll_number, '-', 3) AS INTEGER)), 0)
			FROM students
			WHERE program_id = $1 AND batch = $2 AND roll_number ~ ('^' || $3 || '-' || $2 || '-[0-9]+$')`,
			app.ProgramID, student.Batch, programCode).Scan(&last)
		if err != nil {
			return fmt.Errorf("error allocating roll number: %w", err)
		}
		student.RollNumber = rollNumber(last + 1)

		if err := insertStudent(ctx, r.sb, tx, student); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE admission_applications SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3`,
			models.ApplicationAdmitted, app.ID, models.ApplicationSelected)
		if err != nil {
			return fmt.Errorf("error admitting application: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewTransitionError("only selected applications can be enrolled")
		}
		app.Status = models.ApplicationAdmitted
		return nil
	})
}

// CreateDocument stores an uploaded document record
func (r *ApplicationRepository) CreateDocument(ctx context.Context, doc *models.ApplicationDocument) error {
	sql, args, err := r.sb.Insert("application_documents").
		Columns("application_id", "document_type", "original_name", "storage_path", "url", "file_size", "mime_type").
		Values(doc.ApplicationID, doc.DocumentType, doc.OriginalName, doc.StoragePath, doc.URL, doc.FileSize, doc.MimeType).
		Suffix("RETURNING id, uploaded_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create document query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&doc.ID, &doc.UploadedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrApplicationNotFound
		}
		return fmt.Errorf("error creating document: %w", err)
	}
	return nil
}

// ListDocuments returns the documents attached to an application
func (r *ApplicationRepository) ListDocuments(ctx context.Context, applicationID int64) ([]*models.ApplicationDocument, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, application_id, document_type, original_name, storage_path, url, file_size, mime_type, uploaded_at
		FROM application_documents WHERE application_id = $1 ORDER BY uploaded_at`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.ApplicationDocument, 0)
	for rows.Next() {
		var d models.ApplicationDocument
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.DocumentType, &d.OriginalName, &d.StoragePath,
			&d.URL, &d.FileSize, &d.MimeType, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("error scanning document: %w", err)
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}
