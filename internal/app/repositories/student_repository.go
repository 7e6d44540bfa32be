package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var studentColumns = []string{
	"id", "campus_id", "department_id", "program_id", "application_id", "roll_number", "full_name",
	"email", "phone", "date_of_birth", "batch", "status", "enrolled_on", "created_at", "updated_at",
}

// StudentRepository handles database operations for students
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db, sb: statementBuilder()}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.CampusID, &s.DepartmentID, &s.ProgramID, &s.ApplicationID, &s.RollNumber,
		&s.FullName, &s.Email, &s.Phone, &s.DateOfBirth, &s.Batch, &s.Status, &s.EnrolledOn,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func mapStudentWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "students_roll_number_key"),
		dberrors.IsDuplicateConstraintError(err, "students_email_key"),
		dberrors.IsDuplicateConstraintError(err, "students_application_key"):
		return apperrors.ErrStudentAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrProgramNotFound
	}
	return fmt.Errorf("error saving student: %w", err)
}

// insertStudent is shared by direct creation and enrollment
func insertStudent(ctx context.Context, sb squirrel.StatementBuilderType, q DBTX, s *models.Student) error {
	sql, args, err := sb.Insert("students").
		Columns("campus_id", "department_id", "program_id", "application_id", "roll_number", "full_name",
			"email", "phone", "date_of_birth", "batch", "status", "enrolled_on").
		Values(s.CampusID, s.DepartmentID, s.ProgramID, s.ApplicationID, s.RollNumber, s.FullName,
			s.Email, s.Phone, s.DateOfBirth, s.Batch, s.Status, s.EnrolledOn).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return mapStudentWriteError(err)
	}
	return nil
}

// Create creates a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return insertStudent(ctx, r.sb, r.db, student)
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// List returns a page of students
func (r *StudentRepository) List(ctx context.Context, filter dto.StudentFilter, offset, limit uint64) ([]*models.Student, int64, error) {
	conds := squirrel.And{}
	if filter.CampusID != nil {
		conds = append(conds, squirrel.Eq{"campus_id": *filter.CampusID})
	}
	if filter.DepartmentID != nil {
		conds = append(conds, squirrel.Eq{"department_id": *filter.DepartmentID})
	}
	if filter.ProgramID != nil {
		conds = append(conds, squirrel.Eq{"program_id": *filter.ProgramID})
	}
	if filter.Batch != nil {
		conds = append(conds, squirrel.Eq{"batch": *filter.Batch})
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"status": *filter.Status})
	}
	if filter.Search != nil {
		pattern := likePattern(*filter.Search)
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"full_name": pattern},
			squirrel.ILike{"roll_number": pattern},
			squirrel.ILike{"email": pattern},
		})
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("students").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.sb.Select(studentColumns...).From("students").Where(conds).
		OrderBy("roll_number").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// Update updates an existing student
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Update("students").
		Set("campus_id", s.CampusID).
		Set("department_id", s.DepartmentID).
		Set("program_id", s.ProgramID).
		Set("roll_number", s.RollNumber).
		Set("full_name", s.FullName).
		Set("email", s.Email).
		Set("phone", s.Phone).
		Set("date_of_birth", s.DateOfBirth).
		Set("batch", s.Batch).
		Set("status", s.Status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING enrolled_on, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.EnrolledOn, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStudentNotFound
		}
		return mapStudentWriteError(err)
	}
	return nil
}

// Delete deletes a student by ID
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrStudentHasRelations
		}
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}
