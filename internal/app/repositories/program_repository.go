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

// ProgramRepository handles database operations for degree programs
type ProgramRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{db: db, sb: statementBuilder()}
}

func (r *ProgramRepository) selectQuery() squirrel.SelectBuilder {
	return r.sb.Select(
		"p.id", "p.department_id", "d.campus_id", "p.name", "p.code", "p.duration_years",
		"p.total_seats", "p.min_percentage", "p.is_active", "p.created_at", "p.updated_at",
	).From("programs p").Join("departments d ON d.id = p.department_id")
}

func scanProgram(row pgx.Row) (*models.Program, error) {
	var p models.Program
	err := row.Scan(&p.ID, &p.DepartmentID, &p.CampusID, &p.Name, &p.Code, &p.DurationYears,
		&p.TotalSeats, &p.MinPercentage, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func mapProgramWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "programs_code_key"):
		return apperrors.ErrProgramAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrDepartmentNotFound
	}
	return fmt.Errorf("error saving program: %w", err)
}

// Create creates a new program
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	sql, args, err := r.sb.Insert("programs").
		Columns("department_id", "name", "code", "duration_years", "total_seats", "min_percentage", "is_active").
		Values(program.DepartmentID, program.Name, program.Code, program.DurationYears,
			program.TotalSeats, program.MinPercentage, program.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create program query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&program.ID, &program.CreatedAt, &program.UpdatedAt); err != nil {
		return mapProgramWriteError(err)
	}
	return nil
}

// GetByID retrieves a program with its campus
func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*models.Program, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get program query: %w", err)
	}

	program, err := scanProgram(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProgramNotFound
		}
		return nil, fmt.Errorf("error retrieving program: %w", err)
	}
	return program, nil
}

// List returns a page of programs
func (r *ProgramRepository) List(ctx context.Context, filter dto.ProgramFilter, offset, limit uint64) ([]*models.Program, int64, error) {
	conds := squirrel.And{}
	if filter.CampusID != nil {
		conds = append(conds, squirrel.Eq{"d.campus_id": *filter.CampusID})
	}
	if filter.DepartmentID != nil {
		conds = append(conds, squirrel.Eq{"p.department_id": *filter.DepartmentID})
	}
	if filter.IsActive != nil {
		conds = append(conds, squirrel.Eq{"p.is_active": *filter.IsActive})
	}
	if filter.Search != nil {
		pattern := likePattern(*filter.Search)
		conds = append(conds, squirrel.Or{squirrel.ILike{"p.name": pattern}, squirrel.ILike{"p.code": pattern}})
	}

	countQuery := r.sb.Select("COUNT(*)").From("programs p").Join("departments d ON d.id = p.department_id").Where(conds)
	total, err := countRows(ctx, r.db, countQuery)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.selectQuery().Where(conds).OrderBy("p.code").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list programs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing programs: %w", err)
	}
	defer rows.Close()

	programs := make([]*models.Program, 0)
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, total, rows.Err()
}

// Update updates an existing program
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program) error {
	sql, args, err := r.sb.Update("programs").
		Set("department_id", program.DepartmentID).
		Set("name", program.Name).
		Set("code", program.Code).
		Set("duration_years", program.DurationYears).
		Set("total_seats", program.TotalSeats).
		Set("min_percentage", program.MinPercentage).
		Set("is_active", program.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": program.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update program query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&program.CreatedAt, &program.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrProgramNotFound
		}
		return mapProgramWriteError(err)
	}
	return nil
}

// HasApplications reports whether any admission application references the program
func (r *ProgramRepository) HasApplications(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db, `SELECT 1 FROM admission_applications WHERE program_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error checking program relations: %w", err)
	}
	return found, nil
}

// Delete deletes a program by ID
func (r *ProgramRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrProgramHasRelations
		}
		return fmt.Errorf("error deleting program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProgramNotFound
	}
	return nil
}
