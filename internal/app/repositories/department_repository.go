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

var departmentColumns = []string{"id", "campus_id", "name", "code", "description", "created_at", "updated_at"}

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanDepartment(row pgx.Row) (*models.Department, error) {
	var d models.Department
	if err := row.Scan(&d.ID, &d.CampusID, &d.Name, &d.Code, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func mapDepartmentWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "departments_campus_code_key"),
		dberrors.IsDuplicateConstraintError(err, "departments_campus_name_key"):
		return apperrors.ErrDepartmentAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrCampusNotFound
	}
	return fmt.Errorf("error saving department: %w", err)
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	sql, args, err := r.sb.Insert("departments").
		Columns("campus_id", "name", "code", "description").
		Values(department.CampusID, department.Name, department.Code, department.Description).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create department query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&department.ID, &department.CreatedAt, &department.UpdatedAt); err != nil {
		return mapDepartmentWriteError(err)
	}
	return nil
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	sql, args, err := r.sb.Select(departmentColumns...).From("departments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get department query: %w", err)
	}

	department, err := scanDepartment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}
	return department, nil
}

// List returns a page of departments
func (r *DepartmentRepository) List(ctx context.Context, filter dto.DepartmentFilter, offset, limit uint64) ([]*models.Department, int64, error) {
	conds := squirrel.And{}
	if filter.CampusID != nil {
		conds = append(conds, squirrel.Eq{"campus_id": *filter.CampusID})
	}
	if filter.Search != nil {
		pattern := likePattern(*filter.Search)
		conds = append(conds, squirrel.Or{squirrel.ILike{"name": pattern}, squirrel.ILike{"code": pattern}})
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("departments").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.sb.Select(departmentColumns...).From("departments").Where(conds).
		OrderBy("campus_id", "name").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list departments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	departments := make([]*models.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, total, rows.Err()
}

// Update updates an existing department
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	sql, args, err := r.sb.Update("departments").
		Set("campus_id", department.CampusID).
		Set("name", department.Name).
		Set("code", department.Code).
		Set("description", department.Description).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": department.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update department query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&department.CreatedAt, &department.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrDepartmentNotFound
		}
		return mapDepartmentWriteError(err)
	}
	return nil
}

// HasDependents reports whether programs, employees or students reference the department
func (r *DepartmentRepository) HasDependents(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db, `
		SELECT 1 FROM programs WHERE department_id = $1
		UNION ALL SELECT 1 FROM employees WHERE department_id = $1
		UNION ALL SELECT 1 FROM students WHERE department_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error checking department relations: %w", err)
	}
	return found, nil
}

// Delete deletes a department by ID
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentHasRelations
		}
		return fmt.Errorf("error deleting department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}
