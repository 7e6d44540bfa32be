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

var employeeColumns = []string{
	"id", "campus_id", "department_id", "user_id", "employee_code", "full_name", "email", "phone",
	"designation", "employment_type", "status", "joining_date", "created_at", "updated_at",
}

// EmployeeRepository handles database operations for employees
type EmployeeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{db: db, sb: statementBuilder()}
}

func scanEmployee(row pgx.Row) (*models.Employee, error) {
	var e models.Employee
	err := row.Scan(&e.ID, &e.CampusID, &e.DepartmentID, &e.UserID, &e.EmployeeCode, &e.FullName, &e.Email,
		&e.Phone, &e.Designation, &e.EmploymentType, &e.Status, &e.JoiningDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEmployees(rows pgx.Rows) ([]*models.Employee, error) {
	defer rows.Close()
	employees := make([]*models.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func mapEmployeeWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "employees_employee_code_key"),
		dberrors.IsDuplicateConstraintError(err, "employees_email_key"):
		return apperrors.ErrEmployeeAlreadyExists
	case dberrors.IsForeignKeyViolation(err, "employees_department_id_fkey"):
		return apperrors.ErrDepartmentNotFound
	case dberrors.IsForeignKeyViolation(err, "employees_user_id_fkey"):
		return apperrors.ErrUserNotFound
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrCampusNotFound
	}
	return fmt.Errorf("error saving employee: %w", err)
}

// Create creates a new employee
func (r *EmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	sql, args, err := r.sb.Insert("employees").
		Columns("campus_id", "department_id", "user_id", "employee_code", "full_name", "email", "phone",
			"designation", "employment_type", "status", "joining_date").
		Values(e.CampusID, e.DepartmentID, e.UserID, e.EmployeeCode, e.FullName, e.Email, e.Phone,
			e.Designation, e.EmploymentType, e.Status, e.JoiningDate).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create employee query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return mapEmployeeWriteError(err)
	}
	return nil
}

// GetByID retrieves an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*models.Employee, error) {
	sql, args, err := r.sb.Select(employeeColumns...).From("employees").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get employee query: %w", err)
	}

	e, err := scanEmployee(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("error retrieving employee: %w", err)
	}
	return e, nil
}

func employeeConditions(filter dto.EmployeeFilter) squirrel.And {
	conds := squirrel.And{}
	if filter.CampusID != nil {
		conds = append(conds, squirrel.Eq{"campus_id": *filter.CampusID})
	}
	if filter.DepartmentID != nil {
		conds = append(conds, squirrel.Eq{"department_id": *filter.DepartmentID})
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"status": *filter.Status})
	}
	if filter.EmploymentType != nil {
		conds = append(conds, squirrel.Eq{"employment_type": *filter.EmploymentType})
	}
	if filter.Search != nil {
		pattern := likePattern(*filter.Search)
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"full_name": pattern},
			squirrel.ILike{"employee_code": pattern},
			squirrel.ILike{"email": pattern},
		})
	}
	return conds
}

// List returns a page of employees
func (r *EmployeeRepository) List(ctx context.Context, filter dto.EmployeeFilter, offset, limit uint64) ([]*models.Employee, int64, error) {
	conds := employeeConditions(filter)

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("employees").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.sb.Select(employeeColumns...).From("employees").Where(conds).
		OrderBy("employee_code").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list employees query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing employees: %w", err)
	}
	employees, err := collectEmployees(rows)
	return employees, total, err
}

// ListPayable returns ACTIVE and ON_LEAVE employees, optionally limited to one campus
func (r *EmployeeRepository) ListPayable(ctx context.Context, campusID *int64) ([]*models.Employee, error) {
	conds := squirrel.And{squirrel.Eq{"status": []models.EmployeeStatus{models.EmployeeActive, models.EmployeeOnLeave}}}
	if campusID != nil {
		conds = append(conds, squirrel.Eq{"campus_id": *campusID})
	}

	sql, args, err := r.sb.Select(employeeColumns...).From("employees").Where(conds).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payable employees query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing payable employees: %w", err)
	}
	return collectEmployees(rows)
}

// Update updates an existing employee
func (r *EmployeeRepository) Update(ctx context.Context, e *models.Employee) error {
	sql, args, err := r.sb.Update("employees").
		Set("campus_id", e.CampusID).
		Set("department_id", e.DepartmentID).
		Set("user_id", e.UserID).
		Set("employee_code", e.EmployeeCode).
		Set("full_name", e.FullName).
		Set("email", e.Email).
		Set("phone", e.Phone).
		Set("designation", e.Designation).
		Set("employment_type", e.EmploymentType).
		Set("status", e.Status).
		Set("joining_date", e.JoiningDate).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": e.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update employee query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrEmployeeNotFound
		}
		return mapEmployeeWriteError(err)
	}
	return nil
}

// Delete deletes an employee by ID
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrEmployeeHasRelations
		}
		return fmt.Errorf("error deleting employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEmployeeNotFound
	}
	return nil
}
