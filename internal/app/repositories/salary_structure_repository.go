package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/db"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var salaryStructureColumns = []string{
	"id", "employee_id", "basic_salary", "house_rent_allowance", "medical_allowance",
	"transport_allowance", "other_allowances", "provident_fund", "other_deductions",
	"effective_from", "is_active", "created_by", "created_at", "updated_at",
}

// SalaryStructureRepository handles employee salary structures
type SalaryStructureRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSalaryStructureRepository creates a new salary structure repository
func NewSalaryStructureRepository(db *pgxpool.Pool) *SalaryStructureRepository {
	return &SalaryStructureRepository{db: db, sb: statementBuilder()}
}

func scanSalaryStructure(row pgx.Row) (*models.SalaryStructure, error) {
	var s models.SalaryStructure
	err := row.Scan(&s.ID, &s.EmployeeID, &s.BasicSalary, &s.HouseRentAllowance, &s.MedicalAllowance,
		&s.TransportAllowance, &s.OtherAllowances, &s.ProvidentFund, &s.OtherDeductions,
		&s.EffectiveFrom, &s.IsActive, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateActive deactivates the employee's current structure and inserts s as the active one
func (r *SalaryStructureRepository) CreateActive(ctx context.Context, s *models.SalaryStructure) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE salary_structures SET is_active = FALSE, updated_at = NOW()
			WHERE employee_id = $1 AND is_active`, s.EmployeeID)
		if err != nil {
			return fmt.Errorf("error deactivating salary structure: %w", err)
		}

		s.IsActive = true
		sql, args, err := r.sb.Insert("salary_structures").
			Columns("employee_id", "basic_salary", "house_rent_allowance", "medical_allowance",
				"transport_allowance", "other_allowances", "provident_fund", "other_deductions",
				"effective_from", "is_active", "created_by").
			Values(s.EmployeeID, s.BasicSalary, s.HouseRentAllowance, s.MedicalAllowance,
				s.TransportAllowance, s.OtherAllowances, s.ProvidentFund, s.OtherDeductions,
				s.EffectiveFrom, s.IsActive, s.CreatedBy).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create salary structure query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			if dberrors.IsForeignKeyViolation(err, "salary_structures_employee_id_fkey") {
				return apperrors.ErrEmployeeNotFound
			}
			return fmt.Errorf("error creating salary structure: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a salary structure by ID
func (r *SalaryStructureRepository) GetByID(ctx context.Context, id int64) (*models.SalaryStructure, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, apperrors.ErrSalaryStructureNotFound)
}

// GetActive retrieves the employee's active salary structure
func (r *SalaryStructureRepository) GetActive(ctx context.Context, employeeID int64) (*models.SalaryStructure, error) {
	return r.getOne(ctx, squirrel.Eq{"employee_id": employeeID, "is_active": true}, apperrors.ErrNoActiveSalaryStructure)
}

func (r *SalaryStructureRepository) getOne(ctx context.Context, where squirrel.Sqlizer, notFound error) (*models.SalaryStructure, error) {
	sql, args, err := r.sb.Select(salaryStructureColumns...).From("salary_structures").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get salary structure query: %w", err)
	}

	s, err := scanSalaryStructure(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("error retrieving salary structure: %w", err)
	}
	return s, nil
}

// List returns a page of salary structures, newest first
func (r *SalaryStructureRepository) List(ctx context.Context, employeeID *int64, offset, limit uint64) ([]*models.SalaryStructure, int64, error) {
	conds := squirrel.And{}
	if employeeID != nil {
		conds = append(conds, squirrel.Eq{"employee_id": *employeeID})
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("salary_structures").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.sb.Select(salaryStructureColumns...).From("salary_structures").Where(conds).
		OrderBy("effective_from DESC", "id DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list salary structures query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing salary structures: %w", err)
	}
	defer rows.Close()

	structures := make([]*models.SalaryStructure, 0)
	for rows.Next() {
		s, err := scanSalaryStructure(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning salary structure: %w", err)
		}
		structures = append(structures, s)
	}
	return structures, total, rows.Err()
}
