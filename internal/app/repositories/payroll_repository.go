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
	"github.com/campusly/campusly/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var payrollColumns = []string{
	"p.id", "p.employee_id", "p.salary_structure_id", "p.period", "p.working_days", "p.paid_days",
	"p.attendance_ratio", "p.basic_salary", "p.house_rent_allowance", "p.medical_allowance",
	"p.transport_allowance", "p.other_allowances", "p.gross_salary", "p.provident_fund",
	"p.other_deductions", "p.income_tax", "p.total_deductions", "p.net_salary", "p.status",
	"p.processed_by", "p.processed_at", "p.approved_by", "p.approved_at", "p.paid_at",
	"p.payment_method", "p.payment_reference", "p.remarks", "p.created_at", "p.updated_at",
	"e.full_name", "e.employee_code", "e.campus_id",
}

// PayrollRepository handles processed salary records
type PayrollRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPayrollRepository creates a new payroll repository
func NewPayrollRepository(db *pgxpool.Pool) *PayrollRepository {
	return &PayrollRepository{db: db, sb: statementBuilder()}
}

func (r *PayrollRepository) selectQuery() squirrel.SelectBuilder {
	return r.sb.Select(payrollColumns...).From("payrolls p").Join("employees e ON e.id = p.employee_id")
}

func scanPayroll(row pgx.Row) (*models.Payroll, error) {
	var p models.Payroll
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.SalaryStructureID, &p.Period, &p.WorkingDays, &p.PaidDays,
		&p.AttendanceRatio, &p.BasicSalary, &p.HouseRentAllowance, &p.MedicalAllowance,
		&p.TransportAllowance, &p.OtherAllowances, &p.GrossSalary, &p.ProvidentFund,
		&p.OtherDeductions, &p.IncomeTax, &p.TotalDeductions, &p.NetSalary, &p.Status,
		&p.ProcessedBy, &p.ProcessedAt, &p.ApprovedBy, &p.ApprovedAt, &p.PaidAt,
		&p.PaymentMethod, &p.PaymentReference, &p.Remarks, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName, &p.EmployeeCode, &p.CampusID,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a processed payroll
func (r *PayrollRepository) Create(ctx context.Context, p *models.Payroll) error {
	sql, args, err := r.sb.Insert("payrolls").
		Columns("employee_id", "salary_structure_id", "period", "working_days", "paid_days",
			"attendance_ratio", "basic_salary", "house_rent_allowance", "medical_allowance",
			"transport_allowance", "other_allowances", "gross_salary", "provident_fund",
			"other_deductions", "income_tax", "total_deductions", "net_salary", "status",
			"processed_by", "processed_at").
		Values(p.EmployeeID, p.SalaryStructureID, p.Period, p.WorkingDays, p.PaidDays,
			p.AttendanceRatio, p.BasicSalary, p.HouseRentAllowance, p.MedicalAllowance,
			p.TransportAllowance, p.OtherAllowances, p.GrossSalary, p.ProvidentFund,
			p.OtherDeductions, p.IncomeTax, p.TotalDeductions, p.NetSalary, p.Status,
			p.ProcessedBy, p.ProcessedAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create payroll query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "payrolls_employee_period_key") {
			return apperrors.ErrPayrollAlreadyProcessed
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrEmployeeNotFound
		}
		logger.Error().Err(err).Int64("employeeID", p.EmployeeID).Str("period", p.Period).Msg("Error creating payroll")
		return fmt.Errorf("error creating payroll: %w", err)
	}
	return nil
}

// GetByID retrieves a payroll with its employee's name and campus
func (r *PayrollRepository) GetByID(ctx context.Context, id int64) (*models.Payroll, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get payroll query: %w", err)
	}

	p, err := scanPayroll(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPayrollNotFound
		}
		return nil, fmt.Errorf("error retrieving payroll: %w", err)
	}
	return p, nil
}

// ExistsForPeriod reports whether the employee already has a payroll for the period
func (r *PayrollRepository) ExistsForPeriod(ctx context.Context, employeeID int64, period string) (bool, error) {
	found, err := exists(ctx, r.db, `SELECT 1 FROM payrolls WHERE employee_id = $1 AND period = $2`, employeeID, period)
	if err != nil {
		return false, fmt.Errorf("error checking payroll: %w", err)
	}
	return found, nil
}

// List returns a page of payrolls
func (r *PayrollRepository) List(ctx context.Context, filter dto.PayrollFilter, offset, limit uint64) ([]*models.Payroll, int64, error) {
	conds := squirrel.And{}
	if filter.EmployeeID != nil {
		conds = append(conds, squirrel.Eq{"p.employee_id": *filter.EmployeeID})
	}
	if filter.CampusID != nil {
		conds = append(conds, squirrel.Eq{"e.campus_id": *filter.CampusID})
	}
	if filter.Period != nil {
		conds = append(conds, squirrel.Eq{"p.period": *filter.Period})
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"p.status": *filter.Status})
	}

	countQuery := r.sb.Select("COUNT(*)").From("payrolls p").Join("employees e ON e.id = p.employee_id").Where(conds)
	total, err := countRows(ctx, r.db, countQuery)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.selectQuery().Where(conds).
		OrderBy("p.period DESC", "e.employee_code").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list payrolls query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing payrolls: %w", err)
	}
	defer rows.Close()

	payrolls := make([]*models.Payroll, 0)
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}
	return payrolls, total, rows.Err()
}

// UpdateWorkflow persists a status change made by the approval workflow.
// The update only applies while the stored status still equals from.
func (r *PayrollRepository) UpdateWorkflow(ctx context.Context, p *models.Payroll, from models.PayrollStatus) error {
	sql, args, err := r.sb.Update("payrolls").
		Set("status", p.Status).
		Set("approved_by", p.ApprovedBy).
		Set("approved_at", p.ApprovedAt).
		Set("paid_at", p.PaidAt).
		Set("payment_method", p.PaymentMethod).
		Set("payment_reference", p.PaymentReference).
		Set("remarks", p.Remarks).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": p.ID, "status": from}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update payroll query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewTransitionError(fmt.Sprintf("payroll is no longer %s", from))
		}
		return fmt.Errorf("error updating payroll: %w", err)
	}
	return nil
}

// DeleteRejected deletes a payroll only while it is REJECTED
func (r *PayrollRepository) DeleteRejected(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payrolls WHERE id = $1 AND status = $2`, id, models.PayrollRejected)
	if err != nil {
		return fmt.Errorf("error deleting payroll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewTransitionError("only rejected payrolls can be deleted")
	}
	return nil
}
