package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/db"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/dberrors"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var attendanceColumns = []string{
	"id", "employee_id", "attendance_date", "status", "check_in", "check_out",
	"remarks", "marked_by", "created_at", "updated_at",
}

const upsertAttendanceSQL = `
	INSERT INTO employee_attendance (employee_id, attendance_date, status, check_in, check_out, remarks, marked_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (employee_id, attendance_date) DO UPDATE
	SET status = EXCLUDED.status, check_in = EXCLUDED.check_in, check_out = EXCLUDED.check_out,
		remarks = EXCLUDED.remarks, marked_by = EXCLUDED.marked_by, updated_at = NOW()
	RETURNING id, created_at, updated_at`

// AttendanceRepository handles staff attendance records
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{db: db, sb: statementBuilder()}
}

func scanAttendance(row pgx.Row) (*models.AttendanceRecord, error) {
	var a models.AttendanceRecord
	err := row.Scan(&a.ID, &a.EmployeeID, &a.Date, &a.Status, &a.CheckIn, &a.CheckOut,
		&a.Remarks, &a.MarkedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func upsertAttendance(ctx context.Context, q DBTX, rec *models.AttendanceRecord) error {
	err := q.QueryRow(ctx, upsertAttendanceSQL,
		rec.EmployeeID, rec.Date, rec.Status, rec.CheckIn, rec.CheckOut, rec.Remarks, rec.MarkedBy,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, "employee_attendance_employee_id_fkey") {
			return apperrors.ErrEmployeeNotFound
		}
		return fmt.Errorf("error saving attendance: %w", err)
	}
	return nil
}

// Upsert marks or overwrites one employee-day
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *models.AttendanceRecord) error {
	return upsertAttendance(ctx, r.db, rec)
}

// BulkUpsert marks many employee-days in one transaction
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []*models.AttendanceRecord) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, rec := range records {
			if err := upsertAttendance(ctx, tx, rec); err != nil {
				return fmt.Errorf("employee %d: %w", rec.EmployeeID, err)
			}
		}
		return nil
	})
}

// List returns a page of attendance records, newest first
func (r *AttendanceRepository) List(ctx context.Context, filter dto.AttendanceFilter, offset, limit uint64) ([]*models.AttendanceRecord, int64, error) {
	conds := squirrel.And{}
	if filter.EmployeeID != nil {
		conds = append(conds, squirrel.Eq{"employee_id": *filter.EmployeeID})
	}
	if filter.CampusID != nil {
		conds = append(conds, squirrel.Expr("employee_id IN (SELECT id FROM employees WHERE campus_id = ?)", *filter.CampusID))
	}
	if filter.Period != nil {
		start, end, err := helpers.PeriodBounds(*filter.Period)
		if err != nil {
			return nil, 0, apperrors.NewValidationError("period must be in YYYY-MM format")
		}
		conds = append(conds, squirrel.GtOrEq{"attendance_date": start}, squirrel.LtOrEq{"attendance_date": end})
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"status": *filter.Status})
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("employee_attendance").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.sb.Select(attendanceColumns...).From("employee_attendance").Where(conds).
		OrderBy("attendance_date DESC", "employee_id").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list attendance query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing attendance: %w", err)
	}
	defer rows.Close()

	records := make([]*models.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

// ListForRange returns one employee's records between start and end inclusive
func (r *AttendanceRepository) ListForRange(ctx context.Context, employeeID int64, start, end time.Time) ([]*models.AttendanceRecord, error) {
	sql, args, err := r.sb.Select(attendanceColumns...).From("employee_attendance").
		Where(squirrel.Eq{"employee_id": employeeID}).
		Where(squirrel.GtOrEq{"attendance_date": start}).
		Where(squirrel.LtOrEq{"attendance_date": end}).
		OrderBy("attendance_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance range query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading attendance: %w", err)
	}
	defer rows.Close()

	records := make([]*models.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetByID retrieves an attendance record by ID
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	sql, args, err := r.sb.Select(attendanceColumns...).From("employee_attendance").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get attendance query: %w", err)
	}

	rec, err := scanAttendance(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAttendanceRecordNotFound
		}
		return nil, fmt.Errorf("error retrieving attendance: %w", err)
	}
	return rec, nil
}

// Delete removes an attendance record
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM employee_attendance WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAttendanceRecordNotFound
	}
	return nil
}
