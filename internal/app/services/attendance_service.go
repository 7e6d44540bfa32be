package services

import (
	"context"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/campusly/campusly/internal/pkg/validation"
	"github.com/shopspring/decimal"
)

// AttendanceService records staff attendance and summarizes pay periods
type AttendanceService interface {
	MarkAttendance(ctx context.Context, actor authz.Actor, req *dto.MarkAttendanceRequest) (*models.AttendanceRecord, error)
	BulkMarkAttendance(ctx context.Context, actor authz.Actor, req *dto.BulkAttendanceRequest) ([]*models.AttendanceRecord, error)
	ListAttendance(ctx context.Context, actor authz.Actor, filter dto.AttendanceFilter, page, size int) ([]*models.AttendanceRecord, int64, error)
	GetSummary(ctx context.Context, actor authz.Actor, employeeID int64, period string) (*models.AttendanceSummary, error)
	DeleteAttendance(ctx context.Context, actor authz.Actor, id int64) error
	AttendanceSummarizer
}

// AttendanceSummarizer computes the attendance summary used by payroll
type AttendanceSummarizer interface {
	Summarize(ctx context.Context, employeeID int64, period string) (*models.AttendanceSummary, error)
}

// AttendanceStore persists attendance records
type AttendanceStore interface {
	Upsert(ctx context.Context, rec *models.AttendanceRecord) error
	BulkUpsert(ctx context.Context, records []*models.AttendanceRecord) error
	GetByID(ctx context.Context, id int64) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter dto.AttendanceFilter, offset, limit uint64) ([]*models.AttendanceRecord, int64, error)
	ListForRange(ctx context.Context, employeeID int64, start, end time.Time) ([]*models.AttendanceRecord, error)
	Delete(ctx context.Context, id int64) error
}

// EmployeeReader loads employees
type EmployeeReader interface {
	GetByID(ctx context.Context, id int64) (*models.Employee, error)
}

type attendanceService struct {
	attendanceRepo AttendanceStore
	employeeRepo   EmployeeReader
	weekend        map[time.Weekday]bool
	now            Clock
}

// NewAttendanceService creates a new AttendanceService. weekend lists the non-working weekdays.
func NewAttendanceService(attendanceRepo AttendanceStore, employeeRepo EmployeeReader, weekend map[time.Weekday]bool) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		weekend:        weekend,
		now:            time.Now,
	}
}

func (s *attendanceService) authorizeEmployee(ctx context.Context, actor authz.Actor, employeeID int64) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(employee.CampusID); err != nil {
		return nil, err
	}
	return employee, nil
}

// parseAttendanceDate rejects malformed and future dates
func (s *attendanceService) parseAttendanceDate(value string) (time.Time, error) {
	date, err := parseDate("date", value)
	if err != nil {
		return time.Time{}, err
	}
	if date.After(helpers.DateOnly(s.now())) {
		return time.Time{}, invalidf("attendance cannot be marked for a future date")
	}
	return date, nil
}

func buildRecord(employeeID int64, date time.Time, status models.AttendanceStatus, checkIn, checkOut, remarks *string, markedBy int64) (*models.AttendanceRecord, error) {
	if !status.IsValid() {
		return nil, invalidf("unknown attendance status %q", status)
	}
	checkIn, checkOut = cleanOptional(checkIn), cleanOptional(checkOut)
	if checkIn != nil && !validation.IsValidClock(*checkIn) {
		return nil, invalidf("checkIn must be HH:MM")
	}
	if checkOut != nil && !validation.IsValidClock(*checkOut) {
		return nil, invalidf("checkOut must be HH:MM")
	}
	if checkIn != nil && checkOut != nil && *checkOut <= *checkIn {
		return nil, invalidf("checkOut must be after checkIn")
	}

	return &models.AttendanceRecord{
		EmployeeID: employeeID,
		Date:       date,
		Status:     status,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Remarks:    cleanOptional(remarks),
		MarkedBy:   &markedBy,
	}, nil
}

// MarkAttendance marks or overwrites one employee-day
func (s *attendanceService) MarkAttendance(ctx context.Context, actor authz.Actor, req *dto.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	date, err := s.parseAttendanceDate(req.Date)
	if err != nil {
		return nil, err
	}
	rec, err := buildRecord(req.EmployeeID, date, req.Status, req.CheckIn, req.CheckOut, req.Remarks, actor.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeEmployee(ctx, actor, req.EmployeeID); err != nil {
		return nil, err
	}
	if err := s.attendanceRepo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// BulkMarkAttendance marks many employees for one date in a single transaction
func (s *attendanceService) BulkMarkAttendance(ctx context.Context, actor authz.Actor, req *dto.BulkAttendanceRequest) ([]*models.AttendanceRecord, error) {
	date, err := s.parseAttendanceDate(req.Date)
	if err != nil {
		return nil, err
	}
	if len(req.Entries) == 0 {
		return nil, invalidf("entries cannot be empty")
	}

	seen := make(map[int64]bool, len(req.Entries))
	records := make([]*models.AttendanceRecord, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if seen[entry.EmployeeID] {
			return nil, invalidf("employee %d appears more than once", entry.EmployeeID)
		}
		seen[entry.EmployeeID] = true

		rec, err := buildRecord(entry.EmployeeID, date, entry.Status, entry.CheckIn, entry.CheckOut, entry.Remarks, actor.UserID)
		if err != nil {
			return nil, err
		}
		if _, err := s.authorizeEmployee(ctx, actor, entry.EmployeeID); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := s.attendanceRepo.BulkUpsert(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListAttendance returns a page of attendance records
func (s *attendanceService) ListAttendance(ctx context.Context, actor authz.Actor, filter dto.AttendanceFilter, page, size int) ([]*models.AttendanceRecord, int64, error) {
	campusID, err := actor.ScopeCampus(filter.CampusID)
	if err != nil {
		return nil, 0, err
	}
	filter.CampusID = campusID
	if filter.Period != nil && !validation.IsValidPeriod(*filter.Period) {
		return nil, 0, invalidf("period must be in YYYY-MM format")
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, invalidf("unknown attendance status %q", *filter.Status)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.attendanceRepo.List(ctx, filter, offset, limit)
}

// GetSummary summarizes one employee's period for a caller with access to the employee
func (s *attendanceService) GetSummary(ctx context.Context, actor authz.Actor, employeeID int64, period string) (*models.AttendanceSummary, error) {
	if _, err := s.authorizeEmployee(ctx, actor, employeeID); err != nil {
		return nil, err
	}
	return s.Summarize(ctx, employeeID, period)
}

// Summarize loads the period's records and computes the summary
func (s *attendanceService) Summarize(ctx context.Context, employeeID int64, period string) (*models.AttendanceSummary, error) {
	if !validation.IsValidPeriod(period) {
		return nil, invalidf("period must be in YYYY-MM format")
	}
	start, end, err := helpers.PeriodBounds(period)
	if err != nil {
		return nil, invalidf("period must be in YYYY-MM format")
	}

	records, err := s.attendanceRepo.ListForRange(ctx, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	return SummarizeAttendance(employeeID, period, start, end, records, s.weekend), nil
}

// SummarizeAttendance counts marks between start and end inclusive.
// Unmarked working days count as worked and records on weekend days are ignored.
// paidDays = workingDays - absent - 0.5 * halfDay and the ratio is clamped to [0, 1],
// or 1 when the period has no working days.
func SummarizeAttendance(employeeID int64, period string, start, end time.Time, records []*models.AttendanceRecord, weekend map[time.Weekday]bool) *models.AttendanceSummary {
	summary := &models.AttendanceSummary{
		EmployeeID:  employeeID,
		Period:      period,
		WorkingDays: helpers.WorkingDays(start, end, weekend),
	}

	first, last := helpers.DateOnly(start), helpers.DateOnly(end)
	for _, rec := range records {
		day := helpers.DateOnly(rec.Date)
		if weekend[day.Weekday()] || day.Before(first) || day.After(last) {
			continue
		}
		switch rec.Status {
		case models.AttendancePresent:
			summary.Present++
		case models.AttendanceAbsent:
			summary.Absent++
		case models.AttendanceLeave:
			summary.Leave++
		case models.AttendanceHalfDay:
			summary.HalfDay++
		case models.AttendanceLate:
			summary.Late++
		}
	}

	working := decimal.NewFromInt(int64(summary.WorkingDays))
	paid := working.
		Sub(decimal.NewFromInt(int64(summary.Absent))).
		Sub(decimal.NewFromInt(int64(summary.HalfDay)).Div(decimal.NewFromInt(2)))
	if paid.IsNegative() {
		paid = decimal.Zero
	}
	summary.PaidDays = paid

	if summary.WorkingDays == 0 {
		summary.AttendanceRatio = decimal.NewFromInt(1)
		return summary
	}
	ratio := paid.DivRound(working, 4)
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		ratio = decimal.NewFromInt(1)
	}
	summary.AttendanceRatio = ratio
	return summary
}

// DeleteAttendance removes a mark so the day counts as worked again
func (s *attendanceService) DeleteAttendance(ctx context.Context, actor authz.Actor, id int64) error {
	rec, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.authorizeEmployee(ctx, actor, rec.EmployeeID); err != nil {
		return err
	}
	return s.attendanceRepo.Delete(ctx, id)
}
