package services

import (
	"context"
	"testing"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var satSun = map[time.Weekday]bool{time.Saturday: true, time.Sunday: true}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestSummarizeAttendance(t *testing.T) {
	start, end := day(1), day(31)

	t.Run("unmarked month counts as fully worked", func(t *testing.T) {
		s := SummarizeAttendance(1, "2025-03", start, end, nil, satSun)
		assert.Equal(t, 21, s.WorkingDays)
		assertDecimal(t, "21", s.PaidDays, "paid days")
		assertDecimal(t, "1", s.AttendanceRatio, "ratio")
	})

	t.Run("absences and half days reduce paid days", func(t *testing.T) {
		records := []*models.AttendanceRecord{
			{Date: day(3), Status: models.AttendanceAbsent},
			{Date: day(4), Status: models.AttendanceAbsent},
			{Date: day(5), Status: models.AttendanceHalfDay},
			{Date: day(6), Status: models.AttendanceLeave},
			{Date: day(7), Status: models.AttendanceLate},
			{Date: day(8), Status: models.AttendanceAbsent}, // Saturday
		}
		s := SummarizeAttendance(1, "2025-03", start, end, records, satSun)

		assert.Equal(t, 2, s.Absent)
		assert.Equal(t, 1, s.HalfDay)
		assert.Equal(t, 1, s.Leave)
		assert.Equal(t, 1, s.Late)
		assertDecimal(t, "18.5", s.PaidDays, "paid days")
		assertDecimal(t, "0.881", s.AttendanceRatio, "ratio")
	})

	t.Run("no working days pays in full", func(t *testing.T) {
		everyDay := map[time.Weekday]bool{}
		for d := time.Sunday; d <= time.Saturday; d++ {
			everyDay[d] = true
		}
		s := SummarizeAttendance(1, "2025-03", start, end, nil, everyDay)
		assert.Equal(t, 0, s.WorkingDays)
		assertDecimal(t, "1", s.AttendanceRatio, "ratio")
	})
}

type memoryAttendance struct {
	AttendanceStore
	records []*models.AttendanceRecord
}

func (m *memoryAttendance) Upsert(_ context.Context, rec *models.AttendanceRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryAttendance) BulkUpsert(_ context.Context, records []*models.AttendanceRecord) error {
	m.records = append(m.records, records...)
	return nil
}

func (m *memoryAttendance) ListForRange(_ context.Context, employeeID int64, start, end time.Time) ([]*models.AttendanceRecord, error) {
	var out []*models.AttendanceRecord
	for _, r := range m.records {
		if r.EmployeeID == employeeID && !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func newAttendanceFixture() (*attendanceService, *memoryAttendance, authz.Actor) {
	store := &memoryAttendance{}
	employees := fakeEmployees{
		1: {ID: 1, CampusID: 1, Status: models.EmployeeActive},
		2: {ID: 2, CampusID: 2, Status: models.EmployeeActive},
	}
	svc := NewAttendanceService(store, employees, satSun).(*attendanceService)
	svc.now = fixedClock
	campus := int64(1)
	return svc, store, authz.Actor{UserID: 9, Role: models.RoleHR, CampusID: &campus}
}

func TestMarkAttendance(t *testing.T) {
	ctx := context.Background()
	svc, store, actor := newAttendanceFixture()

	rec, err := svc.MarkAttendance(ctx, actor, &dto.MarkAttendanceRequest{
		EmployeeID: 1, Date: "2025-03-03", Status: models.AttendancePresent,
		CheckIn: models.StringPtr("09:00"), CheckOut: models.StringPtr("17:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), *rec.MarkedBy)
	assert.Len(t, store.records, 1)

	_, err = svc.MarkAttendance(ctx, actor, &dto.MarkAttendanceRequest{EmployeeID: 1, Date: "2025-04-16", Status: models.AttendancePresent})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "future dates are rejected")

	_, err = svc.MarkAttendance(ctx, actor, &dto.MarkAttendanceRequest{
		EmployeeID: 1, Date: "2025-03-04", Status: models.AttendancePresent,
		CheckIn: models.StringPtr("17:00"), CheckOut: models.StringPtr("09:00"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "check-out must follow check-in")

	_, err = svc.MarkAttendance(ctx, actor, &dto.MarkAttendanceRequest{EmployeeID: 2, Date: "2025-03-03", Status: models.AttendancePresent})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestBulkMarkAttendanceRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, store, actor := newAttendanceFixture()

	_, err := svc.BulkMarkAttendance(ctx, actor, &dto.BulkAttendanceRequest{
		Date: "2025-03-03",
		Entries: []dto.BulkAttendanceEntry{
			{EmployeeID: 1, Status: models.AttendancePresent},
			{EmployeeID: 1, Status: models.AttendanceAbsent},
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Empty(t, store.records)
}

func TestGetSummaryUsesStoredRecords(t *testing.T) {
	ctx := context.Background()
	svc, store, actor := newAttendanceFixture()
	store.records = []*models.AttendanceRecord{
		{EmployeeID: 1, Date: day(3), Status: models.AttendanceAbsent},
		{EmployeeID: 1, Date: time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), Status: models.AttendanceAbsent},
	}

	s, err := svc.GetSummary(ctx, actor, 1, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Absent)
	assertDecimal(t, "20", s.PaidDays, "paid days")

	_, err = svc.GetSummary(ctx, actor, 1, "March")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
