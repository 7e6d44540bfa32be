package services

import (
	"context"
	"testing"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTimetableFixture() (*fakeTimetable, TimetableService, authz.Actor) {
	store := &fakeTimetable{}
	departments := fakeDepartments{
		1: {ID: 1, CampusID: 1, Name: "Computer Science", Code: "CS"},
		2: {ID: 2, CampusID: 2, Name: "Physics", Code: "PHY"},
	}
	employees := fakeEmployees{
		1: {ID: 1, CampusID: 1, FullName: "Dr. Kamran", Status: models.EmployeeActive},
		2: {ID: 2, CampusID: 2, FullName: "Dr. Nadia", Status: models.EmployeeActive},
	}
	campus := int64(1)
	return store, NewTimetableService(store, departments, employees), authz.Actor{UserID: 1, Role: models.RoleAdmin, CampusID: &campus}
}

func slotRequest() *dto.TimetableEntryRequest {
	return &dto.TimetableEntryRequest{
		CampusID:     1,
		DepartmentID: 1,
		Session:      "2025",
		Section:      "A",
		CourseCode:   "cs101",
		CourseTitle:  "Programming Fundamentals",
		TeacherID:    1,
		Room:         "LT-2",
		DayOfWeek:    1,
		StartTime:    "09:00",
		EndTime:      "10:30",
	}
}

func TestCreateTimetableEntry(t *testing.T) {
	ctx := context.Background()
	_, svc, actor := newTimetableFixture()

	entry, err := svc.CreateEntry(ctx, actor, slotRequest())
	require.NoError(t, err)
	assert.Equal(t, "CS101", entry.CourseCode)
	assert.Equal(t, "Dr. Kamran", entry.TeacherName)
}

func TestTimetableEntryValidation(t *testing.T) {
	ctx := context.Background()
	_, svc, actor := newTimetableFixture()

	tests := []struct {
		name   string
		mutate func(r *dto.TimetableEntryRequest)
		target error
	}{
		{"end before start", func(r *dto.TimetableEntryRequest) { r.EndTime = "08:00" }, apperrors.ErrValidationFailed},
		{"zero length", func(r *dto.TimetableEntryRequest) { r.EndTime = r.StartTime }, apperrors.ErrValidationFailed},
		{"bad clock", func(r *dto.TimetableEntryRequest) { r.StartTime = "9am" }, apperrors.ErrValidationFailed},
		{"bad day", func(r *dto.TimetableEntryRequest) { r.DayOfWeek = 8 }, apperrors.ErrValidationFailed},
		{"department of another campus", func(r *dto.TimetableEntryRequest) { r.DepartmentID = 2 }, apperrors.ErrBadRequest},
		{"teacher of another campus", func(r *dto.TimetableEntryRequest) { r.TeacherID = 2 }, apperrors.ErrBadRequest},
		{"other campus", func(r *dto.TimetableEntryRequest) { r.CampusID = 2 }, apperrors.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := slotRequest()
			tt.mutate(req)
			_, err := svc.CreateEntry(ctx, actor, req)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestTimetableConflict(t *testing.T) {
	ctx := context.Background()
	store, svc, actor := newTimetableFixture()
	store.conflicts = []*models.TimetableEntry{
		{ID: 4, CourseCode: "MA102", Room: "LT-2", StartTime: "10:00", EndTime: "11:00"},
	}

	_, err := svc.CreateEntry(ctx, actor, slotRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTimetableConflict)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, int64(4), custom.Details["conflictingEntryId"])
	assert.Empty(t, store.created)
}
