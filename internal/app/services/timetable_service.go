package services

import (
	"context"
	"fmt"
	"strings"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/campusly/campusly/internal/pkg/validation"
)

// TimetableService schedules weekly teaching slots without room or teacher clashes
type TimetableService interface {
	CreateEntry(ctx context.Context, actor authz.Actor, req *dto.TimetableEntryRequest) (*models.TimetableEntry, error)
	GetEntry(ctx context.Context, id int64) (*models.TimetableEntry, error)
	ListEntries(ctx context.Context, filter dto.TimetableFilter, page, size int) ([]*models.TimetableEntry, int64, error)
	UpdateEntry(ctx context.Context, actor authz.Actor, id int64, req *dto.TimetableEntryRequest) (*models.TimetableEntry, error)
	DeleteEntry(ctx context.Context, actor authz.Actor, id int64) error
}

// TimetableStore persists timetable entries
type TimetableStore interface {
	Create(ctx context.Context, t *models.TimetableEntry) error
	GetByID(ctx context.Context, id int64) (*models.TimetableEntry, error)
	List(ctx context.Context, filter dto.TimetableFilter, offset, limit uint64) ([]*models.TimetableEntry, int64, error)
	FindConflicts(ctx context.Context, t *models.TimetableEntry) ([]*models.TimetableEntry, error)
	Update(ctx context.Context, t *models.TimetableEntry) error
	Delete(ctx context.Context, id int64) error
}

type timetableService struct {
	timetableRepo  TimetableStore
	departmentRepo DepartmentReader
	employeeRepo   EmployeeReader
}

// NewTimetableService creates a new TimetableService
func NewTimetableService(timetableRepo TimetableStore, departmentRepo DepartmentReader, employeeRepo EmployeeReader) TimetableService {
	return &timetableService{
		timetableRepo:  timetableRepo,
		departmentRepo: departmentRepo,
		employeeRepo:   employeeRepo,
	}
}

func entryFromRequest(req *dto.TimetableEntryRequest) (*models.TimetableEntry, error) {
	if req.DayOfWeek < 1 || req.DayOfWeek > 7 {
		return nil, invalidf("dayOfWeek must be between 1 (Monday) and 7 (Sunday)")
	}
	start, end := strings.TrimSpace(req.StartTime), strings.TrimSpace(req.EndTime)
	if !validation.IsValidClock(start) || !validation.IsValidClock(end) {
		return nil, invalidf("startTime and endTime must be HH:MM")
	}
	startMin, _ := helpers.ParseClock(start)
	endMin, _ := helpers.ParseClock(end)
	if startMin >= endMin {
		return nil, invalidf("startTime must be before endTime")
	}
	session := strings.TrimSpace(req.Session)
	if session == "" {
		return nil, invalidf("session is required")
	}

	return &models.TimetableEntry{
		CampusID:     req.CampusID,
		DepartmentID: req.DepartmentID,
		ProgramID:    req.ProgramID,
		Session:      session,
		Section:      strings.TrimSpace(req.Section),
		CourseCode:   normalizeCode(req.CourseCode),
		CourseTitle:  strings.TrimSpace(req.CourseTitle),
		TeacherID:    req.TeacherID,
		Room:         strings.TrimSpace(req.Room),
		DayOfWeek:    req.DayOfWeek,
		StartTime:    start,
		EndTime:      end,
	}, nil
}

// prepare validates an entry against its campus, department and teacher, then checks for clashes
func (s *timetableService) prepare(ctx context.Context, actor authz.Actor, entry *models.TimetableEntry) error {
	if err := actor.AuthorizeCampus(entry.CampusID); err != nil {
		return err
	}

	department, err := s.departmentRepo.GetByID(ctx, entry.DepartmentID)
	if err != nil {
		return err
	}
	if department.CampusID != entry.CampusID {
		return apperrors.NewBadRequestError("department does not belong to the campus")
	}

	teacher, err := s.employeeRepo.GetByID(ctx, entry.TeacherID)
	if err != nil {
		return err
	}
	if teacher.CampusID != entry.CampusID {
		return apperrors.NewBadRequestError("teacher does not belong to the campus")
	}
	if teacher.Status == models.EmployeeTerminated {
		return apperrors.NewBadRequestError("teacher is no longer employed")
	}
	entry.TeacherName = teacher.FullName

	conflicts, err := s.timetableRepo.FindConflicts(ctx, entry)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		c := conflicts[0]
		return apperrors.NewCustomError(apperrors.ErrTimetableConflict, apperrors.ErrTimetableConflict.Error()).
			WithDetails(map[string]interface{}{
				"conflictingEntryId": c.ID,
				"slot":               fmt.Sprintf("%s %s-%s in %s", c.CourseCode, c.StartTime, c.EndTime, c.Room),
			})
	}
	return nil
}

// CreateEntry adds a slot
func (s *timetableService) CreateEntry(ctx context.Context, actor authz.Actor, req *dto.TimetableEntryRequest) (*models.TimetableEntry, error) {
	entry, err := entryFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, actor, entry); err != nil {
		return nil, err
	}
	if err := s.timetableRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntry returns one slot
func (s *timetableService) GetEntry(ctx context.Context, id int64) (*models.TimetableEntry, error) {
	return s.timetableRepo.GetByID(ctx, id)
}

// ListEntries returns a page of slots ordered by day and start time
func (s *timetableService) ListEntries(ctx context.Context, filter dto.TimetableFilter, page, size int) ([]*models.TimetableEntry, int64, error) {
	if filter.DayOfWeek != nil && (*filter.DayOfWeek < 1 || *filter.DayOfWeek > 7) {
		return nil, 0, invalidf("dayOfWeek must be between 1 and 7")
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.timetableRepo.List(ctx, filter, offset, limit)
}

// UpdateEntry replaces a slot, ignoring the slot itself when checking clashes
func (s *timetableService) UpdateEntry(ctx context.Context, actor authz.Actor, id int64, req *dto.TimetableEntryRequest) (*models.TimetableEntry, error) {
	existing, err := s.timetableRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(existing.CampusID); err != nil {
		return nil, err
	}

	entry, err := entryFromRequest(req)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	if err := s.prepare(ctx, actor, entry); err != nil {
		return nil, err
	}
	if err := s.timetableRepo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes a slot
func (s *timetableService) DeleteEntry(ctx context.Context, actor authz.Actor, id int64) error {
	existing, err := s.timetableRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.AuthorizeCampus(existing.CampusID); err != nil {
		return err
	}
	return s.timetableRepo.Delete(ctx, id)
}
