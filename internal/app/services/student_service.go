package services

import (
	"context"
	"strings"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/campusly/campusly/internal/pkg/validation"
)

// StudentService manages student records
type StudentService interface {
	CreateStudent(ctx context.Context, actor authz.Actor, req *dto.StudentRequest) (*models.Student, error)
	GetStudent(ctx context.Context, actor authz.Actor, id int64) (*models.Student, error)
	ListStudents(ctx context.Context, actor authz.Actor, filter dto.StudentFilter, page, size int) ([]*models.Student, int64, error)
	UpdateStudent(ctx context.Context, actor authz.Actor, id int64, req *dto.StudentRequest) (*models.Student, error)
	DeleteStudent(ctx context.Context, actor authz.Actor, id int64) error
}

// StudentStore persists students
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context, filter dto.StudentFilter, offset, limit uint64) ([]*models.Student, int64, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

type studentService struct {
	studentRepo StudentStore
	programRepo ProgramReader
	now         Clock
}

// NewStudentService creates a new StudentService
func NewStudentService(studentRepo StudentStore, programRepo ProgramReader) StudentService {
	return &studentService{studentRepo: studentRepo, programRepo: programRepo, now: time.Now}
}

// studentFromRequest validates the request and places the student under its program's department and campus
func (s *studentService) studentFromRequest(ctx context.Context, actor authz.Actor, req *dto.StudentRequest) (*models.Student, error) {
	student := &models.Student{
		ProgramID:  req.ProgramID,
		RollNumber: strings.ToUpper(strings.TrimSpace(req.RollNumber)),
		FullName:   strings.TrimSpace(req.FullName),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:      cleanOptional(req.Phone),
		Batch:      strings.TrimSpace(req.Batch),
		Status:     req.Status,
	}
	if student.Status == "" {
		student.Status = models.StudentActive
	}

	switch {
	case student.RollNumber == "":
		return nil, invalidf("rollNumber cannot be empty")
	case student.FullName == "":
		return nil, invalidf("fullName cannot be empty")
	case !validation.IsValidEmail(student.Email):
		return nil, apperrors.ErrInvalidEmail
	case !validation.IsValidSession(student.Batch):
		return nil, invalidf("batch must be a four digit year")
	case !student.Status.IsValid():
		return nil, invalidf("unknown student status %q", student.Status)
	}

	dob, err := parseOptionalDate("dateOfBirth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	if dob != nil && !dob.Before(helpers.DateOnly(s.now())) {
		return nil, invalidf("dateOfBirth must be in the past")
	}
	student.DateOfBirth = dob

	program, err := s.programRepo.GetByID(ctx, student.ProgramID)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(program.CampusID); err != nil {
		return nil, err
	}
	student.CampusID = program.CampusID
	student.DepartmentID = program.DepartmentID
	return student, nil
}

// CreateStudent registers a student directly, outside the admission workflow
func (s *studentService) CreateStudent(ctx context.Context, actor authz.Actor, req *dto.StudentRequest) (*models.Student, error) {
	student, err := s.studentFromRequest(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	student.EnrolledOn = helpers.DateOnly(s.now())
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// GetStudent returns one student
func (s *studentService) GetStudent(ctx context.Context, actor authz.Actor, id int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(student.CampusID); err != nil {
		return nil, err
	}
	return student, nil
}

// ListStudents returns a page of students
func (s *studentService) ListStudents(ctx context.Context, actor authz.Actor, filter dto.StudentFilter, page, size int) ([]*models.Student, int64, error) {
	campusID, err := actor.ScopeCampus(filter.CampusID)
	if err != nil {
		return nil, 0, err
	}
	filter.CampusID = campusID
	filter.Search = cleanOptional(filter.Search)
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, invalidf("unknown student status %q", *filter.Status)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.studentRepo.List(ctx, filter, offset, limit)
}

// UpdateStudent replaces a student record
func (s *studentService) UpdateStudent(ctx context.Context, actor authz.Actor, id int64, req *dto.StudentRequest) (*models.Student, error) {
	existing, err := s.GetStudent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	student, err := s.studentFromRequest(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	student.ID = id
	student.ApplicationID = existing.ApplicationID
	student.EnrolledOn = existing.EnrolledOn
	student.CreatedAt = existing.CreatedAt
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// DeleteStudent removes a student without loans or certificates
func (s *studentService) DeleteStudent(ctx context.Context, actor authz.Actor, id int64) error {
	if _, err := s.GetStudent(ctx, actor, id); err != nil {
		return err
	}
	return s.studentRepo.Delete(ctx, id)
}
