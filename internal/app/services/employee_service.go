package services

import (
	"context"
	"strings"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/campusly/campusly/internal/pkg/validation"
)

// EmployeeService manages the HR roll
type EmployeeService interface {
	CreateEmployee(ctx context.Context, actor authz.Actor, req *dto.EmployeeRequest) (*models.Employee, error)
	GetEmployee(ctx context.Context, actor authz.Actor, id int64) (*models.Employee, error)
	ListEmployees(ctx context.Context, actor authz.Actor, filter dto.EmployeeFilter, page, size int) ([]*models.Employee, int64, error)
	UpdateEmployee(ctx context.Context, actor authz.Actor, id int64, req *dto.EmployeeRequest) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, actor authz.Actor, id int64) error
}

// EmployeeStore persists employees
type EmployeeStore interface {
	Create(ctx context.Context, e *models.Employee) error
	GetByID(ctx context.Context, id int64) (*models.Employee, error)
	List(ctx context.Context, filter dto.EmployeeFilter, offset, limit uint64) ([]*models.Employee, int64, error)
	Update(ctx context.Context, e *models.Employee) error
	Delete(ctx context.Context, id int64) error
}

type employeeService struct {
	employeeRepo   EmployeeStore
	departmentRepo DepartmentReader
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(employeeRepo EmployeeStore, departmentRepo DepartmentReader) EmployeeService {
	return &employeeService{employeeRepo: employeeRepo, departmentRepo: departmentRepo}
}

func (s *employeeService) employeeFromRequest(ctx context.Context, actor authz.Actor, req *dto.EmployeeRequest) (*models.Employee, error) {
	e := &models.Employee{
		CampusID:       req.CampusID,
		DepartmentID:   req.DepartmentID,
		UserID:         req.UserID,
		EmployeeCode:   strings.ToUpper(strings.TrimSpace(req.EmployeeCode)),
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          cleanOptional(req.Phone),
		Designation:    strings.TrimSpace(req.Designation),
		EmploymentType: req.EmploymentType,
		Status:         req.Status,
	}
	if e.Status == "" {
		e.Status = models.EmployeeActive
	}

	switch {
	case !validation.IsValidEmployeeCode(e.EmployeeCode):
		return nil, invalidf("employeeCode must look like ABC-123")
	case e.FullName == "":
		return nil, invalidf("fullName cannot be empty")
	case !validation.IsValidEmail(e.Email):
		return nil, apperrors.ErrInvalidEmail
	case e.Designation == "":
		return nil, invalidf("designation cannot be empty")
	case !e.EmploymentType.IsValid():
		return nil, invalidf("unknown employment type %q", e.EmploymentType)
	case !e.Status.IsValid():
		return nil, invalidf("unknown employee status %q", e.Status)
	}

	joining, err := parseDate("joiningDate", req.JoiningDate)
	if err != nil {
		return nil, err
	}
	e.JoiningDate = joining

	if err := actor.AuthorizeCampus(e.CampusID); err != nil {
		return nil, err
	}
	if e.DepartmentID != nil {
		department, err := s.departmentRepo.GetByID(ctx, *e.DepartmentID)
		if err != nil {
			return nil, err
		}
		if department.CampusID != e.CampusID {
			return nil, invalidf("department %d does not belong to campus %d", department.ID, e.CampusID)
		}
	}
	return e, nil
}

// CreateEmployee adds an employee to the HR roll
func (s *employeeService) CreateEmployee(ctx context.Context, actor authz.Actor, req *dto.EmployeeRequest) (*models.Employee, error) {
	e, err := s.employeeFromRequest(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	if err := s.employeeRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetEmployee returns one employee
func (s *employeeService) GetEmployee(ctx context.Context, actor authz.Actor, id int64) (*models.Employee, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(e.CampusID); err != nil {
		return nil, err
	}
	return e, nil
}

// ListEmployees returns a page of employees
func (s *employeeService) ListEmployees(ctx context.Context, actor authz.Actor, filter dto.EmployeeFilter, page, size int) ([]*models.Employee, int64, error) {
	campusID, err := actor.ScopeCampus(filter.CampusID)
	if err != nil {
		return nil, 0, err
	}
	filter.CampusID = campusID
	filter.Search = cleanOptional(filter.Search)
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, invalidf("unknown employee status %q", *filter.Status)
	}
	if filter.EmploymentType != nil && !filter.EmploymentType.IsValid() {
		return nil, 0, invalidf("unknown employment type %q", *filter.EmploymentType)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.employeeRepo.List(ctx, filter, offset, limit)
}

// UpdateEmployee replaces an employee
func (s *employeeService) UpdateEmployee(ctx context.Context, actor authz.Actor, id int64, req *dto.EmployeeRequest) (*models.Employee, error) {
	existing, err := s.GetEmployee(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	e, err := s.employeeFromRequest(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	e.ID = id
	e.CreatedAt = existing.CreatedAt
	if err := s.employeeRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEmployee removes an employee without payroll or timetable history
func (s *employeeService) DeleteEmployee(ctx context.Context, actor authz.Actor, id int64) error {
	if _, err := s.GetEmployee(ctx, actor, id); err != nil {
		return err
	}
	return s.employeeRepo.Delete(ctx, id)
}
