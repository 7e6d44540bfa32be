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

// DepartmentService handles department-related operations
type DepartmentService interface {
	CreateDepartment(ctx context.Context, actor authz.Actor, req *dto.DepartmentRequest) (*models.Department, error)
	GetDepartment(ctx context.Context, actor authz.Actor, id int64) (*models.Department, error)
	ListDepartments(ctx context.Context, actor authz.Actor, filter dto.DepartmentFilter, page, size int) ([]*models.Department, int64, error)
	UpdateDepartment(ctx context.Context, actor authz.Actor, id int64, req *dto.DepartmentRequest) (*models.Department, error)
	DeleteDepartment(ctx context.Context, actor authz.Actor, id int64) error
}

// DepartmentStore persists departments
type DepartmentStore interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	List(ctx context.Context, filter dto.DepartmentFilter, offset, limit uint64) ([]*models.Department, int64, error)
	Update(ctx context.Context, department *models.Department) error
	HasDependents(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type departmentService struct {
	departmentRepo DepartmentStore
}

// NewDepartmentService creates a new department service instance
func NewDepartmentService(departmentRepo DepartmentStore) DepartmentService {
	return &departmentService{departmentRepo: departmentRepo}
}

// validateDepartment validates department data before database operations
func validateDepartment(department *models.Department) error {
	if department.Name == "" {
		return invalidf("name cannot be empty")
	}
	if !validation.IsValidCode(department.Code) {
		return invalidf("code must be 2-20 uppercase letters or digits")
	}
	return nil
}

func departmentFromRequest(req *dto.DepartmentRequest) *models.Department {
	return &models.Department{
		CampusID:    req.CampusID,
		Name:        strings.TrimSpace(req.Name),
		Code:        normalizeCode(req.Code),
		Description: cleanOptional(req.Description),
	}
}

// CreateDepartment creates a department in a campus the actor manages
func (s *departmentService) CreateDepartment(ctx context.Context, actor authz.Actor, req *dto.DepartmentRequest) (*models.Department, error) {
	department := departmentFromRequest(req)
	if err := validateDepartment(department); err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(department.CampusID); err != nil {
		return nil, err
	}
	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// GetDepartment returns a department by ID
func (s *departmentService) GetDepartment(ctx context.Context, actor authz.Actor, id int64) (*models.Department, error) {
	department, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(department.CampusID); err != nil {
		return nil, err
	}
	return department, nil
}

// ListDepartments returns a page of departments visible to the actor
func (s *departmentService) ListDepartments(ctx context.Context, actor authz.Actor, filter dto.DepartmentFilter, page, size int) ([]*models.Department, int64, error) {
	campusID, err := actor.ScopeCampus(filter.CampusID)
	if err != nil {
		return nil, 0, err
	}
	filter.CampusID = campusID
	filter.Search = cleanOptional(filter.Search)

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.departmentRepo.List(ctx, filter, offset, limit)
}

// UpdateDepartment replaces a department. Moving it to another campus requires access to both.
func (s *departmentService) UpdateDepartment(ctx context.Context, actor authz.Actor, id int64, req *dto.DepartmentRequest) (*models.Department, error) {
	if _, err := s.GetDepartment(ctx, actor, id); err != nil {
		return nil, err
	}

	department := departmentFromRequest(req)
	department.ID = id
	if err := validateDepartment(department); err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(department.CampusID); err != nil {
		return nil, err
	}
	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// DeleteDepartment removes a department with no programs, employees or students
func (s *departmentService) DeleteDepartment(ctx context.Context, actor authz.Actor, id int64) error {
	if _, err := s.GetDepartment(ctx, actor, id); err != nil {
		return err
	}
	busy, err := s.departmentRepo.HasDependents(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return apperrors.ErrDepartmentHasRelations
	}
	return s.departmentRepo.Delete(ctx, id)
}
