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
	"github.com/shopspring/decimal"
)

// ProgramService manages degree programs
type ProgramService interface {
	CreateProgram(ctx context.Context, actor authz.Actor, req *dto.ProgramRequest) (*models.Program, error)
	GetProgram(ctx context.Context, id int64) (*models.Program, error)
	ListPrograms(ctx context.Context, filter dto.ProgramFilter, page, size int) ([]*models.Program, int64, error)
	UpdateProgram(ctx context.Context, actor authz.Actor, id int64, req *dto.ProgramRequest) (*models.Program, error)
	DeleteProgram(ctx context.Context, actor authz.Actor, id int64) error
}

// ProgramStore persists programs
type ProgramStore interface {
	Create(ctx context.Context, program *models.Program) error
	GetByID(ctx context.Context, id int64) (*models.Program, error)
	List(ctx context.Context, filter dto.ProgramFilter, offset, limit uint64) ([]*models.Program, int64, error)
	Update(ctx context.Context, program *models.Program) error
	HasApplications(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// DepartmentReader loads departments
type DepartmentReader interface {
	GetByID(ctx context.Context, id int64) (*models.Department, error)
}

type programService struct {
	programRepo    ProgramStore
	departmentRepo DepartmentReader
}

// NewProgramService creates a new ProgramService
func NewProgramService(programRepo ProgramStore, departmentRepo DepartmentReader) ProgramService {
	return &programService{programRepo: programRepo, departmentRepo: departmentRepo}
}

var hundred = decimal.NewFromInt(100)

func programFromRequest(req *dto.ProgramRequest) (*models.Program, error) {
	program := &models.Program{
		DepartmentID:  req.DepartmentID,
		Name:          strings.TrimSpace(req.Name),
		Code:          normalizeCode(req.Code),
		DurationYears: req.DurationYears,
		TotalSeats:    req.TotalSeats,
		MinPercentage: req.MinPercentage,
		IsActive:      true,
	}
	if req.IsActive != nil {
		program.IsActive = *req.IsActive
	}

	switch {
	case program.Name == "":
		return nil, invalidf("name cannot be empty")
	case !validation.IsValidCode(program.Code):
		return nil, invalidf("code must be 2-20 uppercase letters or digits")
	case program.DurationYears < 1 || program.DurationYears > 8:
		return nil, invalidf("durationYears must be between 1 and 8")
	case program.TotalSeats < 0:
		return nil, invalidf("totalSeats cannot be negative")
	case program.MinPercentage.IsNegative() || program.MinPercentage.GreaterThan(hundred):
		return nil, invalidf("minPercentage must be between 0 and 100")
	}
	return program, nil
}

// authorizeDepartment loads the program's department and checks the actor's campus
func (s *programService) authorizeDepartment(ctx context.Context, actor authz.Actor, departmentID int64) (*models.Department, error) {
	department, err := s.departmentRepo.GetByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(department.CampusID); err != nil {
		return nil, err
	}
	return department, nil
}

// CreateProgram creates a program under a department
func (s *programService) CreateProgram(ctx context.Context, actor authz.Actor, req *dto.ProgramRequest) (*models.Program, error) {
	program, err := programFromRequest(req)
	if err != nil {
		return nil, err
	}
	department, err := s.authorizeDepartment(ctx, actor, program.DepartmentID)
	if err != nil {
		return nil, err
	}
	program.CampusID = department.CampusID

	if err := s.programRepo.Create(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

// GetProgram returns a program by ID. Programs are public catalogue data.
func (s *programService) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	return s.programRepo.GetByID(ctx, id)
}

// ListPrograms returns a page of programs
func (s *programService) ListPrograms(ctx context.Context, filter dto.ProgramFilter, page, size int) ([]*models.Program, int64, error) {
	filter.Search = cleanOptional(filter.Search)
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.programRepo.List(ctx, filter, offset, limit)
}

// UpdateProgram replaces a program
func (s *programService) UpdateProgram(ctx context.Context, actor authz.Actor, id int64, req *dto.ProgramRequest) (*models.Program, error) {
	existing, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(existing.CampusID); err != nil {
		return nil, err
	}

	program, err := programFromRequest(req)
	if err != nil {
		return nil, err
	}
	department, err := s.authorizeDepartment(ctx, actor, program.DepartmentID)
	if err != nil {
		return nil, err
	}
	program.ID = id
	program.CampusID = department.CampusID

	if err := s.programRepo.Update(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

// DeleteProgram removes a program that has received no applications
func (s *programService) DeleteProgram(ctx context.Context, actor authz.Actor, id int64) error {
	program, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.AuthorizeCampus(program.CampusID); err != nil {
		return err
	}
	busy, err := s.programRepo.HasApplications(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return apperrors.ErrProgramHasRelations
	}
	return s.programRepo.Delete(ctx, id)
}
