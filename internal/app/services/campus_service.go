package services

import (
	"context"
	"strings"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/campusly/campusly/internal/pkg/validation"
)

// CampusService manages campuses
type CampusService interface {
	CreateCampus(ctx context.Context, req *dto.CampusRequest) (*models.Campus, error)
	GetCampus(ctx context.Context, id int64) (*models.Campus, error)
	ListCampuses(ctx context.Context, search *string, page, size int) ([]*models.Campus, int64, error)
	UpdateCampus(ctx context.Context, id int64, req *dto.CampusRequest) (*models.Campus, error)
	DeleteCampus(ctx context.Context, id int64) error
}

// CampusStore persists campuses
type CampusStore interface {
	Create(ctx context.Context, campus *models.Campus) error
	GetByID(ctx context.Context, id int64) (*models.Campus, error)
	List(ctx context.Context, search *string, offset, limit uint64) ([]*models.Campus, int64, error)
	Update(ctx context.Context, campus *models.Campus) error
	HasDependents(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type campusService struct {
	campusRepo CampusStore
}

// NewCampusService creates a new CampusService
func NewCampusService(campusRepo CampusStore) CampusService {
	return &campusService{campusRepo: campusRepo}
}

func campusFromRequest(req *dto.CampusRequest) (*models.Campus, error) {
	campus := &models.Campus{
		Name:     strings.TrimSpace(req.Name),
		Code:     normalizeCode(req.Code),
		Address:  cleanOptional(req.Address),
		Phone:    cleanOptional(req.Phone),
		Email:    cleanOptional(req.Email),
		IsActive: true,
	}
	if req.IsActive != nil {
		campus.IsActive = *req.IsActive
	}

	if campus.Name == "" {
		return nil, invalidf("name cannot be empty")
	}
	if !validation.IsValidCode(campus.Code) {
		return nil, invalidf("code must be 2-20 uppercase letters or digits")
	}
	if campus.Email != nil && !validation.IsValidEmail(*campus.Email) {
		return nil, apperrors.ErrInvalidEmail
	}
	return campus, nil
}

// CreateCampus creates a campus
func (s *campusService) CreateCampus(ctx context.Context, req *dto.CampusRequest) (*models.Campus, error) {
	campus, err := campusFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.campusRepo.Create(ctx, campus); err != nil {
		return nil, err
	}
	return campus, nil
}

// GetCampus returns a campus by ID
func (s *campusService) GetCampus(ctx context.Context, id int64) (*models.Campus, error) {
	return s.campusRepo.GetByID(ctx, id)
}

// ListCampuses returns a page of campuses
func (s *campusService) ListCampuses(ctx context.Context, search *string, page, size int) ([]*models.Campus, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.campusRepo.List(ctx, cleanOptional(search), offset, limit)
}

// UpdateCampus replaces a campus
func (s *campusService) UpdateCampus(ctx context.Context, id int64, req *dto.CampusRequest) (*models.Campus, error) {
	campus, err := campusFromRequest(req)
	if err != nil {
		return nil, err
	}
	campus.ID = id
	if err := s.campusRepo.Update(ctx, campus); err != nil {
		return nil, err
	}
	return campus, nil
}

// DeleteCampus removes a campus that has no departments, employees or students
func (s *campusService) DeleteCampus(ctx context.Context, id int64) error {
	if _, err := s.campusRepo.GetByID(ctx, id); err != nil {
		return err
	}
	busy, err := s.campusRepo.HasDependents(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return apperrors.ErrCampusHasRelations
	}
	return s.campusRepo.Delete(ctx, id)
}
