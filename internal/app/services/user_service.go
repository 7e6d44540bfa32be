package services

import (
	"context"
	"strings"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/auth"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/campusly/campusly/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// UserService manages staff accounts
type UserService interface {
	CreateUser(ctx context.Context, actor authz.Actor, req *dto.CreateUserRequest) (*models.User, error)
	GetProfile(ctx context.Context, actor authz.Actor) (*models.User, error)
	GetUser(ctx context.Context, actor authz.Actor, id int64) (*models.User, error)
	ListUsers(ctx context.Context, actor authz.Actor, filter dto.UserFilter, page, size int) ([]*models.User, int64, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, id int64, active bool) (*models.User, error)
}

// UserStore persists staff accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter dto.UserFilter, offset, limit uint64) ([]*models.User, int64, error)
	UpdateStatus(ctx context.Context, id int64, active bool) error
}

// SessionRevoker ends every session of a user
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID int64) error
}

type userService struct {
	userRepo  UserStore
	tokenRepo SessionRevoker
	logger    zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo UserStore, tokenRepo SessionRevoker, logger zerolog.Logger) UserService {
	return &userService{userRepo: userRepo, tokenRepo: tokenRepo, logger: logger}
}

// CreateUser creates a staff account. ADMIN may only create non-root users in its own campus.
func (s *userService) CreateUser(ctx context.Context, actor authz.Actor, req *dto.CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validation.IsValidEmail(email) {
		return nil, apperrors.ErrInvalidEmail
	}
	if !validation.IsStrongPassword(req.Password) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidPassword,
			"password must be at least 8 characters and contain a letter and a digit")
	}
	if !req.Role.IsValid() {
		return nil, invalidf("unknown role %q", req.Role)
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, invalidf("full name is required")
	}

	if req.Role == models.RoleSuperAdmin {
		if !actor.IsSuperAdmin() {
			return nil, authz.ErrRoleNotAllowed
		}
		req.CampusID = nil
	} else {
		if req.CampusID == nil {
			if actor.IsSuperAdmin() {
				return nil, invalidf("campusId is required for role %s", req.Role)
			}
			req.CampusID = actor.CampusID
		}
		if err := actor.AuthorizeCampus(*req.CampusID); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         req.Role,
		CampusID:     req.CampusID,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Int64("createdBy", actor.UserID).
		Str("role", string(user.Role)).
		Msg("User created")
	return user, nil
}

// GetProfile returns the caller's own account
func (s *userService) GetProfile(ctx context.Context, actor authz.Actor) (*models.User, error) {
	return s.userRepo.GetByID(ctx, actor.UserID)
}

func (s *userService) authorizeUser(actor authz.Actor, user *models.User) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	if user.CampusID == nil {
		return authz.ErrOtherCampus
	}
	return actor.AuthorizeCampus(*user.CampusID)
}

// GetUser returns one account visible to the actor
func (s *userService) GetUser(ctx context.Context, actor authz.Actor, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeUser(actor, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers lists accounts, scoped to the actor's campus unless SUPER_ADMIN
func (s *userService) ListUsers(ctx context.Context, actor authz.Actor, filter dto.UserFilter, page, size int) ([]*models.User, int64, error) {
	campusID, err := actor.ScopeCampus(filter.CampusID)
	if err != nil {
		return nil, 0, err
	}
	filter.CampusID = campusID
	if filter.Role != nil && !filter.Role.IsValid() {
		return nil, 0, invalidf("unknown role %q", *filter.Role)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.userRepo.List(ctx, filter, offset, limit)
}

// UpdateStatus enables or disables an account. Disabling ends its sessions.
func (s *userService) UpdateStatus(ctx context.Context, actor authz.Actor, id int64, active bool) (*models.User, error) {
	if id == actor.UserID && !active {
		return nil, apperrors.NewBadRequestError("you cannot disable your own account")
	}

	user, err := s.GetUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return nil, authz.ErrRoleNotAllowed
	}

	if err := s.userRepo.UpdateStatus(ctx, id, active); err != nil {
		return nil, err
	}
	user.IsActive = active

	if !active {
		if err := s.tokenRepo.RevokeAllForUser(ctx, id); err != nil {
			s.logger.Error().Err(err).Int64("userID", id).Msg("Failed to revoke sessions of disabled user")
		}
	}

	s.logger.Info().Int64("userID", id).Bool("active", active).Int64("by", actor.UserID).Msg("User status changed")
	return user, nil
}
