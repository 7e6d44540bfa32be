package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/pkg/apperrors"
)

// Common authorization errors
var (
	ErrOtherCampus    = apperrors.NewForbiddenError("you don't have permission to access another campus")
	ErrNoCampus       = apperrors.NewForbiddenError("your account is not assigned to a campus")
	ErrRoleNotAllowed = apperrors.NewForbiddenError("your role is not allowed to perform this action")
)

// Actor is the authenticated caller as carried in the access token
type Actor struct {
	UserID   int64
	Email    string
	Role     models.Role
	CampusID *int64
}

// IsSuperAdmin reports whether the actor bypasses campus scoping
func (a Actor) IsSuperAdmin() bool {
	return a.Role == models.RoleSuperAdmin
}

// HasRole reports whether the actor holds one of roles. SUPER_ADMIN holds every role.
func (a Actor) HasRole(roles ...models.Role) bool {
	if a.IsSuperAdmin() {
		return true
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// CanAccessCampus reports whether the actor may read or write records of campusID
func (a Actor) CanAccessCampus(campusID int64) bool {
	if a.IsSuperAdmin() {
		return true
	}
	return a.CampusID != nil && *a.CampusID == campusID
}

// AuthorizeCampus returns ErrOtherCampus when campusID is outside the actor's campus
func (a Actor) AuthorizeCampus(campusID int64) error {
	if a.CanAccessCampus(campusID) {
		return nil
	}
	if a.CampusID == nil {
		return ErrNoCampus
	}
	return ErrOtherCampus
}

// ScopeCampus narrows a listing filter to the actor's campus.
// SUPER_ADMIN keeps the requested filter, which may be nil for all campuses.
func (a Actor) ScopeCampus(requested *int64) (*int64, error) {
	if a.IsSuperAdmin() {
		return requested, nil
	}
	if a.CampusID == nil {
		return nil, ErrNoCampus
	}
	if requested != nil && *requested != *a.CampusID {
		return nil, ErrOtherCampus
	}
	campusID := *a.CampusID
	return &campusID, nil
}

// UserReader loads users for authorization checks
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthorizationService resolves actors from stored accounts
type AuthorizationService struct {
	userRepo UserReader
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo UserReader) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

// ValidateActive confirms the actor's account still exists and is enabled.
// Access tokens outlive account changes, so sensitive operations re-check.
func (s *AuthorizationService) ValidateActive(ctx context.Context, actor Actor) error {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.ErrTokenInvalid
		}
		return fmt.Errorf("failed to load user for authorization: %w", err)
	}
	if !user.IsActive {
		return apperrors.ErrAccountDisabled
	}
	return nil
}

// GetUserInfo returns the stored account behind the actor
func (s *AuthorizationService) GetUserInfo(ctx context.Context, actor Actor) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user information: %w", err)
	}
	return user, nil
}
