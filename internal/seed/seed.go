package seed

import (
	"context"
	"errors"
	"strings"

	appModels "github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/config"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	pkgAuth "github.com/campusly/campusly/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// CampusStore is the subset of the campus repository used for seeding
type CampusStore interface {
	GetByCode(ctx context.Context, code string) (*appModels.Campus, error)
	Create(ctx context.Context, campus *appModels.Campus) error
}

// UserStore is the subset of the user repository used for seeding
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*appModels.User, error)
	Create(ctx context.Context, user *appModels.User) error
}

// CreateDefaultData makes sure the default campus exists and, when credentials are
// configured, a SUPER_ADMIN account to bootstrap everything else.
func CreateDefaultData(ctx context.Context, campuses CampusStore, users UserStore, cfg *config.Config, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Campus/Super admin)...")
	var finalErr error

	// --- Default Campus --- //
	code := strings.ToUpper(strings.TrimSpace(cfg.Seed.CampusCode))
	if code != "" {
		_, err := campuses.GetByCode(ctx, code)
		switch {
		case err == nil:
			lgr.Info().Str("code", code).Msg("Default campus already exists, skipping creation")
		case errors.Is(err, apperrors.ErrCampusNotFound):
			campus := &appModels.Campus{Name: cfg.Seed.CampusName, Code: code, IsActive: true}
			if err := campuses.Create(ctx, campus); err != nil && !errors.Is(err, apperrors.ErrCampusAlreadyExists) {
				lgr.Error().Err(err).Msg("Error creating default campus")
				finalErr = errors.Join(finalErr, err)
			} else if err == nil {
				lgr.Info().Int64("campusID", campus.ID).Str("code", code).Msg("Default campus created successfully")
			}
		default:
			lgr.Error().Err(err).Msg("Error checking default campus")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Super Admin --- //
	email := strings.ToLower(strings.TrimSpace(cfg.Seed.AdminEmail))
	if email == "" || cfg.Seed.AdminPassword == "" {
		lgr.Warn().Msg("Seed admin credentials not configured, skipping super admin creation")
		return finalErr
	}

	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		lgr.Info().Msg("Super admin already exists, skipping creation")
		return finalErr
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Msg("Error checking if super admin exists")
		return errors.Join(finalErr, err)
	}

	hashedPassword, err := pkgAuth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing super admin password")
		return errors.Join(finalErr, err)
	}

	admin := &appModels.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     "System Administrator",
		Role:         appModels.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating super admin")
		return errors.Join(finalErr, err)
	}
	lgr.Info().Int64("adminID", admin.ID).Msg("Super admin created successfully")

	return finalErr
}
