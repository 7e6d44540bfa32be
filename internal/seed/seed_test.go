package seed

import (
	"context"
	"errors"
	"testing"

	appModels "github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/config"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	pkgAuth "github.com/campusly/campusly/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCampuses struct {
	byCode  map[string]*appModels.Campus
	created int
}

func (f *fakeCampuses) GetByCode(_ context.Context, code string) (*appModels.Campus, error) {
	if c, ok := f.byCode[code]; ok {
		return c, nil
	}
	return nil, apperrors.ErrCampusNotFound
}

func (f *fakeCampuses) Create(_ context.Context, campus *appModels.Campus) error {
	f.created++
	campus.ID = int64(len(f.byCode) + 1)
	f.byCode[campus.Code] = campus
	return nil
}

type fakeUsers struct {
	byEmail map[string]*appModels.User
	err     error
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*appModels.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) Create(_ context.Context, user *appModels.User) error {
	user.ID = int64(len(f.byEmail) + 1)
	f.byEmail[user.Email] = user
	return nil
}

func seedConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Seed.CampusName = "Main Campus"
	cfg.Seed.CampusCode = "main"
	cfg.Seed.AdminEmail = " Root@Campusly.Test "
	cfg.Seed.AdminPassword = "S3cret!pass"
	return cfg
}

func TestCreateDefaultDataCreatesCampusAndSuperAdmin(t *testing.T) {
	pkgAuth.BcryptCost = 4
	campuses := &fakeCampuses{byCode: map[string]*appModels.Campus{}}
	users := &fakeUsers{byEmail: map[string]*appModels.User{}}

	require.NoError(t, CreateDefaultData(context.Background(), campuses, users, seedConfig(), zerolog.Nop()))

	campus, ok := campuses.byCode["MAIN"]
	require.True(t, ok)
	assert.True(t, campus.IsActive)

	admin, ok := users.byEmail["root@campusly.test"]
	require.True(t, ok)
	assert.Equal(t, appModels.RoleSuperAdmin, admin.Role)
	assert.Nil(t, admin.CampusID)
	assert.True(t, pkgAuth.CheckPassword(admin.PasswordHash, "S3cret!pass"))
}

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	pkgAuth.BcryptCost = 4
	campuses := &fakeCampuses{byCode: map[string]*appModels.Campus{}}
	users := &fakeUsers{byEmail: map[string]*appModels.User{}}
	cfg := seedConfig()

	require.NoError(t, CreateDefaultData(context.Background(), campuses, users, cfg, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(context.Background(), campuses, users, cfg, zerolog.Nop()))

	assert.Equal(t, 1, campuses.created)
	assert.Len(t, users.byEmail, 1)
}

func TestCreateDefaultDataSkipsAdminWithoutCredentials(t *testing.T) {
	campuses := &fakeCampuses{byCode: map[string]*appModels.Campus{}}
	users := &fakeUsers{byEmail: map[string]*appModels.User{}}
	cfg := seedConfig()
	cfg.Seed.AdminPassword = ""

	require.NoError(t, CreateDefaultData(context.Background(), campuses, users, cfg, zerolog.Nop()))
	assert.Empty(t, users.byEmail)
	assert.Len(t, campuses.byCode, 1)
}

func TestCreateDefaultDataReportsLookupErrors(t *testing.T) {
	boom := errors.New("connection refused")
	campuses := &fakeCampuses{byCode: map[string]*appModels.Campus{}}
	users := &fakeUsers{byEmail: map[string]*appModels.User{}, err: boom}

	err := CreateDefaultData(context.Background(), campuses, users, seedConfig(), zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
