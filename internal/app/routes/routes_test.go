package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/controllers"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type activeAccounts struct{}

func (activeAccounts) ValidateActive(context.Context, authz.Actor) error { return nil }

// Controllers have no services behind them. A request that clears every
// gate ends in a binding error or a recovered panic, never in 401 or 403.
func newTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwt := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "routes-test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "campusly-test",
	})

	r := gin.New()
	r.Use(middleware.Recovery())
	SetupRouter(r, Controllers{
		Auth:        &controllers.AuthController{},
		User:        &controllers.UserController{},
		Campus:      &controllers.CampusController{},
		Department:  &controllers.DepartmentController{},
		Program:     &controllers.ProgramController{},
		Admission:   &controllers.AdmissionController{},
		Student:     &controllers.StudentController{},
		Employee:    &controllers.EmployeeController{},
		Attendance:  &controllers.AttendanceController{},
		Payroll:     &controllers.PayrollController{},
		Certificate: &controllers.CertificateController{},
		Library:     &controllers.LibraryController{},
		Timetable:   &controllers.TimetableController{},
		Notice:      &controllers.NoticeController{},
	}, middleware.NewAuthMiddleware(jwt, activeAccounts{}))
	return r, jwt
}

func bearer(t *testing.T, jwt *auth.JWTService, role models.Role) string {
	t.Helper()
	var campus *int64
	if role != models.RoleSuperAdmin {
		campus = models.Int64Ptr(1)
	}
	pair, err := jwt.GenerateTokenPair(&models.User{ID: 5, Email: "staff@campusly.test", Role: role, CampusID: campus})
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func TestRoleGates(t *testing.T) {
	r, jwt := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		role   models.Role
		want   int
		passes bool
	}{
		{name: "no token", method: http.MethodGet, path: "/api/v1/employees", want: http.StatusUnauthorized},
		{name: "teacher cannot list employees", method: http.MethodGet, path: "/api/v1/employees", role: models.RoleTeacher, want: http.StatusForbidden},
		{name: "hr cannot process payroll", method: http.MethodPost, path: "/api/v1/payroll/process", role: models.RoleHR, want: http.StatusForbidden},
		{name: "accountant cannot mark attendance", method: http.MethodPost, path: "/api/v1/attendance", role: models.RoleAccountant, want: http.StatusForbidden},
		{name: "admin cannot create campus", method: http.MethodPost, path: "/api/v1/campuses", role: models.RoleAdmin, want: http.StatusForbidden},
		{name: "librarian cannot revoke certificate", method: http.MethodPost, path: "/api/v1/certificates/3/revoke", role: models.RoleLibrarian, want: http.StatusForbidden},
		{name: "teacher cannot run merit list", method: http.MethodPost, path: "/api/v1/admissions/merit-lists", role: models.RoleTeacher, want: http.StatusForbidden},
		{name: "accountant reaches attendance summary", method: http.MethodGet, path: "/api/v1/attendance/summary", role: models.RoleAccountant, passes: true},
		{name: "accountant reaches payroll processing", method: http.MethodPost, path: "/api/v1/payroll/process", role: models.RoleAccountant, passes: true},
		{name: "hr reaches attendance marking", method: http.MethodPost, path: "/api/v1/attendance", role: models.RoleHR, passes: true},
		{name: "super admin passes every gate", method: http.MethodPost, path: "/api/v1/campuses", role: models.RoleSuperAdmin, passes: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", bearer(t, jwt, tt.role))
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if tt.passes {
				assert.NotEqual(t, http.StatusUnauthorized, w.Code, w.Body.String())
				assert.NotEqual(t, http.StatusForbidden, w.Code, w.Body.String())
				return
			}
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestPublicRoutesSkipAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/certificates/verify/CERT-2025-ABCDEF12",
		"/api/v1/notices/active",
		"/api/v1/programs",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEqual(t, http.StatusUnauthorized, w.Code, path)
		assert.NotEqual(t, http.StatusNotFound, w.Code, path)
	}
}
