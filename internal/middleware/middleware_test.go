package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type accountsStub struct{ err error }

func (s accountsStub) ValidateActive(context.Context, authz.Actor) error { return s.err }

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "middleware-test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "campusly-test",
	})
}

func tokenFor(t *testing.T, jwt *auth.JWTService, role models.Role, campusID *int64) string {
	t.Helper()
	pair, err := jwt.GenerateTokenPair(&models.User{ID: 7, Email: "staff@campusly.test", Role: role, CampusID: campusID})
	require.NoError(t, err)
	return pair.AccessToken
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJWTAuthSetsActor(t *testing.T) {
	jwt := newJWT()
	m := NewAuthMiddleware(jwt, accountsStub{})
	campus := int64(3)

	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user": actor.UserID, "role": actor.Role, "campus": *actor.CampusID})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, models.RoleHR, &campus))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":7,"role":"HR","campus":3}`, w.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	jwt := newJWT()
	m := NewAuthMiddleware(jwt, accountsStub{})
	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	other := auth.NewJWTService(auth.JWTConfig{SecretKey: "other", AccessTokenExp: time.Minute})
	expired := auth.NewJWTService(auth.JWTConfig{SecretKey: "middleware-test-secret", AccessTokenExp: -time.Minute})

	tests := []struct {
		name   string
		header string
		code   dto.ErrorCode
	}{
		{"missing header", "", dto.ErrorCodeUnauthorized},
		{"foreign signature", "Bearer " + tokenFor(t, other, models.RoleAdmin, nil), dto.ErrorCodeInvalidToken},
		{"expired", "Bearer " + tokenFor(t, expired, models.RoleAdmin, nil), dto.ErrorCodeExpiredToken},
		{"garbage", "Bearer not-a-token", dto.ErrorCodeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
		})
	}
}

func TestJWTAuthAcceptsQueryToken(t *testing.T) {
	jwt := newJWT()
	m := NewAuthMiddleware(jwt, accountsStub{})
	r := gin.New()
	r.GET("/ws", m.JWTAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+tokenFor(t, jwt, models.RoleTeacher, nil), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRoleRequired(t *testing.T) {
	m := NewAuthMiddleware(newJWT(), accountsStub{})

	tests := []struct {
		role   models.Role
		status int
	}{
		{models.RoleAccountant, http.StatusOK},
		{models.RoleSuperAdmin, http.StatusOK},
		{models.RoleLibrarian, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			r := gin.New()
			r.GET("/payroll",
				func(c *gin.Context) { SetActor(c, authz.Actor{UserID: 1, Role: tt.role}) },
				m.RoleRequired(models.RoleAccountant, models.RoleHR),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payroll", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestActiveAccountRequired(t *testing.T) {
	m := NewAuthMiddleware(newJWT(), accountsStub{err: apperrors.ErrAccountDisabled})
	r := gin.New()
	r.GET("/x",
		func(c *gin.Context) { SetActor(c, authz.Actor{UserID: 1, Role: models.RoleAdmin}) },
		m.ActiveAccountRequired(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeAccountDisabled, decodeError(t, w).Error.Code)
}

func TestErrorToDetail(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"not found", apperrors.ErrBookNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "book not found"},
		{"wrapped not found", fmt.Errorf("lookup: %w", apperrors.ErrStudentNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "student not found"},
		{"duplicate payroll", apperrors.ErrPayrollAlreadyProcessed, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "salary already processed for this employee and period"},
		{"transition", apperrors.NewTransitionError("cannot pay a pending payroll"), http.StatusConflict, dto.ErrorCodeInvalidTransition, "cannot pay a pending payroll"},
		{"validation", apperrors.NewValidationError("period is in the future"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "period is in the future"},
		{"has relations", apperrors.ErrCampusHasRelations, http.StatusConflict, dto.ErrorCodeConflict, "campus has departments, employees or students and cannot be deleted"},
		{"forbidden", authz.ErrOtherCampus, http.StatusForbidden, dto.ErrorCodeForbidden, "you don't have permission to access another campus"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := ErrorToDetail(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
			assert.Equal(t, tt.message, detail.Message)
		})
	}
}

func TestErrorToDetailCarriesDetails(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrTimetableConflict, "room LT-2 is taken").
		WithDetails(map[string]interface{}{"conflictingEntryId": int64(4)})

	status, detail := ErrorToDetail(err)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "room LT-2 is taken", detail.Message)
	assert.Equal(t, map[string]interface{}{"conflictingEntryId": int64(4)}, detail.Details)
}

func TestBindJSONReportsFields(t *testing.T) {
	r := gin.New()
	r.POST("/payroll", func(c *gin.Context) {
		var req dto.ProcessPayrollRequest
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"employeeId":3,"period":"2025-13"}`)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payroll", body))

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
	assert.Equal(t, "period", resp.Error.Field)

	w = httptest.NewRecorder()
	body = bytes.NewBufferString(`{"employeeId":3,"period":"2025-03"}`)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payroll", body))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLoggerEchoesRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"requestId":"req-42"`)
	assert.Contains(t, buf.String(), `"status":200`)
}
