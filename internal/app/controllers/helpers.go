// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"
	"strings"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// parseIDParam parses a positive ID path parameter, writing a 400 response when it is malformed
func parseIDParam(ctx *gin.Context, paramName, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID").
			WithField(paramName).
			WithDetails(label + " ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// currentActor returns the authenticated caller or writes a 401 response
func currentActor(ctx *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return authz.Actor{}, false
	}
	return actor, true
}

// queryInt64 reads an optional positive integer query parameter
func queryInt64(ctx *gin.Context, name string) (*int64, bool) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		invalidQuery(ctx, name, name+" must be a positive number")
		return nil, false
	}
	return &v, true
}

// queryInt reads an optional integer query parameter
func queryInt(ctx *gin.Context, name string) (*int, bool) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		invalidQuery(ctx, name, name+" must be a number")
		return nil, false
	}
	return &v, true
}

// queryBool reads an optional boolean query parameter
func queryBool(ctx *gin.Context, name string) (*bool, bool) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		invalidQuery(ctx, name, name+" must be true or false")
		return nil, false
	}
	return &v, true
}

// queryString reads an optional, trimmed string query parameter
func queryString(ctx *gin.Context, name string) *string {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// queryEnum reads an optional string-typed enum query parameter, uppercased
func queryEnum[T ~string](ctx *gin.Context, name string) *T {
	raw := queryString(ctx, name)
	if raw == nil {
		return nil
	}
	v := T(strings.ToUpper(*raw))
	return &v
}

func invalidQuery(ctx *gin.Context, name, details string) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameter").
		WithField(name).
		WithDetails(details)
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// respondPage writes a paginated list response
func respondPage(ctx *gin.Context, items interface{}, total int64, page, size int) {
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(items, helpers.NewPaginationInfo(total, page, size)))
}
