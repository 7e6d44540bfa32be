package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags (period, clock, isbn, code) to gin's validator
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
			return validation.IsValidPeriod(fl.Field().String())
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			return validation.IsValidClock(fl.Field().String())
		})
		_ = v.RegisterValidation("isbn", func(fl validator.FieldLevel) bool {
			return validation.IsValidISBN(fl.Field().String())
		})
		_ = v.RegisterValidation("code", func(fl validator.FieldLevel) bool {
			return validation.IsValidCode(strings.ToUpper(fl.Field().String()))
		})
	})
}

// BindJSON binds and validates the request body, writing a 400 response on failure
func BindJSON(c *gin.Context, obj interface{}) bool {
	RegisterValidators()
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(ValidationErrorDetail(err)))
		return false
	}
	return true
}

// BindQuery binds query parameters into obj, writing a 400 response on failure
func BindQuery(c *gin.Context, obj interface{}) bool {
	RegisterValidators()
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(ValidationErrorDetail(err)))
		return false
	}
	return true
}

// ValidationErrorDetail converts a binding error into an error detail listing every failed field
func ValidationErrorDetail(err error) *dto.ErrorDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
	}

	errs := make([]dto.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, dto.FieldError{Field: fe.Field(), Rule: fe.Tag(), Message: formatValidationError(fe)})
	}

	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").WithDetails(errs)
	if len(errs) == 1 {
		detail = detail.WithField(errs[0].Field)
	}
	return detail
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "len":
		return e.Field() + " must be exactly " + e.Param() + " characters"
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "datetime":
		return e.Field() + " must match the layout " + e.Param()
	case "period":
		return e.Field() + " must be a YYYY-MM period"
	case "clock":
		return e.Field() + " must be an HH:MM time"
	case "isbn":
		return e.Field() + " must be a valid ISBN-10 or ISBN-13"
	case "code":
		return e.Field() + " must be 2 to 20 letters or digits"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
