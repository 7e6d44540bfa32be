package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/helpers"
)

// Clock returns the current time; tests replace it
type Clock func() time.Time

func invalidf(format string, args ...any) error {
	return apperrors.NewValidationError(fmt.Sprintf(format, args...))
}

// parseDate parses a YYYY-MM-DD request field
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(helpers.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, invalidf("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

// parseOptionalDate parses an optional YYYY-MM-DD request field
func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// cleanOptional trims s and drops it when empty
func cleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// normalizeCode uppercases and trims an identifier code
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
