package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// Validation rule patterns
var (
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Campus, department and program codes
	CodePattern = `^[A-Z0-9]{2,20}$`

	// Employee codes such as HR-001 or ENG-104233
	EmployeeCodePattern = `^[A-Z]{2,5}-\d{3,6}$`

	// Payroll periods
	PeriodPattern = `^\d{4}-(0[1-9]|1[0-2])$`

	// Admission sessions are a four digit year
	SessionPattern = `^\d{4}$`

	// Timetable clock times
	ClockPattern = `^([01]\d|2[0-3]):[0-5]\d$`

	// ISBN-10 or ISBN-13 digits, hyphens allowed, ISBN-10 may end in X
	ISBNPattern = `^(\d{9}[\dX]|\d{13})$`

	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email        *regexp.Regexp
	Code         *regexp.Regexp
	EmployeeCode *regexp.Regexp
	Period       *regexp.Regexp
	Session      *regexp.Regexp
	Clock        *regexp.Regexp
	ISBN         *regexp.Regexp
}{
	Email:        regexp.MustCompile(EmailPattern),
	Code:         regexp.MustCompile(CodePattern),
	EmployeeCode: regexp.MustCompile(EmployeeCodePattern),
	Period:       regexp.MustCompile(PeriodPattern),
	Session:      regexp.MustCompile(SessionPattern),
	Clock:        regexp.MustCompile(ClockPattern),
	ISBN:         regexp.MustCompile(ISBNPattern),
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}
	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// IsValidCode reports whether s is an uppercase alphanumeric code
func IsValidCode(s string) bool {
	return NewStringValidation(s).WithPattern(CompiledPatterns.Code).Validate()
}

// IsValidEmployeeCode reports whether s looks like DEPT-1234
func IsValidEmployeeCode(s string) bool {
	return NewStringValidation(s).WithPattern(CompiledPatterns.EmployeeCode).Validate()
}

// IsValidPeriod reports whether s is a YYYY-MM period
func IsValidPeriod(s string) bool {
	return NewStringValidation(s).WithPattern(CompiledPatterns.Period).Validate()
}

// IsValidSession reports whether s is a four digit year
func IsValidSession(s string) bool {
	return NewStringValidation(s).WithPattern(CompiledPatterns.Session).Validate()
}

// IsValidClock reports whether s is an HH:MM time
func IsValidClock(s string) bool {
	return NewStringValidation(s).WithPattern(CompiledPatterns.Clock).Validate()
}

// NormalizeISBN strips hyphens and spaces and uppercases a trailing x
func NormalizeISBN(s string) string {
	s = strings.NewReplacer("-", "", " ", "").Replace(s)
	return strings.ToUpper(s)
}

// IsValidISBN reports whether s is an ISBN-10 or ISBN-13 after normalization
func IsValidISBN(s string) bool {
	return NewStringValidation(NormalizeISBN(s)).WithPattern(CompiledPatterns.ISBN).Validate()
}

// IsValidEmail checks the email against the configured pattern, case-insensitively
func IsValidEmail(s string) bool {
	return NewStringValidation(strings.ToLower(strings.TrimSpace(s))).
		WithMaxLength(254).
		WithPattern(CompiledPatterns.Email).
		Validate()
}

// IsStrongPassword requires the minimum length plus at least one letter and one digit
func IsStrongPassword(s string) bool {
	if len(s) < PasswordMinLength {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
