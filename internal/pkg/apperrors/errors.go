package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
	ErrHasRelations          = errors.New("resource has associated data and cannot be deleted")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")

	// Workflow errors
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// User errors
var (
	ErrUserNotFound       = NewResourceNotFoundError("user not found")
	ErrEmailAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "email already exists")
)

// Campus and department errors
var (
	ErrCampusNotFound          = NewResourceNotFoundError("campus not found")
	ErrCampusAlreadyExists     = NewCustomError(ErrResourceAlreadyExists, "campus with this name or code already exists")
	ErrCampusHasRelations      = NewCustomError(ErrHasRelations, "campus has departments, employees or students and cannot be deleted")
	ErrDepartmentNotFound      = NewResourceNotFoundError("department not found")
	ErrDepartmentAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "department with this name or code already exists in the campus")
	ErrDepartmentHasRelations  = NewCustomError(ErrHasRelations, "department has programs, employees or students and cannot be deleted")
	ErrProgramNotFound         = NewResourceNotFoundError("program not found")
	ErrProgramAlreadyExists    = NewCustomError(ErrResourceAlreadyExists, "program with this code already exists")
	ErrProgramHasRelations     = NewCustomError(ErrHasRelations, "program has admission applications and cannot be deleted")
)

// Admission and student errors
var (
	ErrApplicationNotFound      = NewResourceNotFoundError("admission application not found")
	ErrApplicationAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "an application for this program and session already exists for this email")
	ErrStudentNotFound          = NewResourceNotFoundError("student not found")
	ErrStudentAlreadyExists     = NewCustomError(ErrResourceAlreadyExists, "student with this roll number or email already exists")
	ErrDocumentNotFound         = NewResourceNotFoundError("document not found")
	ErrStudentHasRelations      = NewCustomError(ErrHasRelations, "student has library issues or certificates and cannot be deleted")
)

// HR, attendance and payroll errors
var (
	ErrEmployeeNotFound         = NewResourceNotFoundError("employee not found")
	ErrEmployeeAlreadyExists    = NewCustomError(ErrResourceAlreadyExists, "employee with this code or email already exists")
	ErrSalaryStructureNotFound  = NewResourceNotFoundError("salary structure not found")
	ErrNoActiveSalaryStructure  = NewCustomError(ErrValidationFailed, "employee has no active salary structure")
	ErrStructureNotYetEffective = NewCustomError(ErrValidationFailed, "salary structure is not effective for this period")
	ErrPayrollNotFound          = NewResourceNotFoundError("payroll record not found")
	ErrPayrollAlreadyProcessed  = NewCustomError(ErrResourceAlreadyExists, "salary already processed for this employee and period")
	ErrAttendanceRecordNotFound = NewResourceNotFoundError("attendance record not found")
	ErrEmployeeHasRelations     = NewCustomError(ErrHasRelations, "employee has payroll or timetable records and cannot be deleted")
)

// Library, timetable, certificate and notice errors
var (
	ErrBookNotFound           = NewResourceNotFoundError("book not found")
	ErrBookAlreadyExists      = NewCustomError(ErrResourceAlreadyExists, "book with this ISBN already exists")
	ErrNoCopiesAvailable      = NewConflictError("no copies of this book are available")
	ErrBorrowLimitReached     = NewConflictError("student has reached the borrowing limit")
	ErrBookIssueNotFound      = NewResourceNotFoundError("book issue not found")
	ErrBookHasRelations       = NewCustomError(ErrHasRelations, "book has loan history and cannot be deleted")
	ErrCopiesBelowIssued      = NewConflictError("total copies cannot be lower than the copies currently issued")
	ErrBookOnLoan             = NewConflictError("book has copies on loan and cannot move to another campus")
	ErrBookAlreadyReturned    = NewConflictError("book has already been returned")
	ErrTimetableEntryNotFound = NewResourceNotFoundError("timetable entry not found")
	ErrTimetableConflict      = NewConflictError("timetable entry overlaps an existing entry for the same room or teacher")
	ErrCertificateNotFound    = NewResourceNotFoundError("certificate not found")
	ErrUserHasRelations       = NewCustomError(ErrHasRelations, "user is referenced by other records")
	ErrNoticeNotFound         = NewResourceNotFoundError("notice not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a validation failure carrying a user-facing message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewTransitionError reports a workflow status change that is not allowed
func NewTransitionError(message string) error {
	return &CustomError{
		Err:     ErrInvalidStateTransition,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
