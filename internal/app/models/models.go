package models

// Role is the staff role carried in the access token
type Role string

const (
	RoleSuperAdmin       Role = "SUPER_ADMIN"
	RoleAdmin            Role = "ADMIN"
	RoleHR               Role = "HR"
	RoleAccountant       Role = "ACCOUNTANT"
	RoleAdmissionOfficer Role = "ADMISSION_OFFICER"
	RoleLibrarian        Role = "LIBRARIAN"
	RoleTeacher          Role = "TEACHER"
)

// AllRoles lists every assignable role
var AllRoles = []Role{
	RoleSuperAdmin, RoleAdmin, RoleHR, RoleAccountant, RoleAdmissionOfficer, RoleLibrarian, RoleTeacher,
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
