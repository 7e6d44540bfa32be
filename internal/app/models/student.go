package models

import "time"

// StudentStatus is the enrollment state of a student
type StudentStatus string

const (
	StudentActive    StudentStatus = "ACTIVE"
	StudentSuspended StudentStatus = "SUSPENDED"
	StudentWithdrawn StudentStatus = "WITHDRAWN"
	StudentGraduated StudentStatus = "GRADUATED"
)

// IsValid reports whether s is a known status
func (s StudentStatus) IsValid() bool {
	switch s {
	case StudentActive, StudentSuspended, StudentWithdrawn, StudentGraduated:
		return true
	}
	return false
}

// Student defines the student model based on the 'students' table
type Student struct {
	ID            int64         `json:"id" db:"id"`
	CampusID      int64         `json:"campusId" db:"campus_id"`
	DepartmentID  int64         `json:"departmentId" db:"department_id"`
	ProgramID     int64         `json:"programId" db:"program_id"`
	ApplicationID *int64        `json:"applicationId,omitempty" db:"application_id"`
	RollNumber    string        `json:"rollNumber" db:"roll_number"`
	FullName      string        `json:"fullName" db:"full_name"`
	Email         string        `json:"email" db:"email"`
	Phone         *string       `json:"phone,omitempty" db:"phone"`
	DateOfBirth   *time.Time    `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	Batch         string        `json:"batch" db:"batch"`
	Status        StudentStatus `json:"status" db:"status"`
	EnrolledOn    time.Time     `json:"enrolledOn" db:"enrolled_on"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}
