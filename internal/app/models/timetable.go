package models

import "time"

// TimetableEntry is one weekly teaching slot
type TimetableEntry struct {
	ID           int64     `json:"id" db:"id"`
	CampusID     int64     `json:"campusId" db:"campus_id"`
	DepartmentID int64     `json:"departmentId" db:"department_id"`
	ProgramID    *int64    `json:"programId,omitempty" db:"program_id"`
	Session      string    `json:"session" db:"session"`
	Section      string    `json:"section" db:"section"`
	CourseCode   string    `json:"courseCode" db:"course_code"`
	CourseTitle  string    `json:"courseTitle" db:"course_title"`
	TeacherID    int64     `json:"teacherId" db:"teacher_id"`
	Room         string    `json:"room" db:"room"`
	DayOfWeek    int       `json:"dayOfWeek" db:"day_of_week"` // 1 = Monday
	StartTime    string    `json:"startTime" db:"start_time"`  // HH:MM
	EndTime      string    `json:"endTime" db:"end_time"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	TeacherName string `json:"teacherName,omitempty" db:"-"`
}
