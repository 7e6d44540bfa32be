package dto

// TimetableEntryRequest creates or replaces a weekly slot
type TimetableEntryRequest struct {
	CampusID     int64  `json:"campusId" binding:"required,min=1" example:"1"`
	DepartmentID int64  `json:"departmentId" binding:"required,min=1" example:"1"`
	ProgramID    *int64 `json:"programId" binding:"omitempty,min=1"`
	Session      string `json:"session" binding:"required,max=20" example:"2025"`
	Section      string `json:"section" binding:"required,max=20" example:"A"`
	CourseCode   string `json:"courseCode" binding:"required,max=20" example:"CS101"`
	CourseTitle  string `json:"courseTitle" binding:"required,max=150" example:"Programming Fundamentals"`
	TeacherID    int64  `json:"teacherId" binding:"required,min=1" example:"3"`
	Room         string `json:"room" binding:"required,max=50" example:"LT-2"`
	DayOfWeek    int    `json:"dayOfWeek" binding:"required,min=1,max=7" example:"1"`
	StartTime    string `json:"startTime" binding:"required,clock" example:"09:00"`
	EndTime      string `json:"endTime" binding:"required,clock" example:"10:30"`
}

// TimetableFilter narrows timetable listings
type TimetableFilter struct {
	CampusID     *int64
	DepartmentID *int64
	ProgramID    *int64
	Session      *string
	Section      *string
	TeacherID    *int64
	Room         *string
	DayOfWeek    *int
}
