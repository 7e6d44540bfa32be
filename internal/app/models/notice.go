package models

import "time"

// NoticeAudience limits who a notice is addressed to
type NoticeAudience string

const (
	AudienceAll      NoticeAudience = "ALL"
	AudienceStudents NoticeAudience = "STUDENTS"
	AudienceStaff    NoticeAudience = "STAFF"
)

// IsValid reports whether a is a known audience
func (a NoticeAudience) IsValid() bool {
	return a == AudienceAll || a == AudienceStudents || a == AudienceStaff
}

// Notice is an announcement, global when CampusID is nil
type Notice struct {
	ID        int64          `json:"id" db:"id"`
	CampusID  *int64         `json:"campusId,omitempty" db:"campus_id"`
	Title     string         `json:"title" db:"title"`
	Body      string         `json:"body" db:"body"`
	Audience  NoticeAudience `json:"audience" db:"audience"`
	PublishAt time.Time      `json:"publishAt" db:"publish_at"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedBy *int64         `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// IsActiveAt reports whether the notice is published and not yet expired at t
func (n *Notice) IsActiveAt(t time.Time) bool {
	if t.Before(n.PublishAt) {
		return false
	}
	return n.ExpiresAt == nil || t.Before(*n.ExpiresAt)
}
