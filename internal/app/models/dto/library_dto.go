package dto

import "github.com/campusly/campusly/internal/app/models"

// BookRequest creates or replaces a catalogue entry
type BookRequest struct {
	CampusID      int64   `json:"campusId" binding:"required,min=1" example:"1"`
	ISBN          string  `json:"isbn" binding:"required,isbn" example:"978-0-13-468599-1"`
	Title         string  `json:"title" binding:"required,max=255" example:"The Go Programming Language"`
	Author        string  `json:"author" binding:"required,max=255" example:"Alan Donovan"`
	Publisher     *string `json:"publisher" binding:"omitempty,max=255"`
	PublishedYear *int    `json:"publishedYear" binding:"omitempty,min=1000,max=9999"`
	Category      *string `json:"category" binding:"omitempty,max=100"`
	TotalCopies   int     `json:"totalCopies" binding:"required,min=1" example:"3"`
	ShelfLocation *string `json:"shelfLocation" binding:"omitempty,max=50"`
}

// BookFilter narrows book listings
type BookFilter struct {
	CampusID  *int64
	Category  *string
	Available *bool
	Search    *string
}

// IssueBookRequest lends a copy to a student
type IssueBookRequest struct {
	BookID    int64 `json:"bookId" binding:"required,min=1" example:"4"`
	StudentID int64 `json:"studentId" binding:"required,min=1" example:"12"`
}

// BookIssueFilter narrows loan listings
type BookIssueFilter struct {
	BookID    *int64
	StudentID *int64
	Status    *models.BookIssueStatus
}
