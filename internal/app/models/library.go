package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a catalogued title with a fixed number of copies
type Book struct {
	ID              int64     `json:"id" db:"id"`
	CampusID        int64     `json:"campusId" db:"campus_id"`
	ISBN            string    `json:"isbn" db:"isbn"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Publisher       *string   `json:"publisher,omitempty" db:"publisher"`
	PublishedYear   *int      `json:"publishedYear,omitempty" db:"published_year"`
	Category        *string   `json:"category,omitempty" db:"category"`
	TotalCopies     int       `json:"totalCopies" db:"total_copies"`
	AvailableCopies int       `json:"availableCopies" db:"available_copies"`
	ShelfLocation   *string   `json:"shelfLocation,omitempty" db:"shelf_location"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// IssuedCopies is the number of copies currently out on loan
func (b *Book) IssuedCopies() int {
	return b.TotalCopies - b.AvailableCopies
}

// BookIssueStatus is ISSUED until the copy is returned. OVERDUE is derived, never stored.
type BookIssueStatus string

const (
	BookIssued   BookIssueStatus = "ISSUED"
	BookReturned BookIssueStatus = "RETURNED"
	BookOverdue  BookIssueStatus = "OVERDUE"
)

// BookIssue is one loan of a copy to a student
type BookIssue struct {
	ID         int64           `json:"id" db:"id"`
	BookID     int64           `json:"bookId" db:"book_id"`
	StudentID  int64           `json:"studentId" db:"student_id"`
	IssuedOn   time.Time       `json:"issuedOn" db:"issued_on"`
	DueOn      time.Time       `json:"dueOn" db:"due_on"`
	ReturnedOn *time.Time      `json:"returnedOn,omitempty" db:"returned_on"`
	FineAmount decimal.Decimal `json:"fineAmount" db:"fine_amount"`
	Status     BookIssueStatus `json:"status" db:"status"`
	IssuedBy   *int64          `json:"issuedBy,omitempty" db:"issued_by"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`

	BookTitle   string `json:"bookTitle,omitempty" db:"-"`
	StudentName string `json:"studentName,omitempty" db:"-"`
}

// EffectiveStatus reports OVERDUE for open loans past their due date
func (i *BookIssue) EffectiveStatus(today time.Time) BookIssueStatus {
	if i.Status == BookIssued && today.After(i.DueOn) {
		return BookOverdue
	}
	return i.Status
}
