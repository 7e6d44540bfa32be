package services

import (
	"context"
	"testing"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverdueFine(t *testing.T) {
	due := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	rate := dec("10")

	tests := []struct {
		name     string
		returned time.Time
		want     string
	}{
		{"early", due.AddDate(0, 0, -3), "0"},
		{"on due date", due.Add(15 * time.Hour), "0"},
		{"one day late", due.AddDate(0, 0, 1), "10"},
		{"two weeks late", due.AddDate(0, 0, 14).Add(9 * time.Hour), "140"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, OverdueFine(due, tt.returned, rate), "fine")
		})
	}
}

type libraryFixture struct {
	svc    *libraryService
	books  *fakeBooks
	issues *fakeIssues
	actor  authz.Actor
}

func newLibraryFixture() *libraryFixture {
	books := &fakeBooks{byID: map[int64]*models.Book{
		1: {ID: 1, CampusID: 1, ISBN: "9780134685991", Title: "Effective Java", TotalCopies: 2, AvailableCopies: 2},
		2: {ID: 2, CampusID: 1, ISBN: "9780262033848", Title: "Introduction to Algorithms", TotalCopies: 1, AvailableCopies: 0},
	}}
	issues := &fakeIssues{books: books, byID: map[int64]*models.BookIssue{}}
	students := fakeStudents{
		1: {ID: 1, CampusID: 1, FullName: "Zara Ali", Status: models.StudentActive},
		2: {ID: 2, CampusID: 1, FullName: "Usman Tariq", Status: models.StudentSuspended},
		3: {ID: 3, CampusID: 2, FullName: "Fatima Noor", Status: models.StudentActive},
	}
	policy := LoanPolicy{LoanDays: 14, MaxBooksPerStudent: 1, FinePerDay: dec("10")}
	svc := NewLibraryService(books, issues, students, policy, testLogger).(*libraryService)
	svc.now = fixedClock

	campus := int64(1)
	return &libraryFixture{
		svc:    svc,
		books:  books,
		issues: issues,
		actor:  authz.Actor{UserID: 4, Role: models.RoleLibrarian, CampusID: &campus},
	}
}

func TestIssueBook(t *testing.T) {
	ctx := context.Background()

	t.Run("lends with due date and limit", func(t *testing.T) {
		f := newLibraryFixture()
		issue, err := f.svc.IssueBook(ctx, f.actor, &dto.IssueBookRequest{BookID: 1, StudentID: 1})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.April, 29, 0, 0, 0, 0, time.UTC), issue.DueOn)
		assert.Equal(t, 1, f.books.byID[1].AvailableCopies)

		_, err = f.svc.IssueBook(ctx, f.actor, &dto.IssueBookRequest{BookID: 1, StudentID: 1})
		assert.ErrorIs(t, err, apperrors.ErrBorrowLimitReached)
	})

	t.Run("no copies left", func(t *testing.T) {
		f := newLibraryFixture()
		_, err := f.svc.IssueBook(ctx, f.actor, &dto.IssueBookRequest{BookID: 2, StudentID: 1})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("inactive student", func(t *testing.T) {
		f := newLibraryFixture()
		_, err := f.svc.IssueBook(ctx, f.actor, &dto.IssueBookRequest{BookID: 1, StudentID: 2})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("student of another campus", func(t *testing.T) {
		f := newLibraryFixture()
		_, err := f.svc.IssueBook(ctx, f.actor, &dto.IssueBookRequest{BookID: 1, StudentID: 3})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func TestReturnBookChargesOverdueFine(t *testing.T) {
	ctx := context.Background()
	f := newLibraryFixture()

	f.issues.byID[7] = &models.BookIssue{
		ID:        7,
		BookID:    1,
		StudentID: 1,
		IssuedOn:  time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
		DueOn:     time.Date(2025, time.April, 3, 0, 0, 0, 0, time.UTC),
		Status:    models.BookIssued,
	}
	f.books.byID[1].AvailableCopies = 1

	issue, err := f.svc.ReturnBook(ctx, f.actor, 7)
	require.NoError(t, err)
	assert.Equal(t, models.BookReturned, issue.Status)
	assertDecimal(t, "120", issue.FineAmount, "fine")
	assert.Equal(t, 2, f.books.byID[1].AvailableCopies)

	_, err = f.svc.ReturnBook(ctx, f.actor, 7)
	assert.ErrorIs(t, err, apperrors.ErrBookAlreadyReturned)
}

func TestGetIssueReportsOverdue(t *testing.T) {
	f := newLibraryFixture()
	f.issues.byID[3] = &models.BookIssue{
		ID:     3,
		BookID: 1,
		DueOn:  time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC),
		Status: models.BookIssued,
	}

	issue, err := f.svc.GetIssue(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.BookOverdue, issue.Status)
}

func TestCreateBookValidatesISBN(t *testing.T) {
	f := newLibraryFixture()
	_, err := f.svc.CreateBook(context.Background(), f.actor, &dto.BookRequest{
		CampusID: 1, ISBN: "12345", Title: "Bad", Author: "Nobody", TotalCopies: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUpdateBookCampusMove(t *testing.T) {
	ctx := context.Background()
	admin := authz.Actor{UserID: 1, Role: models.RoleSuperAdmin}
	move := &dto.BookRequest{CampusID: 2, ISBN: "9780262033848", Title: "Introduction to Algorithms", Author: "Cormen", TotalCopies: 1}

	t.Run("refused while copies are on loan", func(t *testing.T) {
		f := newLibraryFixture()
		_, err := f.svc.UpdateBook(ctx, admin, 2, move)
		assert.ErrorIs(t, err, apperrors.ErrBookOnLoan)
		assert.Equal(t, int64(1), f.books.byID[2].CampusID)
	})

	t.Run("allowed when every copy is on the shelf", func(t *testing.T) {
		f := newLibraryFixture()
		f.books.byID[2].AvailableCopies = 1
		book, err := f.svc.UpdateBook(ctx, admin, 2, move)
		require.NoError(t, err)
		assert.Equal(t, int64(2), book.CampusID)
		assert.Equal(t, 1, f.books.byID[2].AvailableCopies)
	})
}
