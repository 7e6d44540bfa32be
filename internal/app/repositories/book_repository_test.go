package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/repositories"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedOn = time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)

func createBook(t *testing.T, pool *pgxpool.Pool, campusID int64, isbn string, copies int) *models.Book {
	t.Helper()
	b := &models.Book{CampusID: campusID, ISBN: isbn, Title: "The Go Programming Language", Author: "Alan Donovan", TotalCopies: copies}
	require.NoError(t, repositories.NewBookRepository(pool).Create(context.Background(), b))
	return b
}

func lend(ctx context.Context, repo *repositories.BookIssueRepository, bookID, studentID int64, maxOpen int) (*models.BookIssue, error) {
	issue := &models.BookIssue{BookID: bookID, StudentID: studentID, IssuedOn: issuedOn, DueOn: issuedOn.AddDate(0, 0, 14)}
	return issue, repo.Issue(ctx, issue, maxOpen)
}

func TestBookUpdateKeepsCopiesOnLoan(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	fx := seedAcademics(t, pool)
	books := repositories.NewBookRepository(pool)
	issues := repositories.NewBookIssueRepository(pool)

	book := createBook(t, pool, fx.campus.ID, "9780134190440", 3)
	assert.Equal(t, 3, book.AvailableCopies)

	for _, roll := range []string{"BSCS-2025-0001", "BSCS-2025-0002"} {
		s := fx.student(t, pool, roll, "2025")
		_, err := lend(ctx, issues, book.ID, s.ID, 3)
		require.NoError(t, err)
	}

	shrink := *book
	shrink.TotalCopies = 1
	assert.ErrorIs(t, books.Update(ctx, &shrink), apperrors.ErrCopiesBelowIssued)

	grow := *book
	grow.Title = "The Go Programming Language (2nd printing)"
	grow.TotalCopies = 5
	require.NoError(t, books.Update(ctx, &grow))
	assert.Equal(t, 3, grow.AvailableCopies)

	stored, err := books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.TotalCopies)
	assert.Equal(t, 3, stored.AvailableCopies)
	assert.Equal(t, 2, stored.IssuedCopies())

	missing := *book
	missing.ID = book.ID + 100
	assert.ErrorIs(t, books.Update(ctx, &missing), apperrors.ErrBookNotFound)
}

func TestBookIssueAndReturn(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	fx := seedAcademics(t, pool)
	books := repositories.NewBookRepository(pool)
	issues := repositories.NewBookIssueRepository(pool)

	single := createBook(t, pool, fx.campus.ID, "9780134190440", 1)
	spare := createBook(t, pool, fx.campus.ID, "9780262033848", 2)
	zara := fx.student(t, pool, "BSCS-2025-0001", "2025")
	usman := fx.student(t, pool, "BSCS-2025-0002", "2025")

	loan, err := lend(ctx, issues, single.ID, zara.ID, 1)
	require.NoError(t, err)
	assert.NotZero(t, loan.ID)
	assert.Equal(t, models.BookIssued, loan.Status)

	_, err = lend(ctx, issues, single.ID, usman.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrNoCopiesAvailable)

	_, err = lend(ctx, issues, spare.ID, zara.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrBorrowLimitReached)

	_, err = lend(ctx, issues, spare.ID+100, usman.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrBookNotFound)

	_, err = lend(ctx, issues, spare.ID, usman.ID+100, 1)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	stored, err := books.GetByID(ctx, spare.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.AvailableCopies, "refused loans take no copy")

	returned := issuedOn.AddDate(0, 0, 16)
	loan.ReturnedOn = &returned
	loan.FineAmount = decimal.NewFromInt(20)
	require.NoError(t, issues.Return(ctx, loan))
	assert.Equal(t, models.BookReturned, loan.Status)

	stored, err = books.GetByID(ctx, single.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AvailableCopies)

	assert.ErrorIs(t, issues.Return(ctx, loan), apperrors.ErrBookAlreadyReturned)

	closed, err := issues.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookReturned, closed.Status)
	assert.True(t, closed.FineAmount.Equal(decimal.NewFromInt(20)))

	_, err = lend(ctx, issues, spare.ID, zara.ID, 1)
	assert.NoError(t, err, "returning frees the borrowing slot")
}
