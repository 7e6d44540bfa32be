package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/campusly/campusly/internal/pkg/validation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LibraryService manages the catalogue and book loans
type LibraryService interface {
	CreateBook(ctx context.Context, actor authz.Actor, req *dto.BookRequest) (*models.Book, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	ListBooks(ctx context.Context, filter dto.BookFilter, page, size int) ([]*models.Book, int64, error)
	UpdateBook(ctx context.Context, actor authz.Actor, id int64, req *dto.BookRequest) (*models.Book, error)
	DeleteBook(ctx context.Context, actor authz.Actor, id int64) error

	IssueBook(ctx context.Context, actor authz.Actor, req *dto.IssueBookRequest) (*models.BookIssue, error)
	ReturnBook(ctx context.Context, actor authz.Actor, issueID int64) (*models.BookIssue, error)
	GetIssue(ctx context.Context, id int64) (*models.BookIssue, error)
	ListIssues(ctx context.Context, filter dto.BookIssueFilter, page, size int) ([]*models.BookIssue, int64, error)
}

// BookStore persists catalogue entries
type BookStore interface {
	Create(ctx context.Context, b *models.Book) error
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	List(ctx context.Context, filter dto.BookFilter, offset, limit uint64) ([]*models.Book, int64, error)
	Update(ctx context.Context, b *models.Book) error
	Delete(ctx context.Context, id int64) error
}

// BookIssueStore persists loans
type BookIssueStore interface {
	Issue(ctx context.Context, issue *models.BookIssue, maxOpen int) error
	Return(ctx context.Context, issue *models.BookIssue) error
	GetByID(ctx context.Context, id int64) (*models.BookIssue, error)
	List(ctx context.Context, filter dto.BookIssueFilter, today time.Time, offset, limit uint64) ([]*models.BookIssue, int64, error)
}

// LoanPolicy sets loan length, borrowing limit and the daily overdue fine
type LoanPolicy struct {
	LoanDays           int
	MaxBooksPerStudent int
	FinePerDay         decimal.Decimal
}

type libraryService struct {
	bookRepo    BookStore
	issueRepo   BookIssueStore
	studentRepo StudentReader
	policy      LoanPolicy
	logger      zerolog.Logger
	now         Clock
}

// NewLibraryService creates a new LibraryService
func NewLibraryService(bookRepo BookStore, issueRepo BookIssueStore, studentRepo StudentReader, policy LoanPolicy, logger zerolog.Logger) LibraryService {
	return &libraryService{
		bookRepo:    bookRepo,
		issueRepo:   issueRepo,
		studentRepo: studentRepo,
		policy:      policy,
		logger:      logger,
		now:         time.Now,
	}
}

func bookFromRequest(req *dto.BookRequest) (*models.Book, error) {
	isbn := validation.NormalizeISBN(req.ISBN)
	if !validation.IsValidISBN(isbn) {
		return nil, invalidf("isbn must be a valid ISBN-10 or ISBN-13")
	}
	title, author := strings.TrimSpace(req.Title), strings.TrimSpace(req.Author)
	if title == "" || author == "" {
		return nil, invalidf("title and author are required")
	}
	if req.TotalCopies < 1 {
		return nil, invalidf("totalCopies must be at least 1")
	}
	return &models.Book{
		CampusID:        req.CampusID,
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		Publisher:       cleanOptional(req.Publisher),
		PublishedYear:   req.PublishedYear,
		Category:        cleanOptional(req.Category),
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
		ShelfLocation:   cleanOptional(req.ShelfLocation),
	}, nil
}

// CreateBook adds a title with all copies available
func (s *libraryService) CreateBook(ctx context.Context, actor authz.Actor, req *dto.BookRequest) (*models.Book, error) {
	book, err := bookFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(book.CampusID); err != nil {
		return nil, err
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook returns one catalogue entry
func (s *libraryService) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	return s.bookRepo.GetByID(ctx, id)
}

// ListBooks searches the catalogue
func (s *libraryService) ListBooks(ctx context.Context, filter dto.BookFilter, page, size int) ([]*models.Book, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.bookRepo.List(ctx, filter, offset, limit)
}

// UpdateBook replaces catalogue details. Total copies cannot drop below the copies on loan,
// and a book with copies on loan stays on its campus.
func (s *libraryService) UpdateBook(ctx context.Context, actor authz.Actor, id int64, req *dto.BookRequest) (*models.Book, error) {
	existing, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(existing.CampusID); err != nil {
		return nil, err
	}

	book, err := bookFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(book.CampusID); err != nil {
		return nil, err
	}
	if book.TotalCopies < existing.IssuedCopies() {
		return nil, apperrors.ErrCopiesBelowIssued
	}
	if book.CampusID != existing.CampusID && existing.IssuedCopies() > 0 {
		return nil, apperrors.ErrBookOnLoan
	}

	book.ID = id
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a title that was never lent
func (s *libraryService) DeleteBook(ctx context.Context, actor authz.Actor, id int64) error {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.AuthorizeCampus(book.CampusID); err != nil {
		return err
	}
	return s.bookRepo.Delete(ctx, id)
}

// IssueBook lends a copy to an active student of the book's campus
func (s *libraryService) IssueBook(ctx context.Context, actor authz.Actor, req *dto.IssueBookRequest) (*models.BookIssue, error) {
	book, err := s.bookRepo.GetByID(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(book.CampusID); err != nil {
		return nil, err
	}
	student, err := s.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if student.Status != models.StudentActive {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("student is %s and cannot borrow books", student.Status))
	}
	if student.CampusID != book.CampusID {
		return nil, apperrors.NewBadRequestError("student and book belong to different campuses")
	}
	if book.AvailableCopies <= 0 {
		return nil, apperrors.ErrNoCopiesAvailable
	}

	today := helpers.DateOnly(s.now())
	issuedBy := actor.UserID
	issue := &models.BookIssue{
		BookID:      book.ID,
		StudentID:   student.ID,
		IssuedOn:    today,
		DueOn:       today.AddDate(0, 0, s.policy.LoanDays),
		IssuedBy:    &issuedBy,
		BookTitle:   book.Title,
		StudentName: student.FullName,
	}
	if err := s.issueRepo.Issue(ctx, issue, s.policy.MaxBooksPerStudent); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("issueID", issue.ID).
		Int64("bookID", issue.BookID).
		Int64("studentID", issue.StudentID).
		Time("dueOn", issue.DueOn).
		Msg("Book issued")
	return issue, nil
}

// OverdueFine charges finePerDay for each day returnedOn is past dueOn
func OverdueFine(dueOn, returnedOn time.Time, finePerDay decimal.Decimal) decimal.Decimal {
	due, returned := helpers.DateOnly(dueOn), helpers.DateOnly(returnedOn)
	if !returned.After(due) {
		return decimal.Zero
	}
	days := int64(returned.Sub(due).Hours() / 24)
	return finePerDay.Mul(decimal.NewFromInt(days)).Round(2)
}

// ReturnBook closes a loan and records any overdue fine
func (s *libraryService) ReturnBook(ctx context.Context, actor authz.Actor, issueID int64) (*models.BookIssue, error) {
	issue, err := s.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue.Status == models.BookReturned {
		return nil, apperrors.ErrBookAlreadyReturned
	}
	book, err := s.bookRepo.GetByID(ctx, issue.BookID)
	if err != nil {
		return nil, err
	}
	if err := actor.AuthorizeCampus(book.CampusID); err != nil {
		return nil, err
	}

	today := helpers.DateOnly(s.now())
	issue.ReturnedOn = &today
	issue.FineAmount = OverdueFine(issue.DueOn, today, s.policy.FinePerDay)
	if err := s.issueRepo.Return(ctx, issue); err != nil {
		return nil, err
	}

	event := s.logger.Info().Int64("issueID", issue.ID).Int64("bookID", issue.BookID)
	if issue.FineAmount.IsPositive() {
		event = event.Str("fine", issue.FineAmount.StringFixed(2))
	}
	event.Msg("Book returned")
	return issue, nil
}

// GetIssue returns one loan with its derived status
func (s *libraryService) GetIssue(ctx context.Context, id int64) (*models.BookIssue, error) {
	issue, err := s.issueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	issue.Status = issue.EffectiveStatus(helpers.DateOnly(s.now()))
	return issue, nil
}

// ListIssues returns a page of loans. Open loans past due are reported as OVERDUE.
func (s *libraryService) ListIssues(ctx context.Context, filter dto.BookIssueFilter, page, size int) ([]*models.BookIssue, int64, error) {
	if filter.Status != nil {
		switch *filter.Status {
		case models.BookIssued, models.BookReturned, models.BookOverdue:
		default:
			return nil, 0, invalidf("unknown issue status %q", *filter.Status)
		}
	}

	today := helpers.DateOnly(s.now())
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	issues, total, err := s.issueRepo.List(ctx, filter, today, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	for _, issue := range issues {
		issue.Status = issue.EffectiveStatus(today)
	}
	return issues, total, nil
}
