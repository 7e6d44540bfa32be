package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/db"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var bookIssueColumns = []string{
	"i.id", "i.book_id", "i.student_id", "i.issued_on", "i.due_on", "i.returned_on", "i.fine_amount",
	"i.status", "i.issued_by", "i.created_at", "i.updated_at", "b.title", "s.full_name",
}

// BookIssueRepository handles library loans
type BookIssueRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBookIssueRepository creates a new book issue repository
func NewBookIssueRepository(db *pgxpool.Pool) *BookIssueRepository {
	return &BookIssueRepository{db: db, sb: statementBuilder()}
}

func (r *BookIssueRepository) selectQuery() squirrel.SelectBuilder {
	return r.sb.Select(bookIssueColumns...).From("book_issues i").
		Join("books b ON b.id = i.book_id").
		Join("students s ON s.id = i.student_id")
}

func scanBookIssue(row pgx.Row) (*models.BookIssue, error) {
	var i models.BookIssue
	err := row.Scan(&i.ID, &i.BookID, &i.StudentID, &i.IssuedOn, &i.DueOn, &i.ReturnedOn, &i.FineAmount,
		&i.Status, &i.IssuedBy, &i.CreatedAt, &i.UpdatedAt, &i.BookTitle, &i.StudentName)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Issue lends a copy: it checks the borrowing limit, takes a copy and records the loan atomically
func (r *BookIssueRepository) Issue(ctx context.Context, issue *models.BookIssue, maxOpen int) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		// Serializes concurrent loans for the same student
		var studentID int64
		err := tx.QueryRow(ctx, `SELECT id FROM students WHERE id = $1 FOR UPDATE`, issue.StudentID).Scan(&studentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrStudentNotFound
			}
			return fmt.Errorf("error locking student: %w", err)
		}

		var open int
		err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM book_issues WHERE student_id = $1 AND status = $2`,
			issue.StudentID, models.BookIssued).Scan(&open)
		if err != nil {
			return fmt.Errorf("error counting open issues: %w", err)
		}
		if open >= maxOpen {
			return apperrors.ErrBorrowLimitReached
		}

		tag, err := tx.Exec(ctx, `
			UPDATE books SET available_copies = available_copies - 1, updated_at = NOW()
			WHERE id = $1 AND available_copies > 0`, issue.BookID)
		if err != nil {
			return fmt.Errorf("error taking book copy: %w", err)
		}
		if tag.RowsAffected() == 0 {
			found, err := exists(ctx, tx, `SELECT 1 FROM books WHERE id = $1`, issue.BookID)
			if err != nil {
				return fmt.Errorf("error checking book: %w", err)
			}
			if !found {
				return apperrors.ErrBookNotFound
			}
			return apperrors.ErrNoCopiesAvailable
		}

		issue.Status = models.BookIssued
		issue.FineAmount = decimal.Zero
		err = tx.QueryRow(ctx, `
			INSERT INTO book_issues (book_id, student_id, issued_on, due_on, fine_amount, status, issued_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at`,
			issue.BookID, issue.StudentID, issue.IssuedOn, issue.DueOn, issue.FineAmount, issue.Status, issue.IssuedBy,
		).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrStudentNotFound
			}
			return fmt.Errorf("error recording book issue: %w", err)
		}
		return nil
	})
}

// Return closes an open loan with its fine and puts the copy back
func (r *BookIssueRepository) Return(ctx context.Context, issue *models.BookIssue) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE book_issues SET status = $1, returned_on = $2, fine_amount = $3, updated_at = NOW()
			WHERE id = $4 AND status = $5`,
			models.BookReturned, issue.ReturnedOn, issue.FineAmount, issue.ID, models.BookIssued)
		if err != nil {
			return fmt.Errorf("error returning book: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrBookAlreadyReturned
		}

		_, err = tx.Exec(ctx, `
			UPDATE books SET available_copies = available_copies + 1, updated_at = NOW()
			WHERE id = $1`, issue.BookID)
		if err != nil {
			return fmt.Errorf("error restoring book copy: %w", err)
		}
		issue.Status = models.BookReturned
		return nil
	})
}

// GetByID retrieves a loan by ID
func (r *BookIssueRepository) GetByID(ctx context.Context, id int64) (*models.BookIssue, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"i.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get book issue query: %w", err)
	}

	issue, err := scanBookIssue(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookIssueNotFound
		}
		return nil, fmt.Errorf("error retrieving book issue: %w", err)
	}
	return issue, nil
}

// List returns a page of loans. OVERDUE matches open loans past due on today.
func (r *BookIssueRepository) List(ctx context.Context, filter dto.BookIssueFilter, today time.Time, offset, limit uint64) ([]*models.BookIssue, int64, error) {
	conds := squirrel.And{}
	if filter.BookID != nil {
		conds = append(conds, squirrel.Eq{"i.book_id": *filter.BookID})
	}
	if filter.StudentID != nil {
		conds = append(conds, squirrel.Eq{"i.student_id": *filter.StudentID})
	}
	if filter.Status != nil {
		switch *filter.Status {
		case models.BookOverdue:
			conds = append(conds, squirrel.Eq{"i.status": models.BookIssued}, squirrel.Lt{"i.due_on": today})
		case models.BookIssued:
			conds = append(conds, squirrel.Eq{"i.status": models.BookIssued}, squirrel.GtOrEq{"i.due_on": today})
		default:
			conds = append(conds, squirrel.Eq{"i.status": *filter.Status})
		}
	}

	countQuery := r.sb.Select("COUNT(*)").From("book_issues i").Where(conds)
	total, err := countRows(ctx, r.db, countQuery)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.selectQuery().Where(conds).OrderBy("i.issued_on DESC", "i.id DESC").
		Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list book issues query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing book issues: %w", err)
	}
	defer rows.Close()

	issues := make([]*models.BookIssue, 0)
	for rows.Next() {
		i, err := scanBookIssue(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning book issue: %w", err)
		}
		issues = append(issues, i)
	}
	return issues, total, rows.Err()
}
