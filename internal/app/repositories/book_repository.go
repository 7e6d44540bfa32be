package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var bookColumns = []string{
	"id", "campus_id", "isbn", "title", "author", "publisher", "published_year", "category",
	"total_copies", "available_copies", "shelf_location", "created_at", "updated_at",
}

// BookRepository handles the library catalogue
type BookRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *pgxpool.Pool) *BookRepository {
	return &BookRepository{db: db, sb: statementBuilder()}
}

func scanBook(row pgx.Row) (*models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.CampusID, &b.ISBN, &b.Title, &b.Author, &b.Publisher, &b.PublishedYear,
		&b.Category, &b.TotalCopies, &b.AvailableCopies, &b.ShelfLocation, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func mapBookWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "books_isbn_key"):
		return apperrors.ErrBookAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrCampusNotFound
	}
	return fmt.Errorf("error saving book: %w", err)
}

// Create adds a title to the catalogue with every copy available
func (r *BookRepository) Create(ctx context.Context, b *models.Book) error {
	b.AvailableCopies = b.TotalCopies
	sql, args, err := r.sb.Insert("books").
		Columns("campus_id", "isbn", "title", "author", "publisher", "published_year", "category",
			"total_copies", "available_copies", "shelf_location").
		Values(b.CampusID, b.ISBN, b.Title, b.Author, b.Publisher, b.PublishedYear, b.Category,
			b.TotalCopies, b.AvailableCopies, b.ShelfLocation).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create book query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return mapBookWriteError(err)
	}
	return nil
}

// GetByID retrieves a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	sql, args, err := r.sb.Select(bookColumns...).From("books").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get book query: %w", err)
	}

	b, err := scanBook(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("error retrieving book: %w", err)
	}
	return b, nil
}

// List returns a page of books
func (r *BookRepository) List(ctx context.Context, filter dto.BookFilter, offset, limit uint64) ([]*models.Book, int64, error) {
	conds := squirrel.And{}
	if filter.CampusID != nil {
		conds = append(conds, squirrel.Eq{"campus_id": *filter.CampusID})
	}
	if filter.Category != nil {
		conds = append(conds, squirrel.Eq{"category": *filter.Category})
	}
	if filter.Available != nil {
		if *filter.Available {
			conds = append(conds, squirrel.Gt{"available_copies": 0})
		} else {
			conds = append(conds, squirrel.Eq{"available_copies": 0})
		}
	}
	if filter.Search != nil {
		pattern := likePattern(*filter.Search)
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"author": pattern},
			squirrel.ILike{"isbn": pattern},
		})
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("books").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.sb.Select(bookColumns...).From("books").Where(conds).
		OrderBy("title").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list books query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing books: %w", err)
	}
	defer rows.Close()

	books := make([]*models.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning book: %w", err)
		}
		books = append(books, b)
	}
	return books, total, rows.Err()
}

// Update rewrites catalogue details. Available copies follow the change in total
// copies, and the update is refused when it would drop below the copies on loan.
func (r *BookRepository) Update(ctx context.Context, b *models.Book) error {
	err := r.db.QueryRow(ctx, `
		UPDATE books
		SET campus_id = $1, isbn = $2, title = $3, author = $4, publisher = $5, published_year = $6,
			category = $7, shelf_location = $8,
			available_copies = $9 - (total_copies - available_copies),
			total_copies = $9, updated_at = NOW()
		WHERE id = $10 AND total_copies - available_copies <= $9
		RETURNING available_copies, created_at, updated_at`,
		b.CampusID, b.ISBN, b.Title, b.Author, b.Publisher, b.PublishedYear,
		b.Category, b.ShelfLocation, b.TotalCopies, b.ID,
	).Scan(&b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, b.ID); getErr != nil {
				return getErr
			}
			return apperrors.ErrCopiesBelowIssued
		}
		return mapBookWriteError(err)
	}
	return nil
}

// Delete removes a book with no loan history
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrBookHasRelations
		}
		return fmt.Errorf("error deleting book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBookNotFound
	}
	return nil
}
