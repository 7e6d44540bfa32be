package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var campusColumns = []string{"id", "name", "code", "address", "phone", "email", "is_active", "created_at", "updated_at"}

// CampusRepository handles database operations for campuses
type CampusRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCampusRepository creates a new campus repository
func NewCampusRepository(db *pgxpool.Pool) *CampusRepository {
	return &CampusRepository{db: db, sb: statementBuilder()}
}

func scanCampus(row pgx.Row) (*models.Campus, error) {
	var c models.Campus
	if err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Address, &c.Phone, &c.Email, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func mapCampusWriteError(err error) error {
	if dberrors.IsDuplicateConstraintError(err, "campuses_name_key") || dberrors.IsDuplicateConstraintError(err, "campuses_code_key") {
		return apperrors.ErrCampusAlreadyExists
	}
	return fmt.Errorf("error saving campus: %w", err)
}

// Create creates a new campus
func (r *CampusRepository) Create(ctx context.Context, campus *models.Campus) error {
	sql, args, err := r.sb.Insert("campuses").
		Columns("name", "code", "address", "phone", "email", "is_active").
		Values(campus.Name, campus.Code, campus.Address, campus.Phone, campus.Email, campus.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create campus query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&campus.ID, &campus.CreatedAt, &campus.UpdatedAt); err != nil {
		return mapCampusWriteError(err)
	}
	return nil
}

func (r *CampusRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Campus, error) {
	sql, args, err := r.sb.Select(campusColumns...).From("campuses").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get campus query: %w", err)
	}
	campus, err := scanCampus(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCampusNotFound
		}
		return nil, fmt.Errorf("error retrieving campus: %w", err)
	}
	return campus, nil
}

// GetByID retrieves a campus by ID
func (r *CampusRepository) GetByID(ctx context.Context, id int64) (*models.Campus, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByCode retrieves a campus by its unique code
func (r *CampusRepository) GetByCode(ctx context.Context, code string) (*models.Campus, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code})
}

// List returns a page of campuses
func (r *CampusRepository) List(ctx context.Context, search *string, offset, limit uint64) ([]*models.Campus, int64, error) {
	conds := squirrel.And{}
	if search != nil {
		pattern := likePattern(*search)
		conds = append(conds, squirrel.Or{squirrel.ILike{"name": pattern}, squirrel.ILike{"code": pattern}})
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("campuses").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.sb.Select(campusColumns...).From("campuses").Where(conds).
		OrderBy("name").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list campuses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing campuses: %w", err)
	}
	defer rows.Close()

	campuses := make([]*models.Campus, 0)
	for rows.Next() {
		c, err := scanCampus(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning campus: %w", err)
		}
		campuses = append(campuses, c)
	}
	return campuses, total, rows.Err()
}

// Update updates an existing campus
func (r *CampusRepository) Update(ctx context.Context, campus *models.Campus) error {
	sql, args, err := r.sb.Update("campuses").
		Set("name", campus.Name).
		Set("code", campus.Code).
		Set("address", campus.Address).
		Set("phone", campus.Phone).
		Set("email", campus.Email).
		Set("is_active", campus.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": campus.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update campus query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&campus.CreatedAt, &campus.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrCampusNotFound
		}
		return mapCampusWriteError(err)
	}
	return nil
}

// HasDependents reports whether departments, employees or students reference the campus
func (r *CampusRepository) HasDependents(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db, `
		SELECT 1 FROM departments WHERE campus_id = $1
		UNION ALL SELECT 1 FROM employees WHERE campus_id = $1
		UNION ALL SELECT 1 FROM students WHERE campus_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error checking campus relations: %w", err)
	}
	return found, nil
}

// Delete deletes a campus by ID
func (r *CampusRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM campuses WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCampusHasRelations
		}
		return fmt.Errorf("error deleting campus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCampusNotFound
	}
	return nil
}
