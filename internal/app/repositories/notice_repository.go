package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var noticeColumns = []string{
	"id", "campus_id", "title", "body", "audience", "publish_at", "expires_at",
	"created_by", "created_at", "updated_at",
}

// NoticeRepository handles notices
type NoticeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNoticeRepository creates a new notice repository
func NewNoticeRepository(db *pgxpool.Pool) *NoticeRepository {
	return &NoticeRepository{db: db, sb: statementBuilder()}
}

func scanNotice(row pgx.Row) (*models.Notice, error) {
	var n models.Notice
	err := row.Scan(&n.ID, &n.CampusID, &n.Title, &n.Body, &n.Audience, &n.PublishAt, &n.ExpiresAt,
		&n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Create inserts a notice
func (r *NoticeRepository) Create(ctx context.Context, n *models.Notice) error {
	sql, args, err := r.sb.Insert("notices").
		Columns("campus_id", "title", "body", "audience", "publish_at", "expires_at", "created_by").
		Values(n.CampusID, n.Title, n.Body, n.Audience, n.PublishAt, n.ExpiresAt, n.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notice query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err, "notices_campus_id_fkey") {
			return apperrors.ErrCampusNotFound
		}
		return fmt.Errorf("error creating notice: %w", err)
	}
	return nil
}

// GetByID retrieves a notice by ID
func (r *NoticeRepository) GetByID(ctx context.Context, id int64) (*models.Notice, error) {
	sql, args, err := r.sb.Select(noticeColumns...).From("notices").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get notice query: %w", err)
	}

	n, err := scanNotice(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoticeNotFound
		}
		return nil, fmt.Errorf("error retrieving notice: %w", err)
	}
	return n, nil
}

func noticeConditions(filter dto.NoticeFilter) squirrel.And {
	conds := squirrel.And{}
	if filter.CampusID != nil {
		if filter.IncludeGlobal {
			conds = append(conds, squirrel.Or{
				squirrel.Eq{"campus_id": *filter.CampusID},
				squirrel.Eq{"campus_id": nil},
			})
		} else {
			conds = append(conds, squirrel.Eq{"campus_id": *filter.CampusID})
		}
	}
	if filter.Audience != nil {
		conds = append(conds, squirrel.Eq{"audience": []models.NoticeAudience{*filter.Audience, models.AudienceAll}})
	}
	if filter.Search != nil {
		pattern := likePattern(*filter.Search)
		conds = append(conds, squirrel.Or{squirrel.ILike{"title": pattern}, squirrel.ILike{"body": pattern}})
	}
	return conds
}

func (r *NoticeRepository) list(ctx context.Context, conds squirrel.And, offset, limit uint64) ([]*models.Notice, int64, error) {
	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("notices").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.sb.Select(noticeColumns...).From("notices").Where(conds).
		OrderBy("publish_at DESC", "id DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notices query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing notices: %w", err)
	}
	defer rows.Close()

	notices := make([]*models.Notice, 0)
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning notice: %w", err)
		}
		notices = append(notices, n)
	}
	return notices, total, rows.Err()
}

// List returns a page of notices regardless of their publication window
func (r *NoticeRepository) List(ctx context.Context, filter dto.NoticeFilter, offset, limit uint64) ([]*models.Notice, int64, error) {
	return r.list(ctx, noticeConditions(filter), offset, limit)
}

// ListActive returns notices published at or before now that have not expired
func (r *NoticeRepository) ListActive(ctx context.Context, filter dto.NoticeFilter, now time.Time, offset, limit uint64) ([]*models.Notice, int64, error) {
	conds := noticeConditions(filter)
	conds = append(conds,
		squirrel.LtOrEq{"publish_at": now},
		squirrel.Or{squirrel.Eq{"expires_at": nil}, squirrel.Gt{"expires_at": now}},
	)
	return r.list(ctx, conds, offset, limit)
}

// Update rewrites a notice
func (r *NoticeRepository) Update(ctx context.Context, n *models.Notice) error {
	sql, args, err := r.sb.Update("notices").
		Set("campus_id", n.CampusID).
		Set("title", n.Title).
		Set("body", n.Body).
		Set("audience", n.Audience).
		Set("publish_at", n.PublishAt).
		Set("expires_at", n.ExpiresAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": n.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update notice query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNoticeNotFound
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCampusNotFound
		}
		return fmt.Errorf("error updating notice: %w", err)
	}
	return nil
}

// Delete removes a notice
func (r *NoticeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting notice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNoticeNotFound
	}
	return nil
}
