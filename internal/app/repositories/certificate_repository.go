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

var certificateColumns = []string{
	"c.id", "c.student_id", "c.certificate_type", "c.serial_number", "c.title", "c.issued_on",
	"c.status", "c.revoked_at", "c.revoke_reason", "c.issued_by", "c.created_at", "c.updated_at",
	"s.full_name", "s.roll_number", "s.campus_id",
}

// ErrDuplicateSerial is returned when a generated serial collides with an existing one
var ErrDuplicateSerial = errors.New("certificate serial already exists")

// CertificateRepository handles issued certificates
type CertificateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{db: db, sb: statementBuilder()}
}

func (r *CertificateRepository) selectQuery() squirrel.SelectBuilder {
	return r.sb.Select(certificateColumns...).From("certificates c").Join("students s ON s.id = c.student_id")
}

func scanCertificate(row pgx.Row) (*models.Certificate, error) {
	var c models.Certificate
	err := row.Scan(&c.ID, &c.StudentID, &c.CertificateType, &c.SerialNumber, &c.Title, &c.IssuedOn,
		&c.Status, &c.RevokedAt, &c.RevokeReason, &c.IssuedBy, &c.CreatedAt, &c.UpdatedAt,
		&c.StudentName, &c.RollNumber, &c.CampusID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts an issued certificate
func (r *CertificateRepository) Create(ctx context.Context, c *models.Certificate) error {
	sql, args, err := r.sb.Insert("certificates").
		Columns("student_id", "certificate_type", "serial_number", "title", "issued_on", "status", "issued_by").
		Values(c.StudentID, c.CertificateType, c.SerialNumber, c.Title, c.IssuedOn, c.Status, c.IssuedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create certificate query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "certificates_serial_number_key") {
			return ErrDuplicateSerial
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrStudentNotFound
		}
		return fmt.Errorf("error creating certificate: %w", err)
	}
	return nil
}

func (r *CertificateRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Certificate, error) {
	sql, args, err := r.selectQuery().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get certificate query: %w", err)
	}

	c, err := scanCertificate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("error retrieving certificate: %w", err)
	}
	return c, nil
}

// GetByID retrieves a certificate by ID
func (r *CertificateRepository) GetByID(ctx context.Context, id int64) (*models.Certificate, error) {
	return r.getOne(ctx, squirrel.Eq{"c.id": id})
}

// GetBySerial retrieves a certificate by its serial number
func (r *CertificateRepository) GetBySerial(ctx context.Context, serial string) (*models.Certificate, error) {
	return r.getOne(ctx, squirrel.Eq{"c.serial_number": serial})
}

// List returns a page of certificates, newest first
func (r *CertificateRepository) List(ctx context.Context, filter dto.CertificateFilter, offset, limit uint64) ([]*models.Certificate, int64, error) {
	conds := squirrel.And{}
	if filter.StudentID != nil {
		conds = append(conds, squirrel.Eq{"c.student_id": *filter.StudentID})
	}
	if filter.CampusID != nil {
		conds = append(conds, squirrel.Eq{"s.campus_id": *filter.CampusID})
	}
	if filter.CertificateType != nil {
		conds = append(conds, squirrel.Eq{"c.certificate_type": *filter.CertificateType})
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"c.status": *filter.Status})
	}

	countQuery := r.sb.Select("COUNT(*)").From("certificates c").Join("students s ON s.id = c.student_id").Where(conds)
	total, err := countRows(ctx, r.db, countQuery)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.selectQuery().Where(conds).OrderBy("c.issued_on DESC", "c.id DESC").
		Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list certificates query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing certificates: %w", err)
	}
	defer rows.Close()

	certs := make([]*models.Certificate, 0)
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning certificate: %w", err)
		}
		certs = append(certs, c)
	}
	return certs, total, rows.Err()
}

// Revoke moves an ISSUED certificate to REVOKED
func (r *CertificateRepository) Revoke(ctx context.Context, id int64, reason string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE certificates SET status = $1, revoked_at = $2, revoke_reason = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5`,
		models.CertificateRevoked, at, reason, id, models.CertificateIssued)
	if err != nil {
		return fmt.Errorf("error revoking certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewTransitionError("certificate is already revoked")
	}
	return nil
}
