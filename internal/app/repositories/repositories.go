package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository            *UserRepository
	TokenRepository           *TokenRepository
	CampusRepository          *CampusRepository
	DepartmentRepository      *DepartmentRepository
	ProgramRepository         *ProgramRepository
	ApplicationRepository     *ApplicationRepository
	StudentRepository         *StudentRepository
	EmployeeRepository        *EmployeeRepository
	AttendanceRepository      *AttendanceRepository
	SalaryStructureRepository *SalaryStructureRepository
	PayrollRepository         *PayrollRepository
	CertificateRepository     *CertificateRepository
	BookRepository            *BookRepository
	BookIssueRepository       *BookIssueRepository
	TimetableRepository       *TimetableRepository
	NoticeRepository          *NoticeRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:            NewUserRepository(db),
		TokenRepository:           NewTokenRepository(db),
		CampusRepository:          NewCampusRepository(db),
		DepartmentRepository:      NewDepartmentRepository(db),
		ProgramRepository:         NewProgramRepository(db),
		ApplicationRepository:     NewApplicationRepository(db),
		StudentRepository:         NewStudentRepository(db),
		EmployeeRepository:        NewEmployeeRepository(db),
		AttendanceRepository:      NewAttendanceRepository(db),
		SalaryStructureRepository: NewSalaryStructureRepository(db),
		PayrollRepository:         NewPayrollRepository(db),
		CertificateRepository:     NewCertificateRepository(db),
		BookRepository:            NewBookRepository(db),
		BookIssueRepository:       NewBookIssueRepository(db),
		TimetableRepository:       NewTimetableRepository(db),
		NoticeRepository:          NewNoticeRepository(db),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// countRows runs a COUNT(*) built from the same filters as the page query
func countRows(ctx context.Context, q DBTX, builder squirrel.SelectBuilder) (int64, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return total, nil
}

// exists runs a SELECT EXISTS(...) query
func exists(ctx context.Context, q DBTX, query string, args ...any) (bool, error) {
	var ok bool
	if err := q.QueryRow(ctx, "SELECT EXISTS("+query+")", args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// likePattern wraps a search term for ILIKE
func likePattern(term string) string {
	return "%" + term + "%"
}
