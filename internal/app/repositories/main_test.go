package repositories_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/campusly/campusly/internal/app/migrations"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedOnce      sync.Once
	sharedContainer *postgres.PostgresContainer
	sharedPool      *pgxpool.Pool
	sharedErr       error
)

func TestMain(m *testing.M) {
	code := m.Run()

	if sharedPool != nil {
		sharedPool.Close()
	}
	if sharedContainer != nil {
		if err := sharedContainer.Terminate(context.Background()); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
	os.Exit(code)
}

// setupPostgres starts one PostgreSQL container for the package, applies the
// schema once and empties the tables before each test. Tests using it must not
// run in parallel.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres repository tests need docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	sharedOnce.Do(func() {
		ctx := context.Background()
		sharedContainer, sharedErr = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("campusly"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if sharedErr != nil {
			return
		}

		dsn, err := sharedContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedErr = err
			return
		}
		if sharedPool, sharedErr = pgxpool.New(ctx, dsn); sharedErr != nil {
			return
		}
		sharedErr = migrations.NewMigrator(sharedPool, zerolog.Nop()).
			MigrateFromDirectory(ctx, filepath.Join("..", "..", "..", "migrations"))
	})
	require.NoError(t, sharedErr)

	_, err := sharedPool.Exec(context.Background(), `TRUNCATE campuses, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return sharedPool
}

type academics struct {
	campus     *models.Campus
	department *models.Department
	program    *models.Program
}

func seedAcademics(t *testing.T, pool *pgxpool.Pool) academics {
	t.Helper()
	ctx := context.Background()

	campus := &models.Campus{Name: "Main Campus", Code: "MAIN", IsActive: true}
	require.NoError(t, repositories.NewCampusRepository(pool).Create(ctx, campus))

	department := &models.Department{CampusID: campus.ID, Name: "Computer Science", Code: "CS"}
	require.NoError(t, repositories.NewDepartmentRepository(pool).Create(ctx, department))

	program := &models.Program{
		DepartmentID:  department.ID,
		Name:          "BS Computer Science",
		Code:          "BSCS",
		DurationYears: 4,
		TotalSeats:    2,
		MinPercentage: decimal.NewFromInt(60),
		IsActive:      true,
	}
	require.NoError(t, repositories.NewProgramRepository(pool).Create(ctx, program))
	program.CampusID = campus.ID

	return academics{campus: campus, department: department, program: program}
}

func (a academics) application(t *testing.T, repo *repositories.ApplicationRepository, name, email string, score int64) *models.AdmissionApplication {
	t.Helper()
	app := &models.AdmissionApplication{
		ProgramID:        a.program.ID,
		Session:          "2025",
		ApplicantName:    name,
		ApplicantEmail:   email,
		DateOfBirth:      time.Date(2006, time.March, 14, 0, 0, 0, 0, time.UTC),
		MatricObtained:   decimal.NewFromInt(900),
		MatricTotal:      decimal.NewFromInt(1100),
		InterObtained:    decimal.NewFromInt(850),
		InterTotal:       decimal.NewFromInt(1100),
		EligibilityScore: decimal.NewFromInt(score),
		Status:           models.ApplicationSubmitted,
	}
	require.NoError(t, repo.Create(context.Background(), app))
	return app
}

func (a academics) student(t *testing.T, pool *pgxpool.Pool, roll, batch string) *models.Student {
	t.Helper()
	s := &models.Student{
		CampusID:     a.campus.ID,
		DepartmentID: a.department.ID,
		ProgramID:    a.program.ID,
		RollNumber:   roll,
		FullName:     "Student " + roll,
		Email:        fmt.Sprintf("%s@campusly.test", roll),
		Batch:        batch,
		Status:       models.StudentActive,
		EnrolledOn:   time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repositories.NewStudentRepository(pool).Create(context.Background(), s))
	return s
}

func (a academics) rollNumber(batch string) func(int) string {
	return func(seq int) string {
		return fmt.Sprintf("%s-%s-%04d", a.program.Code, batch, seq)
	}
}

func countRows(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}
