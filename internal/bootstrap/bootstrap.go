package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	appAuth "github.com/campusly/campusly/internal/app/auth"
	appControllers "github.com/campusly/campusly/internal/app/controllers"
	appMigrations "github.com/campusly/campusly/internal/app/migrations"
	appRepos "github.com/campusly/campusly/internal/app/repositories"
	appRoutes "github.com/campusly/campusly/internal/app/routes"
	appServices "github.com/campusly/campusly/internal/app/services"
	"github.com/campusly/campusly/internal/config"
	"github.com/campusly/campusly/internal/db"
	appMiddleware "github.com/campusly/campusly/internal/middleware"
	pkgAuth "github.com/campusly/campusly/internal/pkg/auth"
	"github.com/campusly/campusly/internal/pkg/email"
	"github.com/campusly/campusly/internal/pkg/filestorage"
	"github.com/campusly/campusly/internal/pkg/logger"
	"github.com/campusly/campusly/internal/pkg/tax"
	"github.com/campusly/campusly/internal/pkg/websocket"
	"github.com/campusly/campusly/internal/scheduler"
	"github.com/campusly/campusly/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	AuthMiddleware *appMiddleware.AuthMiddleware
	FileStorage    *filestorage.LocalStorage
	Mailer         email.EmailService
	Hub            *websocket.Hub
	Scheduler      *scheduler.Scheduler

	AuthService        appServices.AuthService
	UserService        appServices.UserService
	CampusService      appServices.CampusService
	DepartmentService  appServices.DepartmentService
	ProgramService     appServices.ProgramService
	AdmissionService   appServices.AdmissionService
	StudentService     appServices.StudentService
	EmployeeService    appServices.EmployeeService
	AttendanceService  appServices.AttendanceService
	PayrollService     appServices.PayrollService
	CertificateService appServices.CertificateService
	LibraryService     appServices.LibraryService
	TimetableService   appServices.TimetableService
	NoticeService      appServices.NoticeService

	Controllers appRoutes.Controllers
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.ResolvePath()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.ToLower(cfg.Logging.Format) == "text",
		Service: "campusly",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Server.MigrationsPath
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		dbPool.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return dbPool, nil
}

// SeedDefaults creates the default campus and super admin after migrations.
// Failures are logged and startup continues.
func SeedDefaults(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := seed.CreateDefaultData(ctx, repos.CampusRepository, repos.UserRepository, cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

func publicBaseURL(cfg *config.Config) string {
	if cfg.Server.BaseURL != "" {
		return strings.TrimRight(cfg.Server.BaseURL, "/")
	}
	return "http://localhost:" + cfg.Server.Port
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(dbPool)
	repos := deps.Repos

	var err error
	baseURL := publicBaseURL(cfg)
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Mailer = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   baseURL,
	}, logger.WithComponent("email"))

	deps.Hub = websocket.NewHub(logger.WithComponent("notices-live"))

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  cfg.AccessTokenTTL(),
		RefreshTokenExp: cfg.RefreshTokenTTL(),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(repos.UserRepository)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)

	// Services
	deps.AuthService = appServices.NewAuthService(repos.UserRepository, repos.TokenRepository, deps.JWTService, lgr)
	deps.UserService = appServices.NewUserService(repos.UserRepository, repos.TokenRepository, lgr)
	deps.CampusService = appServices.NewCampusService(repos.CampusRepository)
	deps.DepartmentService = appServices.NewDepartmentService(repos.DepartmentRepository)
	deps.ProgramService = appServices.NewProgramService(repos.ProgramRepository, repos.DepartmentRepository)
	deps.AdmissionService = appServices.NewAdmissionService(
		repos.ApplicationRepository,
		repos.ProgramRepository,
		deps.FileStorage,
		deps.Mailer,
		logger.WithComponent("admissions"),
	)
	deps.StudentService = appServices.NewStudentService(repos.StudentRepository, repos.ProgramRepository)
	deps.EmployeeService = appServices.NewEmployeeService(repos.EmployeeRepository, repos.DepartmentRepository)
	deps.AttendanceService = appServices.NewAttendanceService(repos.AttendanceRepository, repos.EmployeeRepository, cfg.WeekendDays())
	deps.PayrollService = appServices.NewPayrollService(
		repos.SalaryStructureRepository,
		repos.PayrollRepository,
		repos.EmployeeRepository,
		deps.AttendanceService,
		tax.NewCalculator(),
		deps.Mailer,
		logger.WithComponent("payroll"),
	)
	deps.CertificateService = appServices.NewCertificateService(repos.CertificateRepository, repos.StudentRepository, logger.WithComponent("certificates"))
	deps.LibraryService = appServices.NewLibraryService(
		repos.BookRepository,
		repos.BookIssueRepository,
		repos.StudentRepository,
		appServices.LoanPolicy{
			LoanDays:           cfg.Library.LoanDays,
			MaxBooksPerStudent: cfg.Library.MaxBooksPerStudent,
			FinePerDay:         decimal.NewFromFloat(cfg.Library.FinePerDay),
		},
		logger.WithComponent("library"),
	)
	deps.TimetableService = appServices.NewTimetableService(repos.TimetableRepository, repos.DepartmentRepository, repos.EmployeeRepository)
	deps.NoticeService = appServices.NewNoticeService(repos.NoticeRepository, deps.Hub, logger.WithComponent("notices"))

	deps.Scheduler, err = scheduler.New(scheduler.Config{
		PayrollAutoProcess: cfg.Payroll.AutoProcess,
		PayrollSchedule:    cfg.Payroll.AutoProcessSchedule,
	}, deps.PayrollService, repos.TokenRepository, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup scheduler: %w", err)
	}

	// Controllers
	deps.Controllers = appRoutes.Controllers{
		Auth:        appControllers.NewAuthController(deps.AuthService, lgr),
		User:        appControllers.NewUserController(deps.UserService),
		Campus:      appControllers.NewCampusController(deps.CampusService),
		Department:  appControllers.NewDepartmentController(deps.DepartmentService),
		Program:     appControllers.NewProgramController(deps.ProgramService),
		Admission:   appControllers.NewAdmissionController(deps.AdmissionService, lgr),
		Student:     appControllers.NewStudentController(deps.StudentService),
		Employee:    appControllers.NewEmployeeController(deps.EmployeeService),
		Attendance:  appControllers.NewAttendanceController(deps.AttendanceService),
		Payroll:     appControllers.NewPayrollController(deps.PayrollService, lgr),
		Certificate: appControllers.NewCertificateController(deps.CertificateService, lgr),
		Library:     appControllers.NewLibraryController(deps.LibraryService),
		Timetable:   appControllers.NewTimetableController(deps.TimetableService),
		Notice:      appControllers.NewNoticeController(deps.NoticeService),
		Live:        websocket.NewHandler(deps.Hub, lgr),
	}

	return deps, nil
}

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, health HealthChecker, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery(), appMiddleware.RequestLogger(lgr))

	if !cfg.IsProduction() {
		appRoutes.SetupSwagger(router)
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.Static("/uploads", cfg.Server.StoragePath)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/api/v1/health", func(c *gin.Context) {
		if err := health.Ping(c.Request.Context()); err != nil {
			lgr.Error().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up", "liveClients": deps.Hub.ClientCount()})
	})

	return router
}
