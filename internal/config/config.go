package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv overrides the default configuration file location
const ConfigPathEnv = "CAMPUSLY_CONFIG"

// DefaultConfigPath is used when ConfigPathEnv is unset
const DefaultConfigPath = "configs/config.yaml"

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string `yaml:"port" env:"SERVER_PORT" validate:"required,numeric"`
		Mode           string `yaml:"mode" env:"SERVER_MODE" validate:"oneof=development production test"`
		StoragePath    string `yaml:"storage_path" env:"SERVER_STORAGE_PATH" validate:"required"`
		BaseURL        string `yaml:"base_url" env:"SERVER_BASE_URL"`
		MigrationsPath string `yaml:"migrations_path" env:"SERVER_MIGRATIONS_PATH" validate:"required"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER" validate:"required,eq=postgres"`
		Host            string `yaml:"host" env:"DB_HOST" validate:"required"`
		Port            string `yaml:"port" env:"DB_PORT" validate:"required,numeric"`
		User            string `yaml:"user" env:"DB_USER" validate:"required"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME" validate:"required"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" validate:"gte=0"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" validate:"gte=1"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=json text"`
	} `yaml:"logging"`

	Payroll struct {
		WeekendDays         []string `yaml:"weekend_days" env:"PAYROLL_WEEKEND_DAYS"`
		AutoProcess         bool     `yaml:"auto_process" env:"PAYROLL_AUTO_PROCESS"`
		AutoProcessSchedule string   `yaml:"auto_process_schedule" env:"PAYROLL_AUTO_PROCESS_SCHEDULE"`
	} `yaml:"payroll"`

	Library struct {
		LoanDays           int     `yaml:"loan_days" env:"LIBRARY_LOAN_DAYS" validate:"gte=1"`
		MaxBooksPerStudent int     `yaml:"max_books_per_student" env:"LIBRARY_MAX_BOOKS_PER_STUDENT" validate:"gte=1"`
		FinePerDay         float64 `yaml:"fine_per_day" env:"LIBRARY_FINE_PER_DAY" validate:"gte=0"`
	} `yaml:"library"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		CampusName    string `yaml:"campus_name" env:"SEED_CAMPUS_NAME"`
		CampusCode    string `yaml:"campus_code" env:"SEED_CAMPUS_CODE"`
	} `yaml:"seed"`
}

// ResolvePath returns the config path from the environment or the default
func ResolvePath() string {
	return GetEnv(ConfigPathEnv, DefaultConfigPath)
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file in the working directory is applied to the environment first.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "./uploads"
	config.Server.MigrationsPath = "./migrations"

	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "campusly"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "campusly"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Payroll.WeekendDays = []string{"saturday", "sunday"}
	config.Payroll.AutoProcess = false
	config.Payroll.AutoProcessSchedule = "0 2 1 * *"

	config.Library.LoanDays = 14
	config.Library.MaxBooksPerStudent = 3
	config.Library.FinePerDay = 10

	config.SMTP.Port = 587
	config.SMTP.FromName = "Campusly"
	config.SMTP.FromEmail = "no-reply@campusly.local"

	config.Seed.CampusName = "Main Campus"
	config.Seed.CampusCode = "MAIN"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}
	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}
	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection max lifetime: %w", err)
	}

	if _, err := helpers.ParseWeekdays(config.Payroll.WeekendDays); err != nil {
		return fmt.Errorf("invalid payroll weekend days: %w", err)
	}
	if config.Payroll.AutoProcess {
		if _, err := cron.ParseStandard(config.Payroll.AutoProcessSchedule); err != nil {
			return fmt.Errorf("invalid payroll auto process schedule: %w", err)
		}
	}

	return nil
}

// AccessTokenTTL returns the parsed access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	return helpers.ParseDuration(c.JWT.AccessTokenExpiration, time.Hour)
}

// RefreshTokenTTL returns the parsed refresh token lifetime
func (c *Config) RefreshTokenTTL() time.Duration {
	return helpers.ParseDuration(c.JWT.RefreshTokenExpiration, 720*time.Hour)
}

// WeekendDays returns the configured weekend as a lookup set
func (c *Config) WeekendDays() map[time.Weekday]bool {
	set, err := helpers.ParseWeekdays(c.Payroll.WeekendDays)
	if err != nil {
		return map[time.Weekday]bool{time.Saturday: true, time.Sunday: true}
	}
	return set
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production"
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
