package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	ProjectName string
	Port        string
	GinMode     string
	LogLevel    string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	SecretKey            string
	TokenEncodeAlgorithm string
	AccessTokenExpire    time.Duration
	PasswordResetExpire  time.Duration
	AccessTokenSubject   string
	PasswordResetSubject string
	ServerHost           string
	SessionSecret        string
	RedisHost            string
	RedisPort            string

	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	SMTPTLS          bool
	EmailsFromEmail  string
	EmailSendTimeout time.Duration

	AdminFixture AdminFixture
}

// AdminFixture describes the superuser inserted by cmd/seed.
type AdminFixture struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	BirthDate   time.Time
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		ProjectName: getEnv("PROJECT_NAME", "Survey API"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "surveyuser"),
		DBPassword: getEnv("DB_PASSWORD", "surveypassword"),
		DBName:     getEnv("DB_NAME", "survey"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "survey.db"),

		SecretKey:            getEnv("SECRET_KEY", "default-secret-key-change-me"),
		TokenEncodeAlgorithm: getEnv("TOKEN_ENCODE_ALGORITHM", "HS256"),
		AccessTokenExpire:    time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*7)) * time.Minute,
		PasswordResetExpire:  time.Duration(getEnvInt("EMAIL_RESET_TOKEN_EXPIRE_HOURS", 48)) * time.Hour,
		AccessTokenSubject:   "access",
		PasswordResetSubject: "preset",
		ServerHost:           getEnv("SERVER_HOST", "localhost:8080"),
		SessionSecret:        getEnv("SESSION_SECRET", "default-session-secret-change-me"),
		RedisHost:            getEnv("REDIS_HOST", ""),
		RedisPort:            getEnv("REDIS_PORT", "6379"),

		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPTLS:          getEnvBool("SMTP_TLS", true),
		EmailsFromEmail:  getEnv("EMAILS_FROM_EMAIL", "noreply@example.com"),
		EmailSendTimeout: getEnvDuration("EMAIL_SEND_TIMEOUT", 10*time.Second),

		AdminFixture: AdminFixture{
			Username:    getEnv("ADMIN_FIXTURE_USERNAME", "admin"),
			Email:       getEnv("ADMIN_FIXTURE_EMAIL", "admin@example.com"),
			Password:    getEnv("ADMIN_FIXTURE_PASSWORD", "adminpassword"),
			FirstName:   getEnv("ADMIN_FIXTURE_FIRST_NAME", "Admin"),
			LastName:    getEnv("ADMIN_FIXTURE_LAST_NAME", "Admin"),
			BirthDate:   getEnvDate("ADMIN_FIXTURE_BIRTH_DATE", time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)),
			IsActive:    getEnvBool("ADMIN_FIXTURE_IS_ACTIVE", true),
			IsStaff:     getEnvBool("ADMIN_FIXTURE_IS_STAFF", true),
			IsSuperuser: getEnvBool("ADMIN_FIXTURE_IS_SUPERUSER", true),
		},
	}
}

// BaseAppURI is the public origin used in emailed links.
func (c *Config) BaseAppURI() string {
	return "http://" + c.ServerHost
}

// EmailsEnabled reports whether an SMTP server is configured.
func (c *Config) EmailsEnabled() bool {
	return c.SMTPHost != ""
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.TokenEncodeAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported TOKEN_ENCODE_ALGORITHM %q", c.TokenEncodeAlgorithm)
	}
	if c.AppEnv == "production" && c.SecretKey == "default-secret-key-change-me" {
		return fmt.Errorf("SECRET_KEY must be set in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDate(key string, defaultValue time.Time) time.Time {
	value, err := time.Parse("2006-01-02", os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
