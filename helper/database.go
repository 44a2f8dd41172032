package helper

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection parameters for the memo store.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// NewDatabaseConfiguration loads the database configuration from the
// environment. A .env file in the working directory is loaded first if
// present. Defaults target a local development Postgres.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     envOrDefault("DB_HOST", "localhost"),
		Port:     envOrDefault("DB_PORT", "5432"),
		User:     envOrDefault("DB_USER", "postgres"),
		Password: envOrDefault("DB_PASSWORD", "postgres"),
		Name:     envOrDefault("DB_NAME", "knowledge"),
		SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
	}

	if config.Host == "" || config.Port == "" {
		return nil, fmt.Errorf("database host and port must not be empty")
	}

	return config, nil
}

// ConnectionString returns the lib/pq connection string.
func (c *DatabaseConfiguration) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Database wraps a sql.DB instance together with its logger.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a connection to the configured Postgres instance.
// The connection is verified with a ping before returning.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.New(NewPrettyHandler(os.Stdout, PrettyHandlerOptions{}))
	}

	instance, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		logger.Error("Failed to open database", slog.String("error", err.Error()))
		return &Database{Name: name, Logger: logger}
	}

	instance.SetMaxOpenConns(10)
	instance.SetMaxIdleConns(5)
	instance.SetConnMaxLifetime(30 * time.Minute)

	if err := instance.Ping(); err != nil {
		logger.Error("Failed to ping database", slog.String("error", err.Error()))
	}

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}
}

func envOrDefault(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
