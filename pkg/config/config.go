// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultDeleteURL is the Insider user deletion endpoint
const DefaultDeleteURL = "https://unification.useinsider.com/api/user/v1/delete"

// Config represents the application configuration
type Config struct {
	// Deletion API
	PartnerName       string
	Token             string
	DeleteURL         string
	RequestsPerMinute int
	HTTPTimeout       time.Duration

	// Database target
	Database *DatabaseConfig

	// Cleaning and load settings
	TextColumnLength int
	EmptyAsNull      bool // Load empty text as NULL
	Timezone         string
	CSVEncoding      string

	// Logging
	LogDir       string
	LogLevel     string
	LogMaxSizeMB int
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	cfg := &Config{
		PartnerName:       os.Getenv("PARTNER_NAME"),
		Token:             os.Getenv("TOKEN"),
		DeleteURL:         getEnv("INSIDER_DELETE_URL", DefaultDeleteURL),
		RequestsPerMinute: getEnvAsInt("DELETE_REQUESTS_PER_MINUTE", 900),
		HTTPTimeout:       time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		TextColumnLength:  getEnvAsInt("TEXT_COLUMN_LENGTH", 255),
		EmptyAsNull:       getEnvAsBool("LOAD_EMPTY_AS_NULL", false),
		Timezone:          getEnv("LEADS_TIMEZONE", "America/Sao_Paulo"),
		CSVEncoding:       strings.ToLower(getEnv("CSV_ENCODING", "utf-8")),
		LogDir:            getEnv("LOG_DIR", "logs"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogMaxSizeMB:      getEnvAsInt("LOG_MAX_SIZE_MB", 10),
	}

	dbConfig, err := LoadDatabaseConfig()
	if err != nil {
		return nil, errors.New("failed to load database configuration: " + err.Error())
	}
	cfg.Database = dbConfig

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the general settings are usable
func (c *Config) Validate() error {
	if c.TextColumnLength <= 0 {
		return errors.New("text column length must be positive")
	}

	if c.HTTPTimeout <= 0 {
		return errors.New("http timeout must be positive")
	}

	switch c.CSVEncoding {
	case "utf-8", "utf8", "latin1", "iso-8859-1":
	default:
		return errors.New("unsupported CSV_ENCODING: " + c.CSVEncoding)
	}

	return nil
}

// ValidateDeletion checks the settings the delete command needs
func (c *Config) ValidateDeletion() error {
	if c.PartnerName == "" {
		return errors.New("PARTNER_NAME environment variable is required")
	}
	if c.Token == "" {
		return errors.New("TOKEN environment variable is required")
	}
	if c.DeleteURL == "" {
		return errors.New("INSIDER_DELETE_URL cannot be empty")
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Latin1 reports whether CSV inputs should be decoded as ISO-8859-1
func (c *Config) Latin1() bool {
	return c.CSVEncoding == "latin1" || c.CSVEncoding == "iso-8859-1"
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
