package common

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	OCR      OCRConfig
	AI       AIConfig
	Queue    QueueConfig
	LogLevel slog.Level
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "postgres" | "sqlite"
	DSN              string
	SQLitePath       string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr     string
	GRPCAddr     string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig holds the shared secret used to verify bearer tokens.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine        string // "cli" | "gosseract"
	Language      string
	Tesseract     string
	Pdftoppm      string
	HeicConverter string
	TessdataDir   string
	ScannedPDFOCR bool
	MaxPages      int
}

// AIConfig holds LLM-related configuration
type AIConfig struct {
	Provider    string // "openai" | "anthropic" | "none"
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// QueueConfig controls background compliance checks after upload.
type QueueConfig struct {
	AutoCheckOnUpload bool
	Workers           int
	Size              int
	JobTimeout        time.Duration
}

// LoadConfig loads configuration from environment variables, after merging a
// local .env file when one is present.
func LoadConfig() *Config {
	loadEnvFile()

	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			DSN:              getEnv("DB_URL", ""),
			SQLitePath:       getEnv("SQLITE_PATH", "./permits.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:     getEnv("HTTP_ADDR", ":5000"),
			GRPCAddr:     getEnv("GRPC_ADDR", ":8081"),
			BodyLimit:    getEnvAsInt("HTTP_BODY_LIMIT", 12<<20),
			ReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 2*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},
		OCR: OCRConfig{
			Engine:        strings.ToLower(getEnv("OCR_ENGINE", "cli")),
			Language:      getEnv("OCR_LANG", "eng"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			HeicConverter: getEnv("HEIC_CONVERTER", "magick"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			ScannedPDFOCR: getEnvAsBool("OCR_SCANNED_PDF", true),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 20),
		},
		AI: AIConfig{
			Provider:    strings.ToLower(getEnv("AI_PROVIDER", "openai")),
			Model:       getEnv("AI_MODEL", ""),
			APIKey:      firstNonEmpty(os.Getenv("AI_API_KEY"), os.Getenv("OPENAI_API_KEY"), os.Getenv("ANTHROPIC_API_KEY")),
			BaseURL:     getEnv("AI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("AI_TEMPERATURE", 0.2),
			MaxTokens:   getEnvAsInt("AI_MAX_TOKENS", 800),
			Timeout:     getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
		},
		Queue: QueueConfig{
			AutoCheckOnUpload: getEnvAsBool("AUTO_CHECK_ON_UPLOAD", false),
			Workers:           getEnvAsInt("CHECK_WORKERS", 4),
			Size:              getEnvAsInt("CHECK_QUEUE_SIZE", 256),
			JobTimeout:        getEnvAsDuration("CHECK_JOB_TIMEOUT", 3*time.Minute),
		},
		LogLevel: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// loadEnvFile merges the first .env file found; real environment variables win.
func loadEnvFile() {
	for _, location := range []string{".env", ".env.local"} {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				slog.Warn("config.env_file.load_failed", "file", location, "error", err)
				return
			}
			slog.Debug("config.env_file.loaded", "file", location)
			return
		}
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(value)); err == nil {
			return lvl
		}
	}
	return defaultValue
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	var errs []error
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, NewAppError("CONFIG_ERROR", "JWT_SECRET is required", ErrInvalidInput))
	}
	if c.Server.HTTPAddr == "" {
		errs = append(errs, NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput))
	}
	switch c.AI.Provider {
	case "openai", "anthropic", "none":
	default:
		errs = append(errs, NewAppError("CONFIG_ERROR", "AI_PROVIDER must be openai, anthropic or none", ErrInvalidInput))
	}
	return errors.Join(errs...)
}

// Validate checks the driver and its connection settings.
func (c DatabaseConfig) Validate() error {
	switch c.Driver {
	case "postgres":
		if c.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for postgres", ErrInvalidInput)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return NewAppError("CONFIG_ERROR", "SQLITE_PATH is required for sqlite", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be postgres or sqlite", ErrInvalidInput)
	}
	return nil
}
