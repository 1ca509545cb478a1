package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Ingest   IngestConfig
	Alerts   AlertThresholds
}

// DatabaseConfig holds database-related configuration. Either DSN (Postgres)
// or SQLitePath must be set; DSN wins when both are present.
type DatabaseConfig struct {
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
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// OCRConfig holds OCR provider configuration
type OCRConfig struct {
	Provider    string // "gemini" or "ollama"
	GeminiKey   string
	GeminiModel string
	OllamaURL   string
	OllamaModel string
	Timeout     time.Duration
}

// IngestConfig enables the optional drop-folder: files appearing under Dir
// are scanned and stored for OwnerID. Disabled when Dir is empty.
type IngestConfig struct {
	Dir         string
	OwnerID     string
	JobID       string
	Workers     int32
	Debounce    time.Duration
	InitialScan bool
}

// AlertThresholds holds the tunable breakpoints for the alert policy.
// Defaults match the advisory rules the mobile app documents; an optional
// YAML file can override individual values per deployment.
type AlertThresholds struct {
	LaborRatioCritical  float64 `yaml:"labor_ratio_critical"`   // default 1.0
	LaborRatioWarning   float64 `yaml:"labor_ratio_warning"`    // default 0.85
	LowProfitMargin     float64 `yaml:"low_profit_margin"`      // default 0.10
	UnderpaidRatio      float64 `yaml:"underpaid_ratio"`        // default 0.5
	LongShiftHours      float64 `yaml:"long_shift_hours"`       // default 12
	MissedClockOutHours float64 `yaml:"missed_clockout_hours"`  // default 14
}

// DefaultAlertThresholds returns the stock thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		LaborRatioCritical:  1.0,
		LaborRatioWarning:   0.85,
		LowProfitMargin:     0.10,
		UnderpaidRatio:      0.5,
		LongShiftHours:      12,
		MissedClockOutHours: 14,
	}
}

// LoadConfig loads configuration from .env (if present) and environment variables.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			SQLitePath:       getEnv("SQLITE_PATH", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			Provider:    getEnv("OCR_PROVIDER", "gemini"),
			GeminiKey:   getEnv("GEMINI_API_KEY", ""),
			GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
			OllamaURL:   getEnv("OLLAMA_URL", "http://localhost:11434"),
			OllamaModel: getEnv("OLLAMA_MODEL", "llava"),
			Timeout:     getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		Ingest: IngestConfig{
			Dir:         getEnv("INGEST_DIR", ""),
			OwnerID:     getEnv("INGEST_OWNER_ID", ""),
			JobID:       getEnv("INGEST_JOB_ID", ""),
			Workers:     getEnvAsInt32("INGEST_WORKERS", 2),
			Debounce:    getEnvAsDuration("INGEST_DEBOUNCE", 2*time.Second),
			InitialScan: getEnv("INGEST_INITIAL_SCAN", "false") == "true",
		},
		Alerts: DefaultAlertThresholds(),
	}

	if path := getEnv("ALERT_THRESHOLDS_FILE", ""); path != "" {
		if t, err := LoadAlertThresholds(path); err == nil {
			cfg.Alerts = t
		}
	}
	return cfg
}

// LoadAlertThresholds reads a YAML thresholds file layered over the defaults.
func LoadAlertThresholds(path string) (AlertThresholds, error) {
	t := DefaultAlertThresholds()
	b, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return DefaultAlertThresholds(), err
	}
	return t, nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" && c.Database.SQLitePath == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL or SQLITE_PATH is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.OCR.Provider == "gemini" && c.OCR.GeminiKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required for the gemini provider", ErrInvalidInput)
	}
	if c.Ingest.Dir != "" && c.Ingest.OwnerID == "" {
		return NewAppError("CONFIG_ERROR", "INGEST_OWNER_ID is required when INGEST_DIR is set", ErrInvalidInput)
	}
	return nil
}
