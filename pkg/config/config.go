package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Strategy (metric table, weights, thresholds)
	StrategyFile string

	// Pipeline inputs/outputs
	Snapshot SnapshotConfig
	History  HistoryConfig
	Output   OutputConfig
	Run      RunConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// SnapshotConfig describes where per-entity snapshot rows come from
type SnapshotConfig struct {
	Source           string // dir | http
	Dir              string
	URL              string
	MaxAge           time.Duration // freshness warning threshold
	RatePerSec       int
	ConstituentsFile string
	ConstituentsURL  string
}

// HistoryConfig selects the HistoryLedger backend
type HistoryConfig struct {
	Backend string // csv | postgres | memory
	File    string
}

// OutputConfig holds the export artifact location
type OutputConfig struct {
	File string
}

// RunConfig holds scheduling settings for the daily run
type RunConfig struct {
	Schedule string // cron expression with seconds
	Timezone string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

const (
	SourceDir  = "dir"
	SourceHTTP = "http"

	BackendCSV      = "csv"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		StrategyFile: getEnv("STRATEGY_FILE", ""),

		Snapshot: SnapshotConfig{
			Source:           getEnv("SNAPSHOT_SOURCE", SourceDir),
			Dir:              getEnv("SNAPSHOT_DIR", "market_data"),
			URL:              getEnv("SNAPSHOT_URL", ""),
			MaxAge:           getEnvAsDuration("SNAPSHOT_MAX_AGE", "168h"),
			RatePerSec:       getEnvAsInt("SNAPSHOT_RATE_PER_SEC", 5),
			ConstituentsFile: getEnv("CONSTITUENTS_FILE", ""),
			ConstituentsURL:  getEnv("CONSTITUENTS_URL", ""),
		},

		History: HistoryConfig{
			Backend: getEnv("HISTORY_BACKEND", BackendCSV),
			File:    getEnv("HISTORY_FILE", "scan_history.csv"),
		},

		Output: OutputConfig{
			File: getEnv("OUTPUT_FILE", "top_ranked.csv"),
		},

		Run: RunConfig{
			Schedule: getEnv("RUN_SCHEDULE", "0 30 17 * * 1-5"),
			Timezone: getEnv("RUN_TIMEZONE", "America/New_York"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Location returns the run timezone, falling back to UTC when it cannot be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Run.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Snapshot.Source {
	case SourceDir:
		if c.Snapshot.Dir == "" {
			return fmt.Errorf("SNAPSHOT_DIR is required when SNAPSHOT_SOURCE=dir")
		}
	case SourceHTTP:
		if c.Snapshot.URL == "" {
			return fmt.Errorf("SNAPSHOT_URL is required when SNAPSHOT_SOURCE=http")
		}
	default:
		return fmt.Errorf("SNAPSHOT_SOURCE must be one of: dir, http")
	}

	switch c.History.Backend {
	case BackendCSV:
		if c.History.File == "" {
			return fmt.Errorf("HISTORY_FILE is required when HISTORY_BACKEND=csv")
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when HISTORY_BACKEND=postgres")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("HISTORY_BACKEND must be one of: csv, postgres, memory")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
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
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
