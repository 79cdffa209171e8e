package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultTokenSecret = "change-me-in-production"

// Config holds application configuration
type Config struct {
	ServerPort   string         `yaml:"port"`
	LogMode      string         `yaml:"log_mode"`
	DatabaseType string         `yaml:"database_type"`
	DatabasePath string         `yaml:"db_path"`
	DatabaseURL  string         `yaml:"database_url"`
	ImportSheet  string         `yaml:"import_sheet"`
	Storage      StorageConfig  `yaml:"storage"`
	Auth         AuthConfig     `yaml:"auth"`
	Sessions     SessionsConfig `yaml:"sessions"`
}

// StorageConfig bounds every call made to the database
type StorageConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	Retries          int           `yaml:"retries"`
	FailureThreshold int           `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
	MaxConcurrent    int           `yaml:"max_concurrent"`
}

// AuthConfig configures bearer tokens and login throttling
type AuthConfig struct {
	TokenSecret    string        `yaml:"token_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	LoginRateLimit int           `yaml:"login_rate_limit"`
}

// SessionsConfig selects where practice sessions live
type SessionsConfig struct {
	Store         string        `yaml:"store"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		ServerPort:   "8080",
		LogMode:      "dev",
		DatabaseType: "sqlite",
		DatabasePath: "./vocabdrill.db",
		ImportSheet:  "Sheet1",
		Storage: StorageConfig{
			Timeout:          5 * time.Second,
			Retries:          2,
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
			MaxConcurrent:    20,
		},
		Auth: AuthConfig{
			TokenSecret:    defaultTokenSecret,
			TokenTTL:       24 * time.Hour,
			LoginRateLimit: 10,
		},
		Sessions: SessionsConfig{
			Store:         "memory",
			RedisAddr:     "localhost:6379",
			IdleTTL:       2 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// named by CONFIG_FILE and the environment, in increasing order of precedence
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerPort = getEnv("PORT", c.ServerPort)
	c.LogMode = getEnv("LOG_MODE", c.LogMode)
	c.DatabaseType = getEnv("DATABASE_TYPE", c.DatabaseType)
	c.DatabasePath = getEnv("DB_PATH", c.DatabasePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.ImportSheet = getEnv("IMPORT_SHEET", c.ImportSheet)

	c.Storage.Timeout = getEnvDuration("STORAGE_TIMEOUT", c.Storage.Timeout)
	c.Storage.Retries = getEnvInt("STORAGE_RETRIES", c.Storage.Retries)
	c.Storage.MaxConcurrent = getEnvInt("STORAGE_MAX_CONCURRENT", c.Storage.MaxConcurrent)

	c.Auth.TokenSecret = getEnv("TOKEN_SECRET", c.Auth.TokenSecret)
	c.Auth.TokenTTL = getEnvDuration("TOKEN_TTL", c.Auth.TokenTTL)
	c.Auth.LoginRateLimit = getEnvInt("LOGIN_RATE_LIMIT", c.Auth.LoginRateLimit)

	c.Sessions.Store = getEnv("SESSION_STORE", c.Sessions.Store)
	c.Sessions.RedisAddr = getEnv("REDIS_ADDR", c.Sessions.RedisAddr)
	c.Sessions.RedisPassword = getEnv("REDIS_PASSWORD", c.Sessions.RedisPassword)
	c.Sessions.RedisDB = getEnvInt("REDIS_DB", c.Sessions.RedisDB)
	c.Sessions.IdleTTL = getEnvDuration("SESSION_IDLE_TTL", c.Sessions.IdleTTL)
	c.Sessions.SweepInterval = getEnvDuration("SWEEP_INTERVAL", c.Sessions.SweepInterval)
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for database type %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	switch strings.ToLower(c.Sessions.Store) {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported session store: %s", c.Sessions.Store)
	}

	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("storage timeout must be positive")
	}
	if c.Storage.Retries < 0 {
		return fmt.Errorf("storage retries must not be negative")
	}
	if c.IsProduction() && c.Auth.TokenSecret == defaultTokenSecret {
		return fmt.Errorf("TOKEN_SECRET must be set in production")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	mode := strings.ToLower(c.LogMode)
	return mode == "prod" || mode == "production"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
