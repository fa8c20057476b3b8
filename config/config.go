package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Media storage. When S3Bucket is empty images are written to MediaDir.
	MediaDir string
	MediaURL string
	S3Bucket string
	S3Region string

	// Logging
	LogLevel  string
	LogFormat string

	// HTTP
	CORSOrigins []string
	// RecipeRateLimit caps recipe creations per user per hour. Zero disables it.
	RecipeRateLimit int

	// API behaviour
	PageSize int
	Rules    Rules
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := defaults()
	cfg.Environment = env

	// Load configuration based on environment
	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = env.LogFormat()
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerPort: "8080",
		ServerHost: "0.0.0.0",
		DBDriver:   "postgres",
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "postgres",
		DBName:     "foodgram",
		DBSSLMode:  "disable",
		SQLitePath: "foodgram.db",
		RedisHost:  "localhost",
		RedisPort:  "6379",
		TokenTTL:   24 * time.Hour,
		MediaDir:   "media",
		MediaURL:   "/media",
		LogLevel:   "info",
		PageSize:   6,
		Rules:      DefaultRules(),

		RecipeRateLimit: 30,
	}
}

// loadCIConfig loads configuration for CI environment using ONLY environment variables
func loadCIConfig(cfg *Config) error {
	loadEnv(cfg)

	cfg.DBPassword = firstNonEmpty(os.Getenv("TEST_DB_PASSWORD"), cfg.DBPassword)
	if cfg.DBPassword == "" && cfg.DBDriver == "postgres" {
		return fmt.Errorf("TEST_DB_PASSWORD environment variable is required in CI environment")
	}
	cfg.JWTSecret = firstNonEmpty(os.Getenv("TEST_JWT_SECRET"), cfg.JWTSecret)
	cfg.RedisPassword = firstNonEmpty(os.Getenv("TEST_REDIS_PASSWORD"), cfg.RedisPassword)
	cfg.RedisURL = firstNonEmpty(os.Getenv("TEST_REDIS_URL"), cfg.RedisURL)
	cfg.RedisDB = 0

	return nil
}

// loadDevConfig loads configuration for development environment. Environment
// variables come first, Docker secrets override them when present.
func loadDevConfig(cfg *Config) error {
	loadEnv(cfg)
	loadSecrets(cfg)
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret"
	}
	return nil
}

// loadProdConfig loads configuration for production environment. Credentials
// are read from Docker secrets only.
func loadProdConfig(cfg *Config) error {
	loadEnv(cfg)
	cfg.DBPassword = ""
	cfg.JWTSecret = ""
	cfg.RedisPassword = ""
	loadSecrets(cfg)
	return nil
}

func loadEnv(cfg *Config) {
	setString(&cfg.ServerPort, "SERVER_PORT")
	setString(&cfg.ServerHost, "SERVER_HOST")
	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBSSLMode, "DB_SSL_MODE")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.RedisHost, "REDIS_HOST")
	setString(&cfg.RedisPort, "REDIS_PORT")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.MediaDir, "MEDIA_DIR")
	setString(&cfg.MediaURL, "MEDIA_URL")
	setString(&cfg.S3Bucket, "S3_BUCKET_NAME")
	setString(&cfg.S3Region, "AWS_REGION")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")

	if v, err := strconv.Atoi(os.Getenv("PAGE_SIZE")); err == nil && v > 0 {
		cfg.PageSize = v
	}
	if d, err := time.ParseDuration(os.Getenv("TOKEN_TTL")); err == nil && d > 0 {
		cfg.TokenTTL = d
	}
	if v, err := strconv.Atoi(os.Getenv("RECIPE_RATE_LIMIT")); err == nil && v >= 0 {
		cfg.RecipeRateLimit = v
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}
}

func loadSecrets(cfg *Config) {
	secrets := map[string]*string{
		"db_user":        &cfg.DBUser,
		"db_password":    &cfg.DBPassword,
		"jwt_secret":     &cfg.JWTSecret,
		"redis_password": &cfg.RedisPassword,
		"redis_url":      &cfg.RedisURL,
	}
	for name, dst := range secrets {
		if v := readSecret(name); v != "" {
			*dst = v
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// DSN returns the PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
