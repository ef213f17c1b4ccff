package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultCardSecret matches the secret historic data was encrypted with.
	DefaultCardSecret = "default-secret-key-change-this"
	defaultJWTSecret  = "change-me"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	AppEnv      string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	CardSecret  string
	AllowedIPs  []string
	LogLevel    string
	LogFormat   string
	SwaggerHost string
	ResetDB     bool
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory or its parent is applied first when present.
func Load() *Config {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "5000"),
		AppEnv:      getEnv("APP_ENV", "development"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/casedesk?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
		CardSecret:  getEnv("CARD_SECRET", DefaultCardSecret),
		AllowedIPs:  getEnvList("ALLOWED_IPS", []string{"127.0.0.1", "::1"}),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		ResetDB:     os.Getenv("RESET_DB") == "true",
	}
}

// Validate rejects configurations that are unsafe to run.
func (c *Config) Validate() error {
	if c.MySQLDSN == "" {
		return errors.New("config: MYSQL_DSN is required")
	}
	if c.JWTSecret == "" || c.CardSecret == "" {
		return errors.New("config: JWT_SECRET and CARD_SECRET must not be empty")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("config: in production JWT_SECRET must be set")
		}
		if c.CardSecret == DefaultCardSecret {
			return errors.New("config: in production CARD_SECRET must be set")
		}
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.ServerPort
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
