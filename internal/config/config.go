package config

import (
	"errors"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime settings for the server
type Config struct {
	DatabaseURL       string
	JWTSecret         string
	JWTExpiration     time.Duration
	JWTIssuer         string
	ServerPort        string
	GinMode           string
	LogLevel          string
	InitialAdminEmail string
	CORSAllowedOrigin string

	RateLimitEnabled   bool
	SignupPerMinute    int
	LoginPerMinute     int
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int

	DBConnectRetries       int
	DBConnectRetryInterval time.Duration
}

// Load reads configuration from environment variables.
// Call godotenv.Load beforehand to pick up a .env file.
func Load() *Config {
	return &Config{
		DatabaseURL:       databaseURL(),
		JWTSecret:         os.Getenv("JWT_SECRET_KEY"),
		JWTExpiration:     time.Duration(getInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		JWTIssuer:         getString("JWT_ISSUER", "toolhub"),
		ServerPort:        getString("SERVER_PORT", "8080"),
		GinMode:           getString("GIN_MODE", "debug"),
		LogLevel:          getString("LOG_LEVEL", "info"),
		InitialAdminEmail: os.Getenv("INITIAL_ADMIN_EMAIL"),
		CORSAllowedOrigin: getString("CORS_ALLOWED_ORIGIN", "*"),

		RateLimitEnabled:   getBool("RATE_LIMIT_ENABLED", true),
		SignupPerMinute:    getInt("RATE_LIMIT_SIGNUP_PER_MIN", 5),
		LoginPerMinute:     getInt("RATE_LIMIT_LOGIN_PER_MIN", 12),
		RateLimitRedisAddr: os.Getenv("RATE_LIMIT_REDIS_ADDR"),
		RateLimitRedisPass: os.Getenv("RATE_LIMIT_REDIS_PASSWORD"),
		RateLimitRedisDB:   getInt("RATE_LIMIT_REDIS_DB", 0),

		DBConnectRetries:       getInt("DB_CONNECT_RETRIES", 5),
		DBConnectRetryInterval: time.Duration(getInt("DB_CONNECT_RETRY_INTERVAL_SECONDS", 5)) * time.Second,
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("database not configured (DATABASE_URL or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY not set in environment"))
	}
	if c.JWTExpiration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_HOURS must be positive"))
	}
	return errors.Join(errs...)
}

// LogValue keeps secrets out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("server_port", c.ServerPort),
		slog.String("gin_mode", c.GinMode),
		slog.Duration("jwt_expiration", c.JWTExpiration),
		slog.String("jwt_issuer", c.JWTIssuer),
		slog.Bool("rate_limit_enabled", c.RateLimitEnabled),
		slog.Bool("rate_limit_redis", c.RateLimitRedisAddr != ""),
		slog.Bool("initial_admin", c.InitialAdminEmail != ""),
	)
}

// databaseURL prefers DATABASE_URL and falls back to the discrete DB_* variables.
func databaseURL() string {
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		return dsn
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	sslMode := getString("DB_SSLMODE", "disable")

	if dbHost == "" || dbPort == "" || dbUser == "" || dbName == "" {
		return ""
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.User(dbUser),
		Host:     net.JoinHostPort(dbHost, dbPort),
		Path:     "/" + dbName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	if dbPassword != "" {
		dsn.User = url.UserPassword(dbUser, dbPassword)
	}
	return dsn.String()
}

func getString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			slog.Warn("invalid integer setting, using default", "key", key, "default", fallback)
			return fallback
		}
		return parsed
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			slog.Warn("invalid boolean setting, using default", "key", key, "default", fallback)
			return fallback
		}
		return parsed
	}
	return fallback
}
